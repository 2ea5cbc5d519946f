// Copyright 2024 The bgzidx Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bgzf

import (
	"errors"
	"fmt"
	"io"
)

// writePayloadSize is the number of uncompressed bytes buffered before a
// block is emitted.  It stays below MaximumBlockSize so that even an
// incompressible payload still frames as a single block.
const writePayloadSize = 0xff00

// Writer accumulates uncompressed bytes and emits them as BGZF blocks.
// Close flushes the remainder and appends the canonical end-of-stream
// marker.
type Writer struct {
	dst    io.Writer
	buf    []byte
	offset uint64 // compressed bytes emitted so far
	closed bool
}

// NewWriter returns a Writer emitting blocks to dst.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{dst: dst, buf: make([]byte, 0, writePayloadSize)}
}

// Position returns the virtual address that the next written byte will
// occupy in the finished archive.
func (w *Writer) Position() Address {
	return NewAddress(w.offset, uint16(len(w.buf)))
}

// Write implements io.Writer, emitting a block whenever the internal buffer
// fills.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("bgzf: write on closed writer")
	}
	total := len(p)
	for len(p) > 0 {
		take := writePayloadSize - len(w.buf)
		if take > len(p) {
			take = len(p)
		}
		w.buf = append(w.buf, p[:take]...)
		p = p[take:]
		if len(w.buf) == writePayloadSize {
			if err := w.writeBlock(); err != nil {
				return total - len(p), err
			}
		}
	}
	return total, nil
}

// Flush emits any buffered bytes as a (possibly short) block and returns the
// virtual address of the start of the next block, suitable as a resumable
// checkpoint.
func (w *Writer) Flush() (Address, error) {
	if err := w.writeBlock(); err != nil {
		return 0, err
	}
	return NewAddress(w.offset, 0), nil
}

// Close flushes any remaining buffered bytes and writes the end-of-stream
// marker.  It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	if err := w.writeBlock(); err != nil {
		return err
	}
	if _, err := w.dst.Write(eofMarker); err != nil {
		return fmt.Errorf("writing end-of-stream marker: %v", err)
	}
	w.offset += uint64(len(eofMarker))
	w.closed = true
	return nil
}

func (w *Writer) writeBlock() error {
	if len(w.buf) == 0 {
		return nil
	}
	block, err := EncodeBlock(w.buf)
	if err != nil {
		return err
	}
	if _, err := w.dst.Write(block); err != nil {
		return fmt.Errorf("writing block: %v", err)
	}
	w.offset += uint64(len(block))
	w.buf = w.buf[:0]
	return nil
}
