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
	"fmt"
	"io"
)

// Reader presents the decompressed byte stream of a BGZF archive and allows
// repositioning to any virtual address.  It buffers at most one decompressed
// block.  A Reader owns its byte source exclusively; concurrent readers over
// the same archive must each wrap their own source.
type Reader struct {
	src io.ReadSeeker

	block       []byte // decompressed payload of the buffered block
	blockOffset uint64 // compressed offset of the buffered block
	nextOffset  uint64 // compressed offset just past the buffered block
	dataOffset  int    // bytes of the payload already consumed

	loaded    bool // a block has been decoded at blockOffset
	eof       bool // no further payload bytes exist
	truncated bool // the source ended without an end-of-stream marker
}

// NewReader returns a Reader positioned at virtual address zero.
func NewReader(src io.ReadSeeker) *Reader {
	return &Reader{src: src}
}

// Position returns the virtual address of the next byte that Read will
// return.  Once a block is fully consumed the position normalizes to
// (next block offset, 0) so that recorded addresses stay totally ordered.
func (r *Reader) Position() Address {
	if r.dataOffset >= len(r.block) {
		return NewAddress(r.nextOffset, 0)
	}
	return NewAddress(r.blockOffset, uint16(r.dataOffset))
}

// nextBlock decodes the block at nextOffset.  It returns io.EOF both for the
// end-of-stream marker and for a clean end of input; the latter additionally
// marks the reader truncated.
func (r *Reader) nextBlock() error {
	data, n, err := DecodeBlock(r.src)
	if err == io.EOF {
		r.eof = true
		r.truncated = true
		return io.EOF
	}
	if err != nil {
		return err
	}

	r.loaded = true
	r.blockOffset = r.nextOffset
	r.nextOffset += uint64(n)
	r.block = data
	r.dataOffset = 0
	if len(data) == 0 {
		r.eof = true
		return io.EOF
	}
	return nil
}

// Read implements io.Reader over the decompressed stream, decoding blocks as
// needed.  A source that ends without the end-of-stream marker yields
// ErrTruncated rather than io.EOF.
func (r *Reader) Read(p []byte) (int, error) {
	var total int
	for total < len(p) {
		if r.dataOffset >= len(r.block) {
			if r.eof {
				if r.truncated {
					return total, fmt.Errorf("%w: missing end-of-stream marker", ErrTruncated)
				}
				break
			}
			if err := r.nextBlock(); err != nil {
				if err == io.EOF {
					continue
				}
				return total, err
			}
			continue
		}
		n := copy(p[total:], r.block[r.dataOffset:])
		total += n
		r.dataOffset += n
	}
	if total == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return total, nil
}

// Seek repositions the reader at the provided virtual address.  Seeking
// within the buffered block only moves the data cursor; any other target
// discards the buffer, repositions the byte source and decodes the block
// there.  Seek fails with ErrInvalidAddress if the data offset lies beyond
// the target block's payload.
func (r *Reader) Seek(addr Address) error {
	blockOffset := addr.BlockOffset()
	if !r.loaded || blockOffset != r.blockOffset {
		if _, err := r.src.Seek(int64(blockOffset), io.SeekStart); err != nil {
			return fmt.Errorf("seeking to block at %d: %v", blockOffset, err)
		}
		r.block = nil
		r.blockOffset = blockOffset
		r.nextOffset = blockOffset
		r.dataOffset = 0
		r.loaded = false
		r.eof = false
		r.truncated = false
		if err := r.nextBlock(); err != nil && err != io.EOF {
			return err
		}
		// A seek may target the synthetic end-of-stream address, where no
		// block exists to decode.  Reads there report io.EOF; the
		// missing-marker check applies only to streams read past their last
		// data block.
		r.truncated = false
	}
	if int(addr.DataOffset()) > len(r.block) {
		return fmt.Errorf("%w: data offset %d exceeds block size %d",
			ErrInvalidAddress, addr.DataOffset(), len(r.block))
	}
	r.dataOffset = int(addr.DataOffset())
	return nil
}
