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
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// twoBlockStream returns a stream holding "AAAA" and "BBBBBB" in separate
// blocks plus the end-of-stream marker, along with the compressed length of
// the first block.
func twoBlockStream(t *testing.T) ([]byte, uint64) {
	t.Helper()
	first, err := EncodeBlock([]byte("AAAA"))
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	second, err := EncodeBlock([]byte("BBBBBB"))
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	var stream []byte
	stream = append(stream, first...)
	stream = append(stream, second...)
	stream = append(stream, eofMarker...)
	return stream, uint64(len(first))
}

func TestReader_SequentialRead(t *testing.T) {
	stream, _ := twoBlockStream(t)
	r := NewReader(bytes.NewReader(stream))

	if got, want := r.Position(), NewAddress(0, 0); got != want {
		t.Errorf("Initial position: got %s, want %s", got, want)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got, want := string(data), "AAAABBBBBB"; got != want {
		t.Errorf("Wrong data: got %q, want %q", got, want)
	}
}

func TestReader_SeekIntoSecondBlock(t *testing.T) {
	stream, firstLength := twoBlockStream(t)
	r := NewReader(bytes.NewReader(stream))

	if err := r.Seek(NewAddress(firstLength, 2)); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	buffer := make([]byte, 2)
	if _, err := io.ReadFull(r, buffer); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if got, want := string(buffer), "BB"; got != want {
		t.Errorf("Wrong data: got %q, want %q", got, want)
	}
}

func TestReader_PositionTracksEveryByte(t *testing.T) {
	stream, firstLength := twoBlockStream(t)
	r := NewReader(bytes.NewReader(stream))

	// Record the address of every byte in stream order.
	var addresses []Address
	var data []byte
	for {
		address := r.Position()
		buffer := make([]byte, 1)
		if _, err := r.Read(buffer); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Read: %v", err)
		}
		addresses = append(addresses, address)
		data = append(data, buffer[0])
	}
	if got, want := string(data), "AAAABBBBBB"; got != want {
		t.Fatalf("Wrong data: got %q, want %q", got, want)
	}
	if got, want := addresses[4], NewAddress(firstLength, 0); got != want {
		t.Errorf("Second block start: got %s, want %s", got, want)
	}

	// Numeric address order matches stream order, and seeking back to any
	// address yields the same byte.
	for i := 1; i < len(addresses); i++ {
		if addresses[i-1] >= addresses[i] {
			t.Errorf("Addresses out of order: %s >= %s", addresses[i-1], addresses[i])
		}
	}
	for i, address := range addresses {
		if err := r.Seek(address); err != nil {
			t.Fatalf("Seek to %s: %v", address, err)
		}
		buffer := make([]byte, 1)
		if _, err := r.Read(buffer); err != nil {
			t.Fatalf("Read at %s: %v", address, err)
		}
		if got, want := buffer[0], data[i]; got != want {
			t.Errorf("Wrong byte at %s: got %q, want %q", address, got, want)
		}
	}
}

func TestReader_SeekToEndOfStream(t *testing.T) {
	stream, _ := twoBlockStream(t)
	r := NewReader(bytes.NewReader(stream))

	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	end := r.Position()
	if got, want := end, NewAddress(uint64(len(stream)), 0); got != want {
		t.Fatalf("End-of-stream position: got %s, want %s", got, want)
	}

	// The end-of-stream position is an address like any other: seeking
	// there and reading reports a plain end of file.
	if err := r.Seek(end); err != nil {
		t.Fatalf("Seek to %s: %v", end, err)
	}
	buffer := make([]byte, 1)
	if _, err := r.Read(buffer); err != io.EOF {
		t.Errorf("Read at end of stream: got %v, want io.EOF", err)
	}

	// Seeking back into the stream revives it.
	if err := r.Seek(NewAddress(0, 0)); err != nil {
		t.Fatalf("Seek to start: %v", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll after rewind: %v", err)
	}
	if got, want := string(data), "AAAABBBBBB"; got != want {
		t.Errorf("Wrong data after rewind: got %q, want %q", got, want)
	}
}

func TestReader_SeekInvalidDataOffset(t *testing.T) {
	stream, _ := twoBlockStream(t)
	r := NewReader(bytes.NewReader(stream))

	if err := r.Seek(NewAddress(0, 4)); err != nil {
		t.Errorf("Seek to block end should succeed: %v", err)
	}
	if err := r.Seek(NewAddress(0, 5)); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Seek past block end: got %v, want ErrInvalidAddress", err)
	}
}

func TestReader_TruncatedStream(t *testing.T) {
	stream, firstLength := twoBlockStream(t)

	t.Run("missing end-of-stream marker", func(t *testing.T) {
		r := NewReader(bytes.NewReader(stream[:len(stream)-len(eofMarker)]))
		if _, err := io.ReadAll(r); !errors.Is(err, ErrTruncated) {
			t.Errorf("ReadAll: got %v, want ErrTruncated", err)
		}
	})
	t.Run("cut mid-block", func(t *testing.T) {
		r := NewReader(bytes.NewReader(stream[:firstLength+3]))
		buffer := make([]byte, 10)
		if _, err := io.ReadFull(r, buffer); !errors.Is(err, ErrTruncated) {
			t.Errorf("ReadFull: got %v, want ErrTruncated", err)
		}
	})
}

func TestWriter_RoundTrip(t *testing.T) {
	var archive bytes.Buffer
	w := NewWriter(&archive)

	if got, want := w.Position(), NewAddress(0, 0); got != want {
		t.Errorf("Initial position: got %s, want %s", got, want)
	}
	if _, err := w.Write([]byte("AAAA")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := w.Position(), NewAddress(0, 4); got != want {
		t.Errorf("Position after write: got %s, want %s", got, want)
	}

	checkpoint, err := w.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got, want := checkpoint, NewAddress(uint64(archive.Len()), 0); got != want {
		t.Errorf("Checkpoint: got %s, want %s", got, want)
	}
	if got, want := w.Position(), checkpoint; got != want {
		t.Errorf("Position after flush: got %s, want %s", got, want)
	}

	if _, err := w.Write([]byte("BBBBBB")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r := NewReader(bytes.NewReader(archive.Bytes()))
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got, want := string(data), "AAAABBBBBB"; got != want {
		t.Errorf("Wrong data: got %q, want %q", got, want)
	}

	if err := r.Seek(checkpoint); err != nil {
		t.Fatalf("Seek to checkpoint: %v", err)
	}
	resumed, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll from checkpoint: %v", err)
	}
	if got, want := string(resumed), "BBBBBB"; got != want {
		t.Errorf("Wrong data from checkpoint: got %q, want %q", got, want)
	}
}

func TestWriter_SplitsLargeWrites(t *testing.T) {
	var archive bytes.Buffer
	w := NewWriter(&archive)

	input := strings.Repeat("genomic payload bytes ", 16*1024) // well past one block
	if _, err := w.Write([]byte(input)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := w.Position().DataOffset(); int(got) >= writePayloadSize {
		t.Errorf("Buffered bytes not flushed: %d pending", got)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := io.ReadAll(NewReader(bytes.NewReader(archive.Bytes())))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got, want := string(data), input; got != want {
		t.Errorf("Round trip mismatch: got %d bytes, want %d bytes", len(got), len(want))
	}
}

func TestWriter_EmptyArchive(t *testing.T) {
	var archive bytes.Buffer
	w := NewWriter(&archive)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !bytes.Equal(archive.Bytes(), eofMarker) {
		t.Errorf("Empty archive: got %x, want the end-of-stream marker", archive.Bytes())
	}

	if _, err := io.ReadAll(NewReader(bytes.NewReader(archive.Bytes()))); err != nil {
		t.Errorf("Reading empty archive: %v", err)
	}
}
