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

// Package rec implements the binary wire framing for alignment records
// stored inside a BGZF archive.  Only the fields the index and query engine
// need are structured; everything else rides along as an opaque payload.
package rec

import (
	"errors"
	"fmt"
	"io"

	"github.com/genomicsio/bgzidx/internal/binary"
)

// ErrMalformed indicates record framing that cannot be decoded.  Record
// boundaries cannot be re-synchronized after a framing error, so callers
// must abort the stream rather than skip ahead.
var ErrMalformed = errors.New("rec: malformed record")

// UnplacedReferenceID marks a record with no reference sequence.
const UnplacedReferenceID = int32(-1)

// Fixed fields after the frame length: reference ID, start and length.
const fixedSize = 12

// This is just to prevent arbitrarily long allocations due to malformed
// data.  No record payload should be longer than this in practice.
const maximumRecordSize = 1 << 22

// Record is a single alignment record.
type Record struct {
	// ReferenceID identifies the reference sequence, or
	// UnplacedReferenceID if the record is not placed.
	ReferenceID int32
	// Start is the 0-based leftmost coordinate covered by the record.
	Start uint32
	// Length is the number of reference bases the record covers.
	Length uint32
	// Data is the opaque remainder of the record (name, tags, ...).
	Data []byte
}

// End returns the exclusive end coordinate of the record.
func (r *Record) End() uint32 {
	return r.Start + r.Length
}

// Placed reports whether the record has a reference sequence.
func (r *Record) Placed() bool {
	return r.ReferenceID >= 0
}

// Read decodes a single record from r.  It returns io.EOF if the stream
// ends cleanly before a record starts and ErrMalformed for any framing the
// decoder cannot trust, including truncation inside a record.
func Read(r io.Reader) (*Record, error) {
	var size int32
	if err := binary.Read(r, &size); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: reading frame length: %w", ErrMalformed, err)
	}
	if size < fixedSize || size > maximumRecordSize {
		return nil, fmt.Errorf("%w: frame length %d", ErrMalformed, size)
	}

	var record Record
	var fields struct {
		ReferenceID   int32
		Start, Length uint32
	}
	if err := binary.Read(r, &fields); err != nil {
		return nil, fmt.Errorf("%w: reading fixed fields: %w", ErrMalformed, err)
	}
	record.ReferenceID = fields.ReferenceID
	record.Start = fields.Start
	record.Length = fields.Length

	if payload := size - fixedSize; payload > 0 {
		record.Data = make([]byte, payload)
		if _, err := io.ReadFull(r, record.Data); err != nil {
			return nil, fmt.Errorf("%w: reading payload: %w", ErrMalformed, err)
		}
	}
	return &record, nil
}

// Write encodes a single record to w.
func Write(w io.Writer, record *Record) error {
	size := int32(fixedSize + len(record.Data))
	if size > maximumRecordSize {
		return fmt.Errorf("%w: frame length %d", ErrMalformed, size)
	}
	header := struct {
		Size          int32
		ReferenceID   int32
		Start, Length uint32
	}{size, record.ReferenceID, record.Start, record.Length}
	if err := binary.Write(w, &header); err != nil {
		return fmt.Errorf("writing record header: %v", err)
	}
	if _, err := w.Write(record.Data); err != nil {
		return fmt.Errorf("writing record payload: %v", err)
	}
	return nil
}
