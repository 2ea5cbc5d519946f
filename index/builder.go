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

package index

import (
	"fmt"
	"io"

	"github.com/genomicsio/bgzidx/bgzf"
	"github.com/genomicsio/bgzidx/rec"
)

// Tiles without a record get this placeholder until Index fills in the
// suffix minima.
const unsetInterval = bgzf.LastAddress

// Builder accumulates records into an Index.  Records must be added in
// ascending stream order, each with the chunk spanning its own bytes in the
// archive.  Coordinate order is not required; the linear index is
// finalized so that pruning stays conservative for coordinate-unsorted
// streams.
type Builder struct {
	references []*Reference
	unplaced   uint64
	last       bgzf.Address
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add places one record into the index.  span covers the record's own bytes:
// its start address and the address immediately following it.
func (b *Builder) Add(record *rec.Record, span bgzf.Chunk) error {
	if span.Start < b.last {
		return fmt.Errorf("record at %s out of stream order (previous %s)", span.Start, b.last)
	}
	b.last = span.Start

	if !record.Placed() {
		b.unplaced++
		return nil
	}
	// The end coordinate is computed in 64 bits so that Start+Length
	// wrapping around uint32 cannot slip past the range check.
	end := uint64(record.Start) + uint64(record.Length)
	if record.Start >= maximumRecordLength || end > maximumRecordLength {
		return fmt.Errorf("record interval [%d, %d) out of coordinate range", record.Start, end)
	}

	ref := b.reference(record.ReferenceID)
	if ref.Mapped+ref.Unmapped == 0 {
		ref.Span = span
	} else {
		if span.Start < ref.Span.Start {
			ref.Span.Start = span.Start
		}
		if span.End > ref.Span.End {
			ref.Span.End = span.End
		}
	}

	// A placed record that covers no reference bases is counted but cannot
	// be binned.
	if record.Length == 0 {
		ref.Unmapped++
		return nil
	}
	ref.Mapped++

	bin := RegionToBin(record.Start, record.End())
	ref.Bins[bin] = append(ref.Bins[bin], span)

	for tile := record.Start / linearWindowSize; tile <= (record.End()-1)/linearWindowSize; tile++ {
		for uint32(len(ref.Intervals)) <= tile {
			ref.Intervals = append(ref.Intervals, unsetInterval)
		}
		if span.Start < ref.Intervals[tile] {
			ref.Intervals[tile] = span.Start
		}
	}
	return nil
}

// Index returns the built index.  The Builder must not be used afterwards.
func (b *Builder) Index() *Index {
	for _, ref := range b.references {
		finalizeIntervals(ref)
	}
	return &Index{References: b.references, Unplaced: b.unplaced}
}

// finalizeIntervals turns the per-tile minima into suffix minima: each entry
// becomes the minimum start address of any record overlapping its tile or
// any later one.  Without this pass a record placed after (in the stream)
// but left of (in coordinates) an earlier record would let the linear index
// prune chunks that still hold overlapping records.
func finalizeIntervals(ref *Reference) {
	if ref == nil {
		return
	}
	running := unsetInterval
	for i := len(ref.Intervals) - 1; i >= 0; i-- {
		if ref.Intervals[i] <= running {
			running = ref.Intervals[i]
		} else {
			ref.Intervals[i] = running
		}
	}
}

func (b *Builder) reference(id int32) *Reference {
	for int32(len(b.references)) <= id {
		b.references = append(b.references, nil)
	}
	if b.references[id] == nil {
		b.references[id] = &Reference{Bins: make(map[uint32][]bgzf.Chunk)}
	}
	return b.references[id]
}

// Build scans a complete record stream from r and returns its index.  The
// reader must be positioned at the first record.
func Build(r *bgzf.Reader) (*Index, error) {
	builder := NewBuilder()
	for {
		start := r.Position()
		record, err := rec.Read(r)
		if err == io.EOF {
			return builder.Index(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading record at %s: %w", start, err)
		}
		if err := builder.Add(record, bgzf.Chunk{Start: start, End: r.Position()}); err != nil {
			return nil, err
		}
	}
}
