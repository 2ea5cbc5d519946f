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

// Package query drives region queries: it resolves a region to candidate
// chunks through the coordinate index, seeks the block stream chunk by
// chunk, and yields exactly the records overlapping the region.
package query

import (
	"fmt"
	"io"

	"github.com/genomicsio/bgzidx/bgzf"
	"github.com/genomicsio/bgzidx/genomics"
	"github.com/genomicsio/bgzidx/index"
	"github.com/genomicsio/bgzidx/rec"
)

// Query iterates over the records of one region, in the style of
// bufio.Scanner:
//
//	q, err := query.New(r, idx, region)
//	...
//	for q.Next() {
//		use(q.Record())
//	}
//	if err := q.Err(); err != nil { ... }
//
// Records are decoded one per Next call; dropping the Query early is the
// only cancellation mechanism.  A Query owns its Reader for its lifetime;
// concurrent queries need one Reader each, while the index may be shared.
type Query struct {
	r      *bgzf.Reader
	region genomics.Region
	chunks []bgzf.Chunk

	current int // index of the chunk being consumed, -1 before the first seek
	record  *rec.Record
	err     error
	done    bool
}

// New validates region against idx and returns a Query over the candidate
// chunks.  A reference that is present in the index but holds no records
// yields a valid, empty Query; a reference outside the index's reference
// table fails with genomics.ErrInvalidRegion.
func New(r *bgzf.Reader, idx *index.Index, region genomics.Region) (*Query, error) {
	if region.End != 0 && region.Start > region.End {
		return nil, fmt.Errorf("%w: start %d after end %d", genomics.ErrInvalidRegion, region.Start, region.End)
	}
	if region.ReferenceID < 0 || int(region.ReferenceID) >= len(idx.References) {
		return nil, fmt.Errorf("%w: reference %d out of range", genomics.ErrInvalidRegion, region.ReferenceID)
	}
	return &Query{
		r:       r,
		region:  region,
		chunks:  idx.Chunks(region),
		current: -1,
	}, nil
}

// Next advances to the next overlapping record.  It returns false when the
// query is exhausted or has failed; Err distinguishes the two.
func (q *Query) Next() bool {
	if q.err != nil || q.done {
		return false
	}
	for {
		if q.current < 0 || q.r.Position() >= q.chunks[q.current].End {
			q.current++
			if q.current >= len(q.chunks) {
				q.done = true
				return false
			}
			if err := q.r.Seek(q.chunks[q.current].Start); err != nil {
				q.err = fmt.Errorf("seeking to chunk %s: %w", q.chunks[q.current], err)
				return false
			}
		}

		record, err := rec.Read(q.r)
		if err == io.EOF {
			q.done = true
			return false
		}
		if err != nil {
			// Record boundaries cannot be guessed after a decode failure, so
			// the whole query aborts.
			q.err = fmt.Errorf("decoding record at %s: %w", q.r.Position(), err)
			return false
		}

		if q.region.Overlaps(record.ReferenceID, record.Start, record.End()) {
			q.record = record
			return true
		}
	}
}

// Record returns the record produced by the last successful call to Next.
func (q *Query) Record() *rec.Record {
	return q.record
}

// Err returns the first error encountered by the query, if any.  A nil Err
// after Next returns false means the query completed; zero results is a
// valid outcome, not an error.
func (q *Query) Err() error {
	return q.err
}
