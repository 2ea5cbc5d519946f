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

// Package index implements the coordinate index: the hierarchical binning
// scheme, the per-reference bin and linear-index tables, the index builder
// and the persisted index artifact.
package index

import (
	"github.com/genomicsio/bgzidx/bgzf"
	"github.com/genomicsio/bgzidx/genomics"
)

// This ID is used as a virtual bin for per-reference metadata in the
// persisted artifact.
const metadataBinID = 37450

// Reference holds the index tables for a single reference sequence.  A
// Reference is immutable once its index is built and may be shared across
// any number of concurrent queries.
type Reference struct {
	// Bins maps a bin ID to the chunks holding the records assigned to it.
	Bins map[uint32][]bgzf.Chunk
	// Intervals is the linear index: per linearWindowSize tile, the lowest
	// start address of any record overlapping that tile or a later one.  A
	// zero entry carries no information.
	Intervals []bgzf.Address
	// Span is the address range covered by all placed records.
	Span bgzf.Chunk
	// Mapped and Unmapped count the placed records with and without an
	// aligned interval.
	Mapped, Unmapped uint64
}

// Index is the coordinate index for one archive.
type Index struct {
	// References holds one entry per reference sequence; entries may be nil
	// for references without records.
	References []*Reference
	// Unplaced counts records with no reference sequence at all.
	Unplaced uint64
}

// Chunks returns the minimal ordered list of disjoint chunks that could
// contain records overlapping region.  A reference without index entries
// yields an empty list; absence of records is not an error.
func (idx *Index) Chunks(region genomics.Region) []bgzf.Chunk {
	if region.ReferenceID < 0 || int(region.ReferenceID) >= len(idx.References) {
		return nil
	}
	ref := idx.References[region.ReferenceID]
	if ref == nil {
		return nil
	}

	// Records overlapping the query start cannot live before the linear
	// index minimum for the tile holding it.
	var minOffset bgzf.Address
	if tile := int(region.Start / linearWindowSize); tile < len(ref.Intervals) {
		minOffset = ref.Intervals[tile]
	}

	var candidates []bgzf.Chunk
	for _, bin := range BinsForRange(region.Start, region.End) {
		for _, chunk := range ref.Bins[uint32(bin)] {
			if chunk.End <= minOffset {
				continue
			}
			candidates = append(candidates, chunk)
		}
	}
	return bgzf.Merge(candidates)
}
