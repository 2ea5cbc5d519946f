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
	"sort"

	"github.com/genomicsio/bgzidx/bgzf"
	"github.com/genomicsio/bgzidx/internal/binary"
)

const indexMagic = "GBI\x01"

// This is just to prevent arbitrarily long allocations due to malformed
// data.  No reference should carry more linear intervals than the
// coordinate space allows.
const maximumIntervalCount = maximumRecordLength / linearWindowSize

// Write persists idx to w.  The layout mirrors the BAI artifact: a bin
// table per reference with a virtual metadata bin carrying the address span
// and record counts, followed by the linear index, with the unplaced record
// count trailing the reference table.
func Write(w io.Writer, idx *Index) error {
	if _, err := w.Write([]byte(indexMagic)); err != nil {
		return fmt.Errorf("writing magic: %v", err)
	}
	if err := binary.Write(w, int32(len(idx.References))); err != nil {
		return fmt.Errorf("writing reference count: %v", err)
	}

	for i, ref := range idx.References {
		if err := writeReference(w, ref); err != nil {
			return fmt.Errorf("writing reference %d: %v", i, err)
		}
	}

	if err := binary.Write(w, idx.Unplaced); err != nil {
		return fmt.Errorf("writing unplaced count: %v", err)
	}
	return nil
}

func writeReference(w io.Writer, ref *Reference) error {
	if ref == nil {
		if err := binary.Write(w, [2]int32{0, 0}); err != nil {
			return fmt.Errorf("writing empty reference: %v", err)
		}
		return nil
	}

	ids := make([]uint32, 0, len(ref.Bins))
	for id := range ref.Bins {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if err := binary.Write(w, int32(len(ids)+1)); err != nil {
		return fmt.Errorf("writing bin count: %v", err)
	}
	for _, id := range ids {
		chunks := ref.Bins[id]
		if err := binary.Write(w, id); err != nil {
			return fmt.Errorf("writing bin ID: %v", err)
		}
		if err := binary.Write(w, int32(len(chunks))); err != nil {
			return fmt.Errorf("writing chunk count: %v", err)
		}
		if err := binary.Write(w, chunks); err != nil {
			return fmt.Errorf("writing chunks: %v", err)
		}
	}

	// The metadata pseudo-bin: the address span of the reference and its
	// record counts, disguised as two chunks.
	metadata := struct {
		ID               uint32
		Chunks           int32
		Span             bgzf.Chunk
		Mapped, Unmapped uint64
	}{metadataBinID, 2, ref.Span, ref.Mapped, ref.Unmapped}
	if err := binary.Write(w, metadata); err != nil {
		return fmt.Errorf("writing metadata bin: %v", err)
	}

	if err := binary.Write(w, int32(len(ref.Intervals))); err != nil {
		return fmt.Errorf("writing interval count: %v", err)
	}
	if err := binary.Write(w, ref.Intervals); err != nil {
		return fmt.Errorf("writing intervals: %v", err)
	}
	return nil
}

// Read loads a persisted index from r.
func Read(r io.Reader) (*Index, error) {
	if err := binary.ExpectBytes(r, []byte(indexMagic)); err != nil {
		return nil, fmt.Errorf("reading magic: %v", err)
	}

	var references int32
	if err := binary.Read(r, &references); err != nil {
		return nil, fmt.Errorf("reading reference count: %v", err)
	}
	if references < 0 {
		return nil, fmt.Errorf("invalid reference count (%d references)", references)
	}

	// The reference table is appended to as it is parsed rather than
	// allocated up front, so a corrupt count cannot demand more memory than
	// the artifact actually contains.
	idx := &Index{}
	for i := int32(0); i < references; i++ {
		ref, err := readReference(r)
		if err != nil {
			return nil, fmt.Errorf("reading reference %d: %v", i, err)
		}
		idx.References = append(idx.References, ref)
	}

	if err := binary.Read(r, &idx.Unplaced); err != nil {
		return nil, fmt.Errorf("reading unplaced count: %v", err)
	}
	return idx, nil
}

func readReference(r io.Reader) (*Reference, error) {
	var binCount int32
	if err := binary.Read(r, &binCount); err != nil {
		return nil, fmt.Errorf("reading bin count: %v", err)
	}
	if binCount < 0 {
		return nil, fmt.Errorf("invalid bin count (%d bins)", binCount)
	}

	var ref *Reference
	if binCount > 0 {
		ref = &Reference{Bins: make(map[uint32][]bgzf.Chunk)}
	}
	for j := int32(0); j < binCount; j++ {
		var bin struct {
			ID     uint32
			Chunks int32
		}
		if err := binary.Read(r, &bin); err != nil {
			return nil, fmt.Errorf("reading bin header: %v", err)
		}
		if bin.Chunks < 0 {
			return nil, fmt.Errorf("invalid chunk count (%d chunks)", bin.Chunks)
		}

		if bin.ID == metadataBinID {
			var metadata struct {
				Span             bgzf.Chunk
				Mapped, Unmapped uint64
			}
			if bin.Chunks != 2 {
				return nil, fmt.Errorf("invalid metadata bin (%d chunks)", bin.Chunks)
			}
			if err := binary.Read(r, &metadata); err != nil {
				return nil, fmt.Errorf("reading metadata bin: %v", err)
			}
			ref.Span = metadata.Span
			ref.Mapped = metadata.Mapped
			ref.Unmapped = metadata.Unmapped
			continue
		}

		// Chunks are read one at a time for the same reason the reference
		// table is: the count is untrusted.
		var chunks []bgzf.Chunk
		for k := int32(0); k < bin.Chunks; k++ {
			var chunk bgzf.Chunk
			if err := binary.Read(r, &chunk); err != nil {
				return nil, fmt.Errorf("reading chunk %d: %v", k, err)
			}
			chunks = append(chunks, chunk)
		}
		ref.Bins[bin.ID] = chunks
	}

	var intervals int32
	if err := binary.Read(r, &intervals); err != nil {
		return nil, fmt.Errorf("reading interval count: %v", err)
	}
	if intervals < 0 || intervals > maximumIntervalCount {
		return nil, fmt.Errorf("invalid interval count (%d intervals)", intervals)
	}
	if intervals > 0 && ref == nil {
		return nil, fmt.Errorf("linear index without bin table (%d intervals)", intervals)
	}
	if intervals > 0 {
		ref.Intervals = make([]bgzf.Address, intervals)
		if err := binary.Read(r, ref.Intervals); err != nil {
			return nil, fmt.Errorf("reading intervals: %v", err)
		}
	}
	return ref, nil
}
