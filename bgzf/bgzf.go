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

// Package bgzf implements the BGZF seekable block-compression container:
// virtual addresses, block encoding and decoding, and buffered readers and
// writers that support random access by virtual address.
package bgzf

import (
	"fmt"
	"sort"
	"strconv"
)

// LastAddress is the maximum valid BGZF address.
const LastAddress = Address(0xffffffffffffffff)

// MaximumBlockSize is the maximum uncompressed payload size of a single
// block.  The data offset of an Address must fit in 16 bits.
const MaximumBlockSize = 65536

// Address stores a BGZF "virtual address".  The lower 16 bits store the data
// offset inside the uncompressed block payload and the upper 48 bits store
// the block offset inside the compressed archive.  Numeric order on Address
// values matches stream order.
type Address uint64

// NewAddress returns a new Address with the provided offsets.
func NewAddress(blockOffset uint64, dataOffset uint16) Address {
	return Address(blockOffset<<16 | uint64(dataOffset))
}

// BlockOffset returns the offset to the start of the compressed block.
func (v Address) BlockOffset() uint64 {
	return uint64(v >> 16)
}

// DataOffset returns the offset to the data in the uncompressed block.
func (v Address) DataOffset() uint16 {
	return uint16(v & 0xffff)
}

// String returns a representation of v that can be parsed with ParseAddress.
func (v Address) String() string {
	return strconv.FormatUint(uint64(v), 16)
}

// ParseAddress attempts to parse input into an Address.
func ParseAddress(input string) (Address, error) {
	v, err := strconv.ParseUint(input, 16, 64)
	return Address(v), err
}

// Chunk specifies a region from Start (inclusive) to End (exclusive) inside
// a BGZF file.
type Chunk struct {
	Start, End Address
}

// String returns a human readable description of the receiver.
func (v Chunk) String() string {
	return fmt.Sprintf("[%s-%s]", v.Start, v.End)
}

// Merge sorts input by start address and joins any chunks that overlap or
// touch, returning the minimal ordered list of disjoint chunks.  The input
// slice is reordered in place.
func Merge(input []Chunk) []Chunk {
	if len(input) == 0 {
		return nil
	}
	sort.Slice(input, func(i, j int) bool {
		return input[i].Start < input[j].Start
	})

	merged := []Chunk{input[0]}
	for _, chunk := range input[1:] {
		last := &merged[len(merged)-1]
		if chunk.Start <= last.End {
			if last.End < chunk.End {
				last.End = chunk.End
			}
		} else {
			merged = append(merged, chunk)
		}
	}
	return merged
}
