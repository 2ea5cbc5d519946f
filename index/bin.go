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

const (
	// The maximum record length as constrained by the size of the level zero
	// bin in the binning scheme.
	maximumRecordLength = 1 << 29

	// The size of each tiling window in the linear index.
	linearWindowSize = 1 << 14
)

// RegionToBin returns the ID of the smallest bin that fully contains the
// half-open interval [start, end).  This function is derived from the C
// examples in the BAM index specification and must stay bit-exact with that
// scheme.
func RegionToBin(start, end uint32) uint32 {
	if end == 0 || end > maximumRecordLength {
		end = maximumRecordLength
	}
	end--
	switch {
	case start>>14 == end>>14:
		return 4681 + start>>14
	case start>>17 == end>>17:
		return 585 + start>>17
	case start>>20 == end>>20:
		return 73 + start>>20
	case start>>23 == end>>23:
		return 9 + start>>23
	case start>>26 == end>>26:
		return 1 + start>>26
	}
	return 0
}

// BinsForRange returns every bin whose tile range intersects the half-open
// interval [start, end).  The result over-approximates the true overlap set
// and always includes bin 0.  This function is derived from the C examples
// in the BAM index specification.
func BinsForRange(start, end uint32) []uint16 {
	if end == 0 || end > maximumRecordLength {
		end = maximumRecordLength
	}
	if end <= start {
		return nil
	}
	if start > maximumRecordLength {
		return nil
	}

	end--

	bins := []uint16{0}
	for k := uint16(1 + (start >> 26)); k <= uint16(1+(end>>26)); k++ {
		bins = append(bins, k)
	}
	for k := uint16(9 + (start >> 23)); k <= uint16(9+(end>>23)); k++ {
		bins = append(bins, k)
	}
	for k := uint16(73 + (start >> 20)); k <= uint16(73+(end>>20)); k++ {
		bins = append(bins, k)
	}
	for k := uint16(585 + (start >> 17)); k <= uint16(585+(end>>17)); k++ {
		bins = append(bins, k)
	}
	for k := uint16(4681 + (start >> 14)); k <= uint16(4681+(end>>14)); k++ {
		bins = append(bins, k)
	}
	return bins
}
