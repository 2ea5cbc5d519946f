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

import "testing"

func TestRegionToBin(t *testing.T) {
	testCases := []struct {
		name       string
		start, end uint32
		want       uint32
	}{
		{"whole sequence", 0, 1 << 29, 0},
		{"first level four tile", 0, 16384, 4681},
		{"second level four tile", 16384, 16385, 4682},
		{"small interval", 1000, 2000, 4681},
		{"level three interval", 0, 1 << 17, 585},
		{"level two interval", 0, 1 << 20, 73},
		{"level one interval", 0, 1 << 23, 9},
		{"level zero offset", 1 << 26, (1 << 26) + 100, 4681 + (1<<26)>>14},
		{"spanning level boundary", 16000, 17000, 585},
		{"open ended", 1000, 0, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RegionToBin(tc.start, tc.end); got != tc.want {
				t.Errorf("RegionToBin(%d, %d): got %d, want %d", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestBinsForRange_ContainsRegionBin(t *testing.T) {
	// The candidate set for an interval must contain the interval's own bin
	// and bin 0.
	intervals := []struct{ start, end uint32 }{
		{0, 1},
		{0, 16384},
		{1000, 2000},
		{16000, 17000},
		{1 << 20, 1<<20 + 1<<17},
		{1 << 28, 1 << 29},
	}
	for _, interval := range intervals {
		bins := BinsForRange(interval.start, interval.end)
		want := RegionToBin(interval.start, interval.end)

		var hasOwn, hasZero bool
		for _, bin := range bins {
			if uint32(bin) == want {
				hasOwn = true
			}
			if bin == 0 {
				hasZero = true
			}
		}
		if !hasOwn {
			t.Errorf("BinsForRange(%d, %d) misses own bin %d", interval.start, interval.end, want)
		}
		if !hasZero {
			t.Errorf("BinsForRange(%d, %d) misses bin 0", interval.start, interval.end)
		}
	}
}

func TestBinsForRange(t *testing.T) {
	testCases := []struct {
		name       string
		start, end uint32
		want       []uint16
	}{
		{"single finest tile", 0, 100, []uint16{0, 1, 9, 73, 585, 4681}},
		{"two finest tiles", 16000, 17000, []uint16{0, 1, 9, 73, 585, 4681, 4682}},
		{"empty interval", 100, 100, nil},
		{"inverted interval", 200, 100, nil},
		{"start out of range", 1<<29 + 1, 1<<29 + 2, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := BinsForRange(tc.start, tc.end)
			if len(got) != len(tc.want) {
				t.Fatalf("BinsForRange(%d, %d): got %v, want %v", tc.start, tc.end, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("BinsForRange(%d, %d): got %v, want %v", tc.start, tc.end, got, tc.want)
				}
			}
		})
	}
}
