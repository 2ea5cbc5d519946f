// Package genomics contains definitions related to genomic data.
package genomics

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRegion indicates a query region that can never match records:
// an unknown reference sequence or an inverted coordinate range.
var ErrInvalidRegion = errors.New("genomics: invalid region")

// Region defines a region of genomic interest.
type Region struct {
	// ReferenceID specifies the reference sequence to match.
	ReferenceID int32
	// Start and End specify the 0-based half-open range (in base pairs)
	// relative to the reference.  If End is zero, it is treated as though it
	// was set to the last possible record position.
	Start, End uint32
}

func (region Region) String() string {
	return fmt.Sprintf("[reference:%d, start:%d, end:%d]", region.ReferenceID, region.Start, region.End)
}

// Overlaps reports whether the half-open interval [start, end) intersects
// the region.  A zero region End matches any interval on the reference.
func (region Region) Overlaps(referenceID int32, start, end uint32) bool {
	if referenceID != region.ReferenceID {
		return false
	}
	if region.End == 0 {
		return end > region.Start
	}
	return start < region.End && end > region.Start
}

// ParseRegion parses a region of the form "reference", "reference:start" or
// "reference:start-end" where reference is a numeric reference sequence ID
// and start and end are 1-based inclusive coordinates, following the usual
// external convention.  The returned Region uses the internal 0-based
// half-open form.
func ParseRegion(input string) (Region, error) {
	name, coords, hasCoords := strings.Cut(input, ":")
	id, err := strconv.ParseInt(name, 10, 32)
	if err != nil || id < 0 {
		return Region{}, fmt.Errorf("%w: bad reference %q", ErrInvalidRegion, name)
	}
	region := Region{ReferenceID: int32(id)}
	if !hasCoords {
		return region, nil
	}

	first, second, hasEnd := strings.Cut(coords, "-")
	start, err := strconv.ParseUint(first, 10, 32)
	if err != nil || start < 1 {
		return Region{}, fmt.Errorf("%w: bad start %q", ErrInvalidRegion, first)
	}
	region.Start = uint32(start - 1)
	if !hasEnd {
		return region, nil
	}

	end, err := strconv.ParseUint(second, 10, 32)
	if err != nil || end < start {
		return Region{}, fmt.Errorf("%w: bad end %q", ErrInvalidRegion, second)
	}
	region.End = uint32(end)
	return region, nil
}
