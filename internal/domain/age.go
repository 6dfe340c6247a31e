package domain

import (
	"slices"
	"sort"
)

// Bounds of the age slider.
const (
	MinAge = 0
	MaxAge = 120
)

// DefaultAgeRange is the slider position before the user moves it.
var DefaultAgeRange = AgeRange{18, 65}

// AgeRange is an inclusive [min, max] client age range.
type AgeRange [2]int

// Valid reports whether the range lies within the slider bounds.
func (r AgeRange) Valid() bool {
	return r[0] >= MinAge && r[1] <= MaxAge && r[0] <= r[1]
}

// AgeRanges is the set of ranges a professional treats, sorted by min.
type AgeRanges []AgeRange

// Add returns the ranges with r inserted. Duplicates are ignored.
func (a AgeRanges) Add(r AgeRange) (AgeRanges, error) {
	if !r.Valid() {
		return a, &ValidationError{Field: "age_ranges", Code: CodeInvalidAgeRange}
	}
	if slices.Contains(a, r) {
		return a, nil
	}
	out := append(slices.Clone(a), r)
	sort.SliceStable(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out, nil
}

// Remove returns the ranges without the element at i.
func (a AgeRanges) Remove(i int) AgeRanges {
	if i < 0 || i >= len(a) {
		return a
	}
	return slices.Delete(slices.Clone(a), i, i+1)
}
