// Package series reshapes per-city price rows into aligned chart series.
//
// Two policies for absent data live side by side here: the aligner zero-fills
// so every chart series is dense over the shared axis, while the ranking
// builder drops non-positive or missing prices from its buckets.
package series

import (
	"cmp"
	"errors"
	"slices"
)

// MaxCities is the largest selection the multi-city endpoints accept.
// Longer selections are truncated, not rejected.
const MaxCities = 5

// ErrNoData reports that a non-empty selection matched no rows.
var ErrNoData = errors.New("no data found")

// Row is a single (city, axis key, value) observation. Keys are either
// "YYYY-MM" strings or integer years.
type Row[K cmp.Ordered] struct {
	City  string
	Key   K
	Value float64
}

// Aligned is a dense city x axis matrix. Every city in Cities has a value
// for every key in Axis.
type Aligned[K cmp.Ordered] struct {
	Axis   []K
	Cities []string
	Matrix map[string]map[K]float64
}

// Value returns the matrix entry for city at key, 0 when absent.
func (a Aligned[K]) Value(city string, key K) float64 {
	return a.Matrix[city][key]
}

// CapSelection drops repeated cities, keeping first occurrences in order,
// then truncates the selection to MaxCities entries.
func CapSelection(selected []string) []string {
	unique := make([]string, 0, min(len(selected), MaxCities))
	seen := make(map[string]struct{}, len(selected))
	for _, city := range selected {
		if _, ok := seen[city]; ok {
			continue
		}
		seen[city] = struct{}{}
		unique = append(unique, city)
		if len(unique) == MaxCities {
			break
		}
	}
	return unique
}

// Align builds the sorted axis from every key in rows and fills a matrix
// for the (capped) selection. Missing (city, key) pairs become 0.
//
// An empty selection yields an empty result and no error. A non-empty
// selection with no rows yields ErrNoData alongside an empty axis.
func Align[K cmp.Ordered](rows []Row[K], selected []string) (Aligned[K], error) {
	selected = CapSelection(selected)

	aligned := Aligned[K]{
		Axis:   []K{},
		Cities: append([]string{}, selected...),
		Matrix: make(map[string]map[K]float64, len(selected)),
	}
	if len(selected) == 0 {
		return aligned, nil
	}
	if len(rows) == 0 {
		return aligned, ErrNoData
	}

	observed := make(map[string]map[K]float64)
	seen := make(map[K]struct{})
	for _, r := range rows {
		if _, ok := seen[r.Key]; !ok {
			seen[r.Key] = struct{}{}
			aligned.Axis = append(aligned.Axis, r.Key)
		}
		byKey, ok := observed[r.City]
		if !ok {
			byKey = make(map[K]float64)
			observed[r.City] = byKey
		}
		byKey[r.Key] = r.Value
	}
	slices.Sort(aligned.Axis)

	for _, city := range aligned.Cities {
		dense := make(map[K]float64, len(aligned.Axis))
		for _, key := range aligned.Axis {
			dense[key] = observed[city][key]
		}
		aligned.Matrix[city] = dense
	}

	return aligned, nil
}
