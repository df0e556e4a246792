// Package classifier maps host criterion vectors to classification
// codes, aliases and descriptions.
//
// The five criteria are indexed 0..4 in a fixed order. Every one of the
// 32 possible active-criteria subsets has exactly one code: "0" for the
// empty set, "5" for the full set, and "<k><letter>" for the subsets of
// size 1..4. The letter assignments below are an external contract
// shared with alias tables and state configurations downstream; they
// must never be reordered.
package classifier

import (
	"fmt"
	"sort"
)

// CriteriaFields lists the criterion field names in canonical order
// (index 0..4). The order determines which subset maps to which code.
var CriteriaFields = [5]string{
	"Recent_CPU_decrease_criterion",
	"Recent_net_traffic_decrease_criterion",
	"Sustained_Low_CPU_criterion",
	"Excessively_constant_RAM_criterion",
	"Daily_CPU_profile_lost_criterion",
}

// criteriaDescriptions holds the per-criterion description fragments,
// index-aligned with CriteriaFields.
var criteriaDescriptions = [5]string{
	"Detectada una bajada repentina en el uso de CPU",
	"Detectada una caída brusca en el tráfico de red reciente",
	"El uso de CPU se mantiene demasiado bajo durante un tiempo prolongado",
	"El uso de RAM permanece anormalmente constante, sin variaciones",
	"El patrón diario esperado de uso de CPU no se está cumpliendo",
}

// For 4-of-5 subsets the letter encodes the single missing criterion.
var fourMissingToCode = map[int]string{
	0: "4A",
	1: "4B",
	2: "4C",
	3: "4D",
	4: "4E",
}

// threeCombos enumerates all C(5,3) subsets in lexicographic order of
// ascending index tuples; position i gets letter 'A'+i.
var threeCombos = [10][3]int{
	{0, 1, 2}, // A
	{0, 1, 3}, // B
	{0, 1, 4}, // C
	{0, 2, 3}, // D
	{0, 2, 4}, // E
	{0, 3, 4}, // F
	{1, 2, 3}, // G
	{1, 2, 4}, // H
	{1, 3, 4}, // I
	{2, 3, 4}, // J
}

// twoCombos enumerates all C(5,2) subsets, same ordering scheme.
var twoCombos = [10][2]int{
	{0, 1}, // A
	{0, 2}, // B
	{0, 3}, // C
	{0, 4}, // D
	{1, 2}, // E
	{1, 3}, // F
	{1, 4}, // G
	{2, 3}, // H
	{2, 4}, // I
	{3, 4}, // J
}

var (
	threeSetToCode = buildThreeSetToCode()
	twoSetToCode   = buildTwoSetToCode()
)

func buildThreeSetToCode() map[[3]int]string {
	m := make(map[[3]int]string, len(threeCombos))
	for i, c := range threeCombos {
		m[c] = fmt.Sprintf("3%c", 'A'+i)
	}
	return m
}

func buildTwoSetToCode() map[[2]int]string {
	m := make(map[[2]int]string, len(twoCombos))
	for i, c := range twoCombos {
		m[c] = fmt.Sprintf("2%c", 'A'+i)
	}
	return m
}

// Encode maps a set of active criterion indices to its classification
// code. The mapping is total over subsets of {0..4}; indices outside
// that range or duplicates are a programming error and panic.
func Encode(active []int) string {
	sorted := normalize(active)

	switch len(sorted) {
	case 0:
		return "0"
	case 1:
		return fmt.Sprintf("1%c", 'A'+sorted[0])
	case 2:
		return twoSetToCode[[2]int{sorted[0], sorted[1]}]
	case 3:
		return threeSetToCode[[3]int{sorted[0], sorted[1], sorted[2]}]
	case 4:
		return fourMissingToCode[missingIndex(sorted)]
	case 5:
		return "5"
	default:
		panic(fmt.Sprintf("classifier: invalid active index set %v", active))
	}
}

// normalize sorts a copy of the indices and validates the 0..4 range.
func normalize(active []int) []int {
	sorted := make([]int, len(active))
	copy(sorted, active)
	sort.Ints(sorted)

	for i, idx := range sorted {
		if idx < 0 || idx > 4 {
			panic(fmt.Sprintf("classifier: criterion index %d out of range", idx))
		}
		if i > 0 && sorted[i-1] == idx {
			panic(fmt.Sprintf("classifier: duplicate criterion index %d", idx))
		}
	}
	return sorted
}

// missingIndex returns the one index of 0..4 absent from a sorted
// 4-element subset.
func missingIndex(sorted []int) int {
	present := [5]bool{}
	for _, idx := range sorted {
		present[idx] = true
	}
	for i, p := range present {
		if !p {
			return i
		}
	}
	return -1
}

// Decode returns the criterion field names belonging to a code, in
// index order. Unknown codes yield an empty list.
func Decode(code string) []string {
	indices, ok := subsetByCode[code]
	if !ok {
		return []string{}
	}
	fields := make([]string, 0, len(indices))
	for _, idx := range indices {
		fields = append(fields, CriteriaFields[idx])
	}
	return fields
}

// Indices returns the active criterion indices for a code and whether
// the code is known.
func Indices(code string) ([]int, bool) {
	indices, ok := subsetByCode[code]
	if !ok {
		return nil, false
	}
	out := make([]int, len(indices))
	copy(out, indices)
	return out, true
}

// subsetByCode is the inverse mapping, built once from the forward
// tables so the two can never drift apart.
var subsetByCode = buildSubsetByCode()

func buildSubsetByCode() map[string][]int {
	m := make(map[string][]int, 32)
	m["0"] = []int{}
	m["5"] = []int{0, 1, 2, 3, 4}

	for i := 0; i < 5; i++ {
		m[fmt.Sprintf("1%c", 'A'+i)] = []int{i}
	}
	for _, c := range twoCombos {
		m[twoSetToCode[c]] = []int{c[0], c[1]}
	}
	for _, c := range threeCombos {
		m[threeSetToCode[c]] = []int{c[0], c[1], c[2]}
	}
	for missing, code := range fourMissingToCode {
		subset := make([]int, 0, 4)
		for i := 0; i < 5; i++ {
			if i != missing {
				subset = append(subset, i)
			}
		}
		m[code] = subset
	}
	return m
}

// AllCodes returns every classification code, sorted by subset size
// then letter.
func AllCodes() []string {
	codes := make([]string, 0, len(subsetByCode))
	for code := range subsetByCode {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		si, sj := len(subsetByCode[codes[i]]), len(subsetByCode[codes[j]])
		if si != sj {
			return si < sj
		}
		return codes[i] < codes[j]
	})
	return codes
}

// Combinations returns the full code → criterion-field mapping, used
// for documentation and the /criteria API.
func Combinations() map[string][]string {
	m := make(map[string][]string, len(subsetByCode))
	for code := range subsetByCode {
		m[code] = Decode(code)
	}
	return m
}

// CodesBySize groups all (code, alias) pairs by active-criteria count.
func CodesBySize() map[int]map[string]string {
	grouped := make(map[int]map[string]string, 6)
	for size := 0; size <= 5; size++ {
		grouped[size] = make(map[string]string)
	}
	for code, subset := range subsetByCode {
		grouped[len(subset)][code] = AliasFor(code)
	}
	return grouped
}
