package classifier

import (
	"sort"
	"strings"

	"zombie-detector/internal/model"
)

// NoZombieAlias is the alias for hosts with no active criteria.
const NoZombieAlias = "No Zombie Detected"

// noCriteriaDescription is emitted when no criterion is active.
const noCriteriaDescription = "Sin criterios de zombie activos"

// aliasByCode names every classification code. The names are fixed
// identifiers used in dashboards and downstream tooling.
var aliasByCode = map[string]string{
	"0": NoZombieAlias,
	"5": "Coloso",

	"4A": "Nemesis",
	"4B": "Clicker",
	"4C": "Revenant",
	"4D": "Ghoul",
	"4E": "Gael",

	"3A": "Solomon",
	"3B": "Bud",
	"3C": "Tarman",
	"3D": "Ben",
	"3E": "Fido",
	"3F": "Bloater",
	"3G": "Shambler",
	"3H": "Stalker",
	"3I": "Zeus",
	"3J": "Wights",

	"2A": "Mummy",
	"2B": "Wraith",
	"2C": "Vampire",
	"2D": "Banshee",
	"2E": "Phantom",
	"2F": "Specter",
	"2G": "Shade",
	"2H": "Poltergeist",
	"2I": "Spirit",
	"2J": "Apparition",

	"1A": "Zombie",
	"1B": "Walker",
	"1C": "Crawler",
	"1D": "Lurker",
	"1E": "Sleeper",
}

// AliasFor returns the alias for a code. Unknown codes fall back to
// the code itself.
func AliasFor(code string) string {
	if alias, ok := aliasByCode[code]; ok {
		return alias
	}
	return code
}

// AllAliases returns the full code → alias table.
func AllAliases() map[string]string {
	m := make(map[string]string, len(aliasByCode))
	for code, alias := range aliasByCode {
		m[code] = alias
	}
	return m
}

// Descriptions returns the full code → description table.
func Descriptions() map[string]string {
	m := make(map[string]string, len(aliasByCode))
	for _, code := range AllCodes() {
		indices, _ := Indices(code)
		m[code] = DescriptionFor(indices)
	}
	return m
}

// ActiveIndices returns the indices of the host's active criteria in
// ascending order. Inactive and unavailable values both count as not
// active.
func ActiveIndices(h *model.HostRecord) []int {
	active := make([]int, 0, CriteriaFieldCount())
	for i, c := range h.Criteria() {
		if c.Active() {
			active = append(active, i)
		}
	}
	return active
}

// CriteriaFieldCount is the number of criteria per host.
func CriteriaFieldCount() int {
	return len(CriteriaFields)
}

// Classify maps a host's criterion vector to its code, alias and
// human-readable description. Classification is a pure function of the
// five criterion values.
func Classify(h *model.HostRecord) (code, alias, description string) {
	active := ActiveIndices(h)
	code = Encode(active)
	return code, aliasByCode[code], DescriptionFor(active)
}

// DescriptionFor joins the description fragments of the active criteria
// in index order.
func DescriptionFor(active []int) string {
	if len(active) == 0 {
		return noCriteriaDescription
	}

	sorted := make([]int, len(active))
	copy(sorted, active)
	sort.Ints(sorted)

	parts := make([]string, 0, len(sorted))
	for _, idx := range sorted {
		parts = append(parts, criteriaDescriptions[idx])
	}
	return strings.Join(parts, ", ")
}

// DefaultStates returns the default per-code state policy: every zombie
// code enabled, "0" disabled.
func DefaultStates() map[string]int {
	states := make(map[string]int, len(aliasByCode))
	for code := range aliasByCode {
		if code == "0" {
			states[code] = 0
			continue
		}
		states[code] = 1
	}
	return states
}

// ResolveState looks up the policy state for a code. Codes absent from
// the policy are enabled, so a partial policy only needs to list the
// codes it suppresses.
func ResolveState(states map[string]int, code string) int {
	if states == nil {
		return 1
	}
	if state, ok := states[code]; ok {
		return state
	}
	return 1
}
