// Package model provides data models for the zombie detector.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TriState represents the value of a single detection criterion:
// 1 = active, 0 = inactive, -1 = unavailable.
// Only Active (==1) counts towards classification.
type TriState int

const (
	CriterionActive      TriState = 1
	CriterionInactive    TriState = 0
	CriterionUnavailable TriState = -1
)

// Active reports whether the criterion counts towards classification.
func (t TriState) Active() bool {
	return t == CriterionActive
}

// UnmarshalJSON decodes a criterion value tolerantly: numbers, numeric
// strings, booleans and null are all accepted; anything that cannot be
// coerced to an integer is treated as inactive. It never returns an
// error, so a malformed criterion can not fail batch decoding.
func (t *TriState) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)

	switch s {
	case "", "null":
		*t = CriterionInactive
		return nil
	case "true":
		*t = CriterionActive
		return nil
	case "false":
		*t = CriterionInactive
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*t = CriterionInactive
		return nil
	}

	switch int(f) {
	case 1:
		*t = CriterionActive
	case -1:
		*t = CriterionUnavailable
	default:
		*t = CriterionInactive
	}
	return nil
}

// CriteriaFieldCount is the number of detection criteria per host.
const CriteriaFieldCount = 5

// RequiredHostFields lists the fields every incoming host record must
// carry. The criterion field names and their order are an external
// contract shared with the upstream reporting pipeline.
var RequiredHostFields = []string{
	"dynatrace_host_id",
	"hostname",
	"Recent_CPU_decrease_criterion",
	"Recent_net_traffic_decrease_criterion",
	"Sustained_Low_CPU_criterion",
	"Excessively_constant_RAM_criterion",
	"Daily_CPU_profile_lost_criterion",
}

// knownHostFields are the JSON keys decoded into named struct fields;
// everything else lands in Extra and is passed through untouched.
var knownHostFields = []string{
	"dynatrace_host_id",
	"hostname",
	"Recent_CPU_decrease_criterion",
	"Recent_net_traffic_decrease_criterion",
	"Sustained_Low_CPU_criterion",
	"Excessively_constant_RAM_criterion",
	"Daily_CPU_profile_lost_criterion",
	"report_date",
	"tenant",
	"asset_tag",
	"pending_decommission",
}

// HostRecord is one host as delivered by the upstream pipeline:
// identity, the five pre-computed criteria and passthrough metadata.
type HostRecord struct {
	DynatraceHostID string `json:"dynatrace_host_id"`
	Hostname        string `json:"hostname"`

	RecentCPUDecrease        TriState `json:"Recent_CPU_decrease_criterion"`
	RecentNetTrafficDecrease TriState `json:"Recent_net_traffic_decrease_criterion"`
	SustainedLowCPU          TriState `json:"Sustained_Low_CPU_criterion"`
	ExcessivelyConstantRAM   TriState `json:"Excessively_constant_RAM_criterion"`
	DailyCPUProfileLost      TriState `json:"Daily_CPU_profile_lost_criterion"`

	ReportDate          string `json:"report_date,omitempty"`
	Tenant              string `json:"tenant,omitempty"`
	AssetTag            string `json:"asset_tag,omitempty"`
	PendingDecommission string `json:"pending_decommission,omitempty"`

	// Extra holds unrecognized input fields so they survive the
	// enrichment round trip (raw criterion values, custom tags, ...).
	Extra map[string]any `json:"-"`
}

// Criteria returns the five criterion values in canonical order.
func (h *HostRecord) Criteria() [CriteriaFieldCount]TriState {
	return [CriteriaFieldCount]TriState{
		h.RecentCPUDecrease,
		h.RecentNetTrafficDecrease,
		h.SustainedLowCPU,
		h.ExcessivelyConstantRAM,
		h.DailyCPUProfileLost,
	}
}

// UnmarshalJSON decodes a host record and collects unknown keys into
// Extra so arbitrary upstream metadata is preserved.
func (h *HostRecord) UnmarshalJSON(data []byte) error {
	type alias HostRecord
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range knownHostFields {
		delete(raw, k)
	}
	if len(raw) > 0 {
		a.Extra = make(map[string]any, len(raw))
		for k, v := range raw {
			var val any
			if err := json.Unmarshal(v, &val); err == nil {
				a.Extra[k] = val
			}
		}
	}

	*h = HostRecord(a)
	return nil
}

// MarshalJSON emits the named fields plus all passthrough metadata.
func (h HostRecord) MarshalJSON() ([]byte, error) {
	type alias HostRecord
	base, err := json.Marshal(alias(h))
	if err != nil {
		return nil, err
	}

	if len(h.Extra) == 0 {
		return base, nil
	}

	var m map[string]any
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range h.Extra {
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// MissingHostFields reports which required fields are absent from a raw
// host object. A nil result means the record is structurally valid.
func MissingHostFields(raw json.RawMessage) []string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return RequiredHostFields
	}

	var missing []string
	for _, field := range RequiredHostFields {
		if _, ok := obj[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

// enrichmentFields are the keys added by classification; they are
// stripped from Extra when re-decoding an enriched record.
var enrichmentFields = []string{
	"criterion_type",
	"criterion_alias",
	"criterion_description",
	"criterion_state",
	"is_zombie",
}

// EnrichedHost is a host record plus its classification result.
type EnrichedHost struct {
	HostRecord

	CriterionType        string `json:"criterion_type"`
	CriterionAlias       string `json:"criterion_alias"`
	CriterionDescription string `json:"criterion_description"`
	CriterionState       int    `json:"criterion_state"`
	IsZombie             bool   `json:"is_zombie"`
}

// MarshalJSON flattens the embedded record and the enrichment fields
// into a single object, the shape downstream consumers expect.
func (e EnrichedHost) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(e.HostRecord)
	if err != nil {
		return nil, err
	}

	var m map[string]any
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	m["criterion_type"] = e.CriterionType
	m["criterion_alias"] = e.CriterionAlias
	m["criterion_description"] = e.CriterionDescription
	m["criterion_state"] = e.CriterionState
	m["is_zombie"] = e.IsZombie
	return json.Marshal(m)
}

// UnmarshalJSON decodes a flattened enriched record.
func (e *EnrichedHost) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &e.HostRecord); err != nil {
		return err
	}

	var aux struct {
		CriterionType        string          `json:"criterion_type"`
		CriterionAlias       string          `json:"criterion_alias"`
		CriterionDescription string          `json:"criterion_description"`
		CriterionState       json.RawMessage `json:"criterion_state"`
		IsZombie             bool            `json:"is_zombie"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("failed to decode enrichment fields: %w", err)
	}
	e.CriterionType = aux.CriterionType
	e.CriterionAlias = aux.CriterionAlias
	e.CriterionDescription = aux.CriterionDescription
	e.IsZombie = aux.IsZombie
	if len(aux.CriterionState) > 0 {
		var state int
		if err := json.Unmarshal(aux.CriterionState, &state); err == nil {
			e.CriterionState = state
		}
	}

	// The flat decode above stuffed the enrichment keys into Extra.
	for _, k := range enrichmentFields {
		delete(e.HostRecord.Extra, k)
	}
	return nil
}

// FilterZombies returns only the hosts classified as zombies.
func FilterZombies(hosts []*EnrichedHost) []*EnrichedHost {
	zombies := make([]*EnrichedHost, 0, len(hosts))
	for _, h := range hosts {
		if h != nil && h.IsZombie {
			zombies = append(zombies, h)
		}
	}
	return zombies
}
