package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriStateUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want TriState
	}{
		{"int one", `1`, CriterionActive},
		{"int zero", `0`, CriterionInactive},
		{"int minus one", `-1`, CriterionUnavailable},
		{"float one", `1.0`, CriterionActive},
		{"string one", `"1"`, CriterionActive},
		{"string zero", `"0"`, CriterionInactive},
		{"string minus one", `"-1"`, CriterionUnavailable},
		{"bool true", `true`, CriterionActive},
		{"bool false", `false`, CriterionInactive},
		{"null", `null`, CriterionInactive},
		{"empty string", `""`, CriterionInactive},
		{"garbage string", `"on"`, CriterionInactive},
		{"other number", `7`, CriterionInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts TriState
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts))
			assert.Equal(t, tt.want, ts)
		})
	}
}

func TestHostRecordUnmarshalPassthrough(t *testing.T) {
	raw := `{
		"dynatrace_host_id": "HOST-1",
		"hostname": "host-1.example.com",
		"Recent_CPU_decrease_criterion": 1,
		"Recent_net_traffic_decrease_criterion": "0",
		"Sustained_Low_CPU_criterion": -1,
		"Excessively_constant_RAM_criterion": 0,
		"Daily_CPU_profile_lost_criterion": 0,
		"tenant": "prod",
		"datacenter": "eu-west",
		"cpu_avg_7d": 0.42
	}`

	var h HostRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &h))

	assert.Equal(t, "HOST-1", h.DynatraceHostID)
	assert.Equal(t, CriterionActive, h.RecentCPUDecrease)
	assert.Equal(t, CriterionUnavailable, h.SustainedLowCPU)
	assert.Equal(t, "prod", h.Tenant)

	// Unknown keys land in Extra, known keys do not.
	assert.Equal(t, "eu-west", h.Extra["datacenter"])
	assert.Equal(t, 0.42, h.Extra["cpu_avg_7d"])
	assert.NotContains(t, h.Extra, "tenant")

	// The round trip keeps the passthrough fields.
	out, err := json.Marshal(&h)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "eu-west", m["datacenter"])
	assert.Equal(t, "HOST-1", m["dynatrace_host_id"])
}

func TestCriteriaOrder(t *testing.T) {
	h := HostRecord{
		RecentCPUDecrease:        1,
		RecentNetTrafficDecrease: 0,
		SustainedLowCPU:          -1,
		ExcessivelyConstantRAM:   1,
		DailyCPUProfileLost:      0,
	}

	got := h.Criteria()
	want := [CriteriaFieldCount]TriState{1, 0, -1, 1, 0}
	assert.Equal(t, want, got)
}

func TestMissingHostFields(t *testing.T) {
	complete := json.RawMessage(`{
		"dynatrace_host_id": "HOST-1",
		"hostname": "h",
		"Recent_CPU_decrease_criterion": 0,
		"Recent_net_traffic_decrease_criterion": 0,
		"Sustained_Low_CPU_criterion": 0,
		"Excessively_constant_RAM_criterion": 0,
		"Daily_CPU_profile_lost_criterion": 0
	}`)
	assert.Empty(t, MissingHostFields(complete))

	partial := json.RawMessage(`{"dynatrace_host_id": "HOST-1", "hostname": "h"}`)
	missing := MissingHostFields(partial)
	assert.Len(t, missing, 5)
	assert.Contains(t, missing, "Recent_CPU_decrease_criterion")

	assert.Equal(t, RequiredHostFields, MissingHostFields(json.RawMessage(`[1,2]`)))
}

func TestEnrichedHostMarshalFlattens(t *testing.T) {
	e := EnrichedHost{
		HostRecord: HostRecord{
			DynatraceHostID: "HOST-1",
			Hostname:        "host-1.example.com",
			Extra:           map[string]any{"datacenter": "eu-west"},
		},
		CriterionType:        "1A",
		CriterionAlias:       "Zombie",
		CriterionDescription: "Detectada una bajada repentina en el uso de CPU",
		CriterionState:       1,
		IsZombie:             true,
	}

	out, err := json.Marshal(e)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "HOST-1", m["dynatrace_host_id"])
	assert.Equal(t, "1A", m["criterion_type"])
	assert.Equal(t, "Zombie", m["criterion_alias"])
	assert.Equal(t, true, m["is_zombie"])
	assert.Equal(t, "eu-west", m["datacenter"])
}

func TestEnrichedHostUnmarshal(t *testing.T) {
	raw := `{
		"dynatrace_host_id": "HOST-1",
		"hostname": "host-1.example.com",
		"Recent_CPU_decrease_criterion": 1,
		"Recent_net_traffic_decrease_criterion": 0,
		"Sustained_Low_CPU_criterion": 0,
		"Excessively_constant_RAM_criterion": 0,
		"Daily_CPU_profile_lost_criterion": 0,
		"datacenter": "eu-west",
		"criterion_type": "1A",
		"criterion_alias": "Zombie",
		"criterion_description": "Detectada una bajada repentina en el uso de CPU",
		"criterion_state": 1,
		"is_zombie": true
	}`

	var e EnrichedHost
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Equal(t, "1A", e.CriterionType)
	assert.Equal(t, "Zombie", e.CriterionAlias)
	assert.Equal(t, 1, e.CriterionState)
	assert.True(t, e.IsZombie)

	// Enrichment keys must not leak into the passthrough metadata.
	assert.Contains(t, e.Extra, "datacenter")
	assert.NotContains(t, e.Extra, "criterion_type")
	assert.NotContains(t, e.Extra, "is_zombie")
}

func TestFilterZombies(t *testing.T) {
	hosts := []*EnrichedHost{
		{HostRecord: HostRecord{DynatraceHostID: "HOST-1"}, IsZombie: true},
		{HostRecord: HostRecord{DynatraceHostID: "HOST-2"}},
		nil,
		{HostRecord: HostRecord{DynatraceHostID: "HOST-3"}, IsZombie: true},
	}

	zombies := FilterZombies(hosts)
	require.Len(t, zombies, 2)
	assert.Equal(t, "HOST-1", zombies[0].DynatraceHostID)
	assert.Equal(t, "HOST-3", zombies[1].DynatraceHostID)
}

func TestNewDetectionSummary(t *testing.T) {
	hosts := []*EnrichedHost{
		{CriterionType: "1A", IsZombie: true},
		{CriterionType: "1A", IsZombie: true},
		{CriterionType: "2C", IsZombie: true},
		{CriterionType: "0"},
		nil,
	}

	s := NewDetectionSummary(hosts)
	assert.Equal(t, 4, s.TotalHosts)
	assert.Equal(t, 3, s.ZombieHosts)
	assert.Equal(t, 1, s.NonZombieHosts)
	assert.Equal(t, 75.0, s.ZombiePercentage)
	assert.Equal(t, 2, s.CriterionBreakdown["1A"])
	assert.Equal(t, 1, s.CriterionBreakdown["0"])
}

func TestNewKilledSummary(t *testing.T) {
	s := NewKilledSummary(nil, 24)
	require.NotNil(t, s.KilledZombies)
	assert.Equal(t, 0, s.KilledZombiesCount)

	s = NewKilledSummary([]*KilledZombie{
		{DynatraceHostID: "HOST-1", CriterionType: "2A"},
		{DynatraceHostID: "HOST-2"},
	}, 48)
	assert.Equal(t, 2, s.KilledZombiesCount)
	assert.Equal(t, 48, s.SinceHours)
	assert.Equal(t, 1, s.CriterionBreakdown["2A"])
	assert.Equal(t, 1, s.CriterionBreakdown["unknown"])
}
