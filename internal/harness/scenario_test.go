package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
today: 2024-01-01
policy:
  renewal_base: today
setup:
  - op: create_person
    as: alex
    args: { name: Alex }
flow:
  - op: record_payment
    as: p1
    args: { person: $alex, amounts: [10.00] }
    expect:
      result: { total: "10.00" }
assertions:
  - type: outcome_count
    op: record_payment
    count: 1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, "2024-01-01", scenario.Today.String())
	assert.Equal(t, "today", scenario.Policy["renewal_base"])
	require.Len(t, scenario.Setup, 1)
	require.Len(t, scenario.Flow, 1)
	assert.Len(t, scenario.Assertions, 1)
	assert.Equal(t, "record_payment", scenario.Flow[0].Op)
	assert.Equal(t, "p1", scenario.Flow[0].As)
	require.NotNil(t, scenario.Flow[0].Expect)
	assert.Equal(t, "10.00", scenario.Flow[0].Expect.Result["total"])
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_TestdataScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			require.NoError(t, err)
		})
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			content: "name: x\ntoday: 2024-01-01\nflw: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "today: 2024-01-01\nflow:\n  - op: create_person\n",
			wantErr: "name is required",
		},
		{
			name:    "missing today",
			content: "name: x\nflow:\n  - op: create_person\n",
			wantErr: "today is required",
		},
		{
			name:    "bad today",
			content: "name: x\ntoday: tomorrow\nflow:\n  - op: create_person\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "empty flow",
			content: "name: x\ntoday: 2024-01-01\nflow: []\n",
			wantErr: "flow must contain at least one step",
		},
		{
			name:    "missing op",
			content: "name: x\ntoday: 2024-01-01\nflow:\n  - as: a\n",
			wantErr: "flow[0]: op is required",
		},
		{
			name:    "unknown op",
			content: "name: x\ntoday: 2024-01-01\nflow:\n  - op: refund\n",
			wantErr: `flow[0]: unknown op "refund"`,
		},
		{
			name:    "duplicate binding",
			content: "name: x\ntoday: 2024-01-01\nsetup:\n  - op: create_person\n    as: a\nflow:\n  - op: create_person\n    as: a\n",
			wantErr: `flow[0]: "a" is already bound`,
		},
		{
			name:    "binding with dot",
			content: "name: x\ntoday: 2024-01-01\nflow:\n  - op: create_person\n    as: a.b\n",
			wantErr: "invalid binding name",
		},
		{
			name:    "args not a mapping",
			content: "name: x\ntoday: 2024-01-01\nflow:\n  - op: create_person\n    args: [1, 2]\n",
			wantErr: "args must be a mapping",
		},
		{
			name:    "assertion without type",
			content: "name: x\ntoday: 2024-01-01\nflow:\n  - op: create_person\nassertions:\n  - op: create_person\n",
			wantErr: "assertions[0]: type is required",
		},
		{
			name:    "unknown assertion type",
			content: "name: x\ntoday: 2024-01-01\nflow:\n  - op: create_person\nassertions:\n  - type: trace_order\n",
			wantErr: `unknown assertion type "trace_order"`,
		},
		{
			name:    "final_state unknown entity",
			content: "name: x\ntoday: 2024-01-01\nflow:\n  - op: create_person\nassertions:\n  - type: final_state\n    entity: invoice\n    id: $a\n    expect: { x: y }\n",
			wantErr: `unknown entity "invoice"`,
		},
		{
			name:    "final_state literal id",
			content: "name: x\ntoday: 2024-01-01\nflow:\n  - op: create_person\nassertions:\n  - type: final_state\n    entity: person\n    id: \"1\"\n    expect: { x: y }\n",
			wantErr: "id must be a $reference",
		},
		{
			name:    "final_state without expect",
			content: "name: x\ntoday: 2024-01-01\nflow:\n  - op: create_person\nassertions:\n  - type: final_state\n    entity: person\n    id: $a\n",
			wantErr: "expect is required for final_state",
		},
		{
			name:    "outcome_count without op",
			content: "name: x\ntoday: 2024-01-01\nflow:\n  - op: create_person\nassertions:\n  - type: outcome_count\n    count: 1\n",
			wantErr: "op is required for outcome_count",
		},
		{
			name:    "outcome_count negative",
			content: "name: x\ntoday: 2024-01-01\nflow:\n  - op: create_person\nassertions:\n  - type: outcome_count\n    op: create_person\n    count: -1\n",
			wantErr: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOpNames_Sorted(t *testing.T) {
	names := OpNames()
	assert.Contains(t, names, "renew")
	assert.Contains(t, names, "resolve_door_fee")
	assert.Contains(t, names, "project_guest_sheet")
	assert.IsIncreasing(t, names)
}
