package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/rksledger/internal/model"
)

// Snapshot captures the step outcomes of a scenario execution.
// It is serialized as canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string    `json:"scenario_name"`
	Outcomes     []Outcome `json:"outcomes"`
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization, leaving out empty fields.
func (s *Snapshot) toCanonicalMap() map[string]any {
	outcomes := make([]any, len(s.Outcomes))
	for i, o := range s.Outcomes {
		m := map[string]any{
			"step": o.Step,
			"op":   o.Op,
		}
		if o.As != "" {
			m["as"] = o.As
		}
		if o.ID != 0 {
			m["id"] = o.ID
		}
		if o.Error != "" {
			m["error"] = o.Error
		}
		if len(o.Fields) > 0 {
			fields := make(map[string]any, len(o.Fields))
			for k, v := range o.Fields {
				fields[k] = v
			}
			m["fields"] = fields
		}
		outcomes[i] = m
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"outcomes":      outcomes,
	}
}

// MarshalSnapshot renders a result as canonical JSON.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	snapshot := Snapshot{ScenarioName: name, Outcomes: result.Outcomes}
	return model.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its outcomes against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the outcomes don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
