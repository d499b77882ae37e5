package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rksledger/internal/model"
)

// Scenario is a scripted sequence of ledger operations run against a fresh
// store, with expectations on each step and assertions on the final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Today is the date the ledger clock starts on.
	Today model.Date `yaml:"today"`

	// Policy overrides fields of the default organization policy, using the
	// same keys as the policy file.
	Policy map[string]any `yaml:"policy,omitempty"`

	// Setup establishes reference data. Setup steps must succeed unless they
	// carry an expect clause.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow is the behavior under test.
	Flow []Step `yaml:"flow"`

	// Assertions are checked after the flow has run.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step invokes one ledger operation.
type Step struct {
	// Op names the operation, e.g. "renew" or "resolve_door_fee".
	Op string `yaml:"op"`

	// As binds the id the operation produced so later steps can refer to it
	// as "$name". record_payment also binds its items as "$name.1",
	// "$name.2", ...
	As string `yaml:"as,omitempty"`

	// Args are the operation arguments. Scalars of the form "$name" are
	// replaced with the bound id before decoding.
	Args yaml.Node `yaml:"args,omitempty"`

	// Expect checks the outcome. Without it the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes a step's expected outcome.
type Expect struct {
	// Error is the expected error code, e.g. "ORDERING_VIOLATION". Empty
	// means success.
	Error string `yaml:"error,omitempty"`

	// Result is a subset of the outcome fields. Values compare as text, and
	// "$name" compares against a bound id.
	Result map[string]string `yaml:"result,omitempty"`
}

// Assertion validates the ledger after the flow.
type Assertion struct {
	// Type is final_state or outcome_count.
	Type string `yaml:"type"`

	// Entity and ID select the record for final_state: an entity name from
	// Entities and a "$name" reference.
	Entity string `yaml:"entity,omitempty"`
	ID     string `yaml:"id,omitempty"`

	// Expect holds the expected fields for final_state. Subset match.
	Expect map[string]string `yaml:"expect,omitempty"`

	// Op, Error and Count are used by outcome_count: the number of steps
	// running Op that ended with Error ("" for success).
	Op    string `yaml:"op,omitempty"`
	Error string `yaml:"error,omitempty"`
	Count int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState   = "final_state"
	AssertOutcomeCount = "outcome_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario is LoadScenario for in-memory YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Today.IsZero() {
		return fmt.Errorf("today is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow must contain at least one step")
	}

	bound := make(map[string]bool)
	check := func(section string, steps []Step) error {
		for i, step := range steps {
			if step.Op == "" {
				return fmt.Errorf("%s[%d]: op is required", section, i)
			}
			if _, ok := operations[step.Op]; !ok {
				return fmt.Errorf("%s[%d]: unknown op %q", section, i, step.Op)
			}
			if step.As != "" {
				if strings.ContainsAny(step.As, "$. ") {
					return fmt.Errorf("%s[%d]: invalid binding name %q", section, i, step.As)
				}
				if bound[step.As] {
					return fmt.Errorf("%s[%d]: %q is already bound", section, i, step.As)
				}
				bound[step.As] = true
			}
			if step.Args.Kind != 0 && step.Args.Kind != yaml.MappingNode {
				return fmt.Errorf("%s[%d]: args must be a mapping", section, i)
			}
		}
		return nil
	}
	if err := check("setup", s.Setup); err != nil {
		return err
	}
	if err := check("flow", s.Flow); err != nil {
		return err
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFinalState:
		if _, ok := entities[a.Entity]; !ok {
			return fmt.Errorf("assertions[%d]: unknown entity %q for final_state", index, a.Entity)
		}
		if !strings.HasPrefix(a.ID, "$") {
			return fmt.Errorf("assertions[%d]: id must be a $reference for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertOutcomeCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for outcome_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for outcome_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
