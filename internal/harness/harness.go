package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rksledger/internal/config"
	"github.com/roach88/rksledger/internal/ledger"
	"github.com/roach88/rksledger/internal/model"
	"github.com/roach88/rksledger/internal/store"
	"github.com/roach88/rksledger/internal/testutil"
)

// Harness runs scenario steps against one ledger.
// It owns a fixed clock and sequential payment references so repeated runs
// produce identical outcomes.
type Harness struct {
	store  *store.Store
	ledger *ledger.Ledger
	clock  *testutil.FixedClock
	logger *slog.Logger

	// bindings maps "as" names to ids for "$name" references.
	bindings map[string]int64
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger sends harness and ledger logs to logger. Default: discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) { c.logger = logger }
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
// 1. Create fresh in-memory database and a ledger with the scenario policy
// 2. Execute setup steps; an unexpected setup failure aborts the run
// 3. Execute flow steps, checking each expect clause
// 4. Evaluate assertions against the final ledger state
//
// Mismatched expectations are reported in Result.Errors. The returned error
// is reserved for scenarios that cannot run at all.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: ledger.DiscardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	policy, err := scenarioPolicy(scenario.Policy)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewFixedClock(scenario.Today)
	h := &Harness{
		store: st,
		ledger: ledger.New(st,
			ledger.WithPolicy(policy),
			ledger.WithClock(clock),
			ledger.WithReferenceGenerator(testutil.NewSequenceGenerator("RKS")),
			ledger.WithLogger(cfg.logger),
		),
		clock:    clock,
		logger:   cfg.logger,
		bindings: make(map[string]int64),
	}

	result := NewResult()
	if err := h.execute(ctx, "setup", scenario.Setup, result, true); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	if err := h.execute(ctx, "flow", scenario.Flow, result, false); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	for name, id := range h.bindings {
		result.Bindings[name] = id
	}

	for _, errMsg := range EvaluateAssertions(ctx, h, result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

// scenarioPolicy runs the scenario's policy overrides through the same
// schema as a policy file.
func scenarioPolicy(overrides map[string]any) (ledger.Policy, error) {
	if len(overrides) == 0 {
		return ledger.DefaultPolicy(), nil
	}
	src, err := json.Marshal(overrides)
	if err != nil {
		return ledger.Policy{}, fmt.Errorf("encode scenario policy: %w", err)
	}
	policy, err := config.ParsePolicy(src, "scenario policy")
	if err != nil {
		return ledger.Policy{}, fmt.Errorf("scenario policy: %w", err)
	}
	return policy, nil
}

// execute runs steps in order. In strict mode (setup) a step that fails
// without an expect clause aborts the run.
func (h *Harness) execute(ctx context.Context, section string, steps []Step, result *Result, strict bool) error {
	for i, step := range steps {
		label := fmt.Sprintf("%s[%d]", section, i)

		out, err := h.invoke(ctx, step)
		if err != nil && model.CodeOf(err) == "" {
			return fmt.Errorf("%s %s: %w", label, step.Op, err)
		}

		outcome := Outcome{
			Step:   label,
			Op:     step.Op,
			As:     step.As,
			ID:     out.id,
			Fields: out.fields,
			Error:  string(model.CodeOf(err)),
		}
		result.AddOutcome(outcome)

		if err == nil && step.As != "" {
			h.bind(step.As, out)
		}

		if err != nil && step.Expect == nil && strict {
			return fmt.Errorf("%s %s: %w", label, step.Op, err)
		}
		for _, msg := range h.checkExpect(label, step, outcome, err) {
			result.AddError(msg)
		}

		h.logger.Debug("scenario step completed",
			"step", label,
			"op", step.Op,
			"id", outcome.ID,
			"error", outcome.Error,
		)
	}
	return nil
}

// invoke decodes the step's arguments and runs its operation.
func (h *Harness) invoke(ctx context.Context, step Step) (stepOutput, error) {
	op := operations[step.Op]
	if op == nil {
		return stepOutput{}, fmt.Errorf("unknown op %q", step.Op)
	}
	args, err := h.resolveArgs(step.Args)
	if err != nil {
		return stepOutput{}, err
	}
	decode := func(target any) error {
		if len(args) == 0 {
			return nil
		}
		dec := yaml.NewDecoder(bytes.NewReader(args))
		dec.KnownFields(true)
		if err := dec.Decode(target); err != nil {
			return fmt.Errorf("decode args: %w", err)
		}
		return nil
	}
	return op(ctx, h, decode)
}

// resolveArgs substitutes "$name" scalars with bound ids and re-encodes the
// arguments for strict decoding.
func (h *Harness) resolveArgs(node yaml.Node) ([]byte, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if err := h.substitute(&node); err != nil {
		return nil, err
	}
	return yaml.Marshal(&node)
}

func (h *Harness) substitute(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if !strings.HasPrefix(node.Value, "$") {
			return nil
		}
		id, err := h.lookup(node.Value)
		if err != nil {
			return err
		}
		node.Value = strconv.FormatInt(id, 10)
		node.Tag = "!!int"
		node.Style = 0
		return nil
	}
	for i, child := range node.Content {
		if node.Kind == yaml.MappingNode && i%2 == 0 {
			continue // keys
		}
		if err := h.substitute(child); err != nil {
			return err
		}
	}
	return nil
}

func (h *Harness) lookup(ref string) (int64, error) {
	id, ok := h.bindings[strings.TrimPrefix(ref, "$")]
	if !ok {
		return 0, fmt.Errorf("unbound reference %s", ref)
	}
	return id, nil
}

func (h *Harness) bind(name string, out stepOutput) {
	h.bindings[name] = out.id
	for i, sub := range out.items {
		h.bindings[fmt.Sprintf("%s.%d", name, i+1)] = sub
	}
}

// checkExpect compares a step's outcome with its expect clause and returns
// one message per mismatch.
func (h *Harness) checkExpect(label string, step Step, outcome Outcome, err error) []string {
	var msgs []string
	want := ""
	if step.Expect != nil {
		want = step.Expect.Error
	}
	if outcome.Error != want {
		switch {
		case want == "":
			msgs = append(msgs, fmt.Sprintf("%s %s: unexpected error: %v", label, step.Op, err))
		case outcome.Error == "":
			msgs = append(msgs, fmt.Sprintf("%s %s: expected error %s, got success", label, step.Op, want))
		default:
			msgs = append(msgs, fmt.Sprintf("%s %s: expected error %s, got %v", label, step.Op, want, err))
		}
		return msgs
	}
	if step.Expect == nil {
		return nil
	}
	for _, key := range sortedKeys(step.Expect.Result) {
		expected, rerr := h.expectedValue(step.Expect.Result[key])
		if rerr != nil {
			msgs = append(msgs, fmt.Sprintf("%s %s: result.%s: %v", label, step.Op, key, rerr))
			continue
		}
		actual, ok := outcome.Fields[key]
		if key == "id" {
			actual, ok = strconv.FormatInt(outcome.ID, 10), outcome.ID != 0
		}
		if !ok {
			msgs = append(msgs, fmt.Sprintf("%s %s: result.%s: missing from outcome", label, step.Op, key))
			continue
		}
		if actual != expected {
			msgs = append(msgs, fmt.Sprintf("%s %s: result.%s: expected %q, got %q", label, step.Op, key, expected, actual))
		}
	}
	return msgs
}

// expectedValue resolves "$name" to the bound id; other values are literal.
func (h *Harness) expectedValue(v string) (string, error) {
	if !strings.HasPrefix(v, "$") {
		return v, nil
	}
	id, err := h.lookup(v)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}
