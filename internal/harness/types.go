package harness

// Outcome is what one scenario step did.
type Outcome struct {
	// Step is "setup[i]" or "flow[i]".
	Step string `json:"step"`
	Op   string `json:"op"`
	As   string `json:"as,omitempty"`

	// ID is the id the step produced, zero when it produced none.
	ID int64 `json:"id,omitempty"`

	// Fields are the step's result values rendered as text.
	Fields map[string]string `json:"fields,omitempty"`

	// Error is the error code the step failed with, empty on success.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// Outcomes holds one entry per executed step, in order.
	Outcomes []Outcome `json:"outcomes"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Bindings maps each "as" name to the id it was bound to.
	Bindings map[string]int64 `json:"bindings,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
		Bindings: make(map[string]int64),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddOutcome appends a step outcome.
func (r *Result) AddOutcome(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}
