package harness

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/rksledger/internal/model"
)

// AssertionError is returned when an assertion fails.
// It includes the step outcomes to help debug the failure.
type AssertionError struct {
	Type     string    // Assertion type for categorization
	Expected string    // Human-readable expected outcome
	Actual   string    // Human-readable actual outcome
	Outcomes []Outcome // Every step outcome, in order
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nSteps:\n")
	for _, o := range e.Outcomes {
		status := "ok"
		if o.Error != "" {
			status = o.Error
		}
		fmt.Fprintf(&buf, "  %s %s id=%d %s\n", o.Step, o.Op, o.ID, status)
	}
	return buf.String()
}

// entityLoader reads one record and renders its fields as text.
type entityLoader func(ctx context.Context, h *Harness, id int64) (map[string]string, error)

// entities are the records final_state assertions can inspect.
var entities = map[string]entityLoader{
	"person": func(ctx context.Context, h *Harness, id int64) (map[string]string, error) {
		p, err := h.ledger.GetPerson(ctx, id)
		if err != nil {
			return nil, err
		}
		fields := personFields(p)
		fields["emails"] = strings.Join(p.EmailAddresses, ",")
		return fields, nil
	},
	"membership": func(ctx context.Context, h *Harness, id int64) (map[string]string, error) {
		m, err := h.ledger.GetMembership(ctx, id)
		if err != nil {
			return nil, err
		}
		fields := membershipFields(m)
		dues, err := h.store.ListDuesPayments(ctx, id)
		if err != nil {
			return nil, err
		}
		fields["dues_payments"] = strconv.Itoa(len(dues))
		return fields, nil
	},
	"event": func(ctx context.Context, h *Harness, id int64) (map[string]string, error) {
		e, err := h.ledger.GetEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		fields := eventFields(e)
		attendance, err := h.store.ListAttendance(ctx, id)
		if err != nil {
			return nil, err
		}
		rsvps, err := h.store.ListRSVPs(ctx, id)
		if err != nil {
			return nil, err
		}
		fields["attendance"] = strconv.Itoa(len(attendance))
		fields["rsvps"] = strconv.Itoa(len(rsvps))
		return fields, nil
	},
	"payment_item": func(ctx context.Context, h *Harness, id int64) (map[string]string, error) {
		item, err := h.store.GetPaymentItem(ctx, id)
		if err != nil {
			return nil, err
		}
		alloc, err := h.store.PaymentItemAllocation(ctx, id)
		if err != nil {
			return nil, err
		}
		allocation := string(alloc)
		if alloc == model.AllocationNone {
			allocation = "none"
		}
		return map[string]string{
			"payment_id": strconv.FormatInt(item.PaymentID, 10),
			"amount":     item.Amount.String(),
			"allocation": allocation,
		}, nil
	},
	"guest_sheet": func(ctx context.Context, h *Harness, id int64) (map[string]string, error) {
		sheet, err := h.store.GetGuestSheet(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]string{
			"person_id":       optionalID(sheet.PersonID),
			"completion_date": sheet.CompletionDate.String(),
			"fields":          strconv.Itoa(len(sheet.Fields)),
		}, nil
	},
	"conduct": func(ctx context.Context, h *Harness, id int64) (map[string]string, error) {
		rec, err := h.ledger.ConductHistory(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]string{
			"warnings":  strconv.Itoa(len(rec.Warnings)),
			"sanctions": strconv.Itoa(len(rec.Sanctions)),
			"bans":      strconv.Itoa(len(rec.Bans)),
		}, nil
	},
}

// assertFinalState loads the referenced record and checks the expected
// fields (subset match).
func assertFinalState(ctx context.Context, h *Harness, result *Result, a Assertion) error {
	id, err := h.lookup(a.ID)
	if err != nil {
		return err
	}
	fields, err := entities[a.Entity](ctx, h, id)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s %s (id %d) exists", a.Entity, a.ID, id),
			Actual:   err.Error(),
			Outcomes: result.Outcomes,
		}
	}

	var mismatches []string
	for _, key := range sortedKeys(a.Expect) {
		want, err := h.expectedValue(a.Expect[key])
		if err != nil {
			return err
		}
		got, ok := fields[key]
		switch {
		case !ok:
			mismatches = append(mismatches, fmt.Sprintf("%s: no such field", key))
		case got != want:
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %q, got %q", key, want, got))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: fmt.Sprintf("%s %s matches %v", a.Entity, a.ID, a.Expect),
		Actual:   strings.Join(mismatches, "; "),
		Outcomes: result.Outcomes,
	}
}

// assertOutcomeCount checks how many steps running a.Op ended with a.Error.
func assertOutcomeCount(result *Result, a Assertion) error {
	count := 0
	for _, o := range result.Outcomes {
		if o.Op == a.Op && o.Error == a.Error {
			count++
		}
	}
	if count == a.Count {
		return nil
	}

	status := "success"
	if a.Error != "" {
		status = a.Error
	}
	return &AssertionError{
		Type:     AssertOutcomeCount,
		Expected: fmt.Sprintf("%s ending in %s %d time(s)", a.Op, status, a.Count),
		Actual:   fmt.Sprintf("%d time(s)", count),
		Outcomes: result.Outcomes,
	}
}

// EvaluateAssertions evaluates all assertions against the result and the
// harness's ledger. Returns a slice of error messages for failed assertions.
func EvaluateAssertions(ctx context.Context, h *Harness, result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertFinalState:
			err = assertFinalState(ctx, h, result, assertion)
		case AssertOutcomeCount:
			err = assertOutcomeCount(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
