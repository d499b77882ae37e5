package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rksledger/internal/model"
)

func TestFormatter_Report(t *testing.T) {
	data := map[string]string{"amount": "10.00", "source": "event_type"}

	text := &bytes.Buffer{}
	f := &Formatter{W: text}
	require.NoError(t, f.Report("10.00 (event_type)", data))
	assert.Equal(t, "10.00 (event_type)\n", text.String())

	js := &bytes.Buffer{}
	f = &Formatter{JSON: true, W: js}
	require.NoError(t, f.Report("10.00 (event_type)", data))
	assert.JSONEq(t, `{"status":"ok","data":{"amount":"10.00","source":"event_type"}}`, js.String())
}

func TestFormatter_Refused(t *testing.T) {
	le := model.NewError(model.ErrCodeOrderingViolation, "new end date precedes current end date").
		WithDetail("membership_id", 1).
		WithDetail("new_end_date", "2024-03-31")

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, (&Formatter{JSON: true, W: buf}).Refused(le))

		var resp Response
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.Nil(t, resp.Data)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ORDERING_VIOLATION", resp.Error.Code)
		assert.Equal(t, "new end date precedes current end date", resp.Error.Message)
		assert.Equal(t, map[string]string{"membership_id": "1", "new_end_date": "2024-03-31"}, resp.Error.Details)
	})

	t.Run("json without details", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, (&Formatter{JSON: true, W: buf}).Refused(model.NewError(model.ErrCodeNoFeeDefined, "no door fee defined for event 3")))
		assert.NotContains(t, buf.String(), "details")
	})

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, (&Formatter{W: buf}).Refused(le))
		assert.Empty(t, buf.String())
	})
}

func TestVerboseLogsToStderr(t *testing.T) {
	for _, verbose := range []bool{true, false} {
		t.Run(fmt.Sprint(verbose), func(t *testing.T) {
			db := t.TempDir() + "/ledger.db"
			args := []string{"--db", db, "--format", "json", "init"}
			if verbose {
				args = append([]string{"--verbose"}, args...)
			}

			cmd := NewRootCommand()
			out, diag := &bytes.Buffer{}, &bytes.Buffer{}
			cmd.SetOut(out)
			cmd.SetErr(diag)
			cmd.SetArgs(args)
			require.NoError(t, cmd.Execute())

			var resp Response
			require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
			assert.Equal(t, "ok", resp.Status)
			if verbose {
				assert.Contains(t, diag.String(), "opening database")
			} else {
				assert.NotContains(t, diag.String(), "opening database")
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", WrapExitError(ExitFailure, "refused", errors.New("x")))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestExitError_Unwrap(t *testing.T) {
	cause := model.NewError(model.ErrCodeNoFeeDefined, "no door fee")
	err := WrapExitError(ExitFailure, "door-fee resolve", cause)

	assert.Equal(t, "door-fee resolve: NO_FEE_DEFINED: no door fee", err.Error())
	assert.True(t, model.IsCode(err, model.ErrCodeNoFeeDefined))
}
