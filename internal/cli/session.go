package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/rksledger/internal/config"
	"github.com/roach88/rksledger/internal/ledger"
	"github.com/roach88/rksledger/internal/model"
	"github.com/roach88/rksledger/internal/store"
)

// session is one command's view of the ledger: an open store, the loaded
// policy and an output formatter.
type session struct {
	store  *store.Store
	ledger *ledger.Ledger
	out    *Formatter
	log    *slog.Logger
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *Formatter {
	return &Formatter{JSON: opts.Format == "json", W: cmd.OutOrStdout()}
}

func newLogger(opts *RootOptions, cmd *cobra.Command) *slog.Logger {
	level := opts.LogLevel
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// openSession opens the database named by --db and builds a ledger with the
// policy named by --policy.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	log := newLogger(opts, cmd)
	out := newFormatter(opts, cmd)

	policy, err := config.LoadPolicy(opts.PolicyPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load policy", err)
	}

	log.Debug("opening database", "path", opts.DBPath)
	st, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	return &session{
		store:  st,
		ledger: ledger.New(st, ledger.WithPolicy(policy), ledger.WithLogger(log)),
		out:    out,
		log:    log,
	}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Error("error closing database", "error", err)
	}
}

// fail reports a ledger error in the configured format and converts it to an
// ExitError. Ledger rule violations exit with ExitFailure; anything else is a
// command error.
func (s *session) fail(op string, err error) error {
	var le *model.LedgerError
	if !errors.As(err, &le) {
		return WrapExitError(ExitCommandError, op, err)
	}
	if outErr := s.out.Refused(le); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, op, err)
}

// withSession runs fn against an open session and closes it afterwards.
func withSession(opts *RootOptions, cmd *cobra.Command, fn func(s *session) error) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// optionalInt64 returns the flag's value when it was set on the command line.
func optionalInt64(cmd *cobra.Command, name string) (*int64, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetInt64(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseDate parses an optional YYYY-MM-DD flag; empty yields the zero date,
// which the ledger reads as today.
func parseDate(name, value string) (model.Date, error) {
	if value == "" {
		return model.Date{}, nil
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return model.Date{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid --%s: %v", name, err))
	}
	return d, nil
}

func parseOptionalDate(name, value string) (*model.Date, error) {
	if value == "" {
		return nil, nil
	}
	d, err := parseDate(name, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseMoney(name, value string) (model.Money, error) {
	m, err := model.ParseMoney(value)
	if err != nil {
		return model.Money{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid --%s: %v", name, err))
	}
	return m, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid id %q", arg))
	}
	return id, nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
