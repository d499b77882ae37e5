package ledger

import (
	"log/slog"

	"github.com/roach88/rksledger/internal/model"
	"github.com/roach88/rksledger/internal/store"
)

// Ledger applies the membership rules to a store.
type Ledger struct {
	store  *store.Store
	policy Policy
	clock  Clock
	refs   ReferenceGenerator
	log    *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPolicy sets the organization policy. Default: DefaultPolicy().
func WithPolicy(p Policy) Option {
	return func(l *Ledger) { l.policy = p }
}

// WithClock sets the clock "today" is read from. Default: SystemClock.
func WithClock(c Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithReferenceGenerator sets the payment reference generator.
// Default: UUIDv7Generator.
func WithReferenceGenerator(g ReferenceGenerator) Option {
	return func(l *Ledger) { l.refs = g }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// New creates a Ledger over s.
func New(s *store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  s,
		policy: DefaultPolicy(),
		clock:  SystemClock{},
		refs:   UUIDv7Generator{},
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Store returns the underlying store for read queries.
func (l *Ledger) Store() *store.Store { return l.store }

// Policy returns the policy in effect.
func (l *Ledger) Policy() Policy { return l.policy }

// Today returns the clock's calendar date.
func (l *Ledger) Today() model.Date { return model.DateOf(l.clock.Now()) }

func invalidArgument(format string, args ...any) error {
	return model.NewError(model.ErrCodeInvalidArgument, format, args...)
}
