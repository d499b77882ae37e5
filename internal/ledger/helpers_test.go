package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rksledger/internal/model"
	"github.com/roach88/rksledger/internal/store"
	"github.com/roach88/rksledger/internal/testutil"
)

// fixture is a ledger over a fresh database with a pinned clock and one
// membership type, person and event.
type fixture struct {
	ledger *Ledger
	clock  *testutil.FixedClock

	silver    int64
	person    int64
	eventType int64
	event     model.Event
}

func newFixture(t *testing.T, today string, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	f := &fixture{clock: testutil.NewFixedClock(model.MustParseDate(today))}
	opts = append([]Option{
		WithClock(f.clock),
		WithReferenceGenerator(testutil.NewSequenceGenerator("ref")),
		WithLogger(DiscardLogger()),
	}, opts...)
	f.ledger = New(s, opts...)

	f.silver, err = f.ledger.CreateMembershipType(ctx, "Silver")
	require.NoError(t, err)
	p, err := f.ledger.CreatePerson(ctx, model.Person{FirstNameOrNickname: "Alex"})
	require.NoError(t, err)
	f.person = p.ID
	f.eventType, err = f.ledger.CreateEventType(ctx, model.EventType{Name: "Social"})
	require.NoError(t, err)

	starts := time.Date(2024, 1, 20, 19, 0, 0, 0, time.Local)
	ends := starts.Add(4 * time.Hour)
	f.event, err = f.ledger.CreateEvent(ctx, EventRequest{
		EventTypeID: f.eventType, Name: "January Social", StartsAt: &starts, EndsAt: &ends,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) membership(t *testing.T, begin string, end *model.Date) model.Membership {
	t.Helper()
	m, err := f.ledger.CreateMembership(context.Background(), model.Membership{
		PersonID:         f.person,
		MembershipTypeID: f.silver,
		BeginDate:        model.MustParseDate(begin),
		EndDate:          end,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) pricingOption(t *testing.T, typeID int64, months int, price string) int64 {
	t.Helper()
	id, err := f.ledger.CreatePricingOption(context.Background(), model.PricingOption{
		MembershipTypeID: typeID, LengthMonths: months, Price: model.MustMoney(price),
	})
	require.NoError(t, err)
	return id
}

// item records a one-item payment and returns the item id.
func (f *fixture) item(t *testing.T, amount string) int64 {
	t.Helper()
	p, err := f.ledger.RecordPayment(context.Background(), PaymentRequest{
		PersonID: f.person,
		Amounts:  []model.Money{model.MustMoney(amount)},
	})
	require.NoError(t, err)
	return p.Items[0].ID
}

func datePtr(s string) *model.Date {
	d := model.MustParseDate(s)
	return &d
}

func requireCode(t *testing.T, err error, code model.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, model.CodeOf(err), "error: %v", err)
}
