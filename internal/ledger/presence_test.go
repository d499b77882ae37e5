package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rksledger/internal/model"
)

func TestRecordAttendance_GuestOfActiveMember(t *testing.T) {
	f := newFixture(t, "2024-01-20")
	ctx := context.Background()
	f.membership(t, "2024-01-01", datePtr("2024-12-31"))
	guest, err := f.ledger.CreatePerson(ctx, model.Person{FirstNameOrNickname: "Sam"})
	require.NoError(t, err)

	a, err := f.ledger.RecordAttendance(ctx, model.Attendance{EventID: f.event.ID, PersonID: guest.ID, GuestOfMemberID: &f.person})
	require.NoError(t, err)
	assert.NotZero(t, a.ID)

	_, err = f.ledger.RecordAttendance(ctx, model.Attendance{EventID: f.event.ID, PersonID: f.person})
	require.NoError(t, err)

	list, err := f.ledger.Store().ListAttendance(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRecordAttendance_SponsorMustBeActive(t *testing.T) {
	f := newFixture(t, "2024-01-20")
	ctx := context.Background()
	// Lapsed before the event on 2024-01-20.
	f.membership(t, "2023-01-01", datePtr("2024-01-19"))
	guest, err := f.ledger.CreatePerson(ctx, model.Person{FirstNameOrNickname: "Sam"})
	require.NoError(t, err)

	_, err = f.ledger.RecordAttendance(ctx, model.Attendance{EventID: f.event.ID, PersonID: guest.ID, GuestOfMemberID: &f.person})
	requireCode(t, err, model.ErrCodeSponsorNotActiveMember)

	_, err = f.ledger.RecordRSVP(ctx, model.RSVP{EventID: f.event.ID, PersonID: guest.ID, GuestOfMemberID: &f.person})
	requireCode(t, err, model.ErrCodeSponsorNotActiveMember)
}

func TestRecordAttendance_SponsorRenewedAfterLapse(t *testing.T) {
	f := newFixture(t, "2024-06-01")
	ctx := context.Background()
	m := f.membership(t, "2023-01-01", datePtr("2024-01-19"))
	option := f.pricingOption(t, f.silver, 1, "10.00")

	dues, err := f.ledger.RenewMembership(ctx, RenewalRequest{
		MembershipID: m.ID, PricingOptionID: option, PaymentItemID: f.item(t, "10.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-19", dues.OriginalEndDate.String())
	assert.Equal(t, "2024-06-01", dues.CoverageBeginDate.String())
	assert.Equal(t, "2024-07-01", dues.NewEndDate.String())

	guest, err := f.ledger.CreatePerson(ctx, model.Person{FirstNameOrNickname: "Sam"})
	require.NoError(t, err)

	// The event on 2024-01-20 falls in the lapse.
	_, err = f.ledger.RecordAttendance(ctx, model.Attendance{EventID: f.event.ID, PersonID: guest.ID, GuestOfMemberID: &f.person})
	requireCode(t, err, model.ErrCodeSponsorNotActiveMember)

	for date, want := range map[string]bool{
		"2024-01-19": true,
		"2024-01-20": false,
		"2024-05-31": false,
		"2024-06-01": true,
		"2024-07-01": true,
		"2024-07-02": false,
	} {
		_, ok, err := f.ledger.ActiveMembership(ctx, f.person, model.MustParseDate(date))
		require.NoError(t, err)
		assert.Equal(t, want, ok, date)
	}

	types, err := f.ledger.ListMembershipTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, int64(1), types[0].ActiveCount)
}

func TestRenewMembership_OpenEndedHasNoGap(t *testing.T) {
	f := newFixture(t, "2024-06-01")
	ctx := context.Background()
	m := f.membership(t, "2024-01-01", nil)
	option := f.pricingOption(t, f.silver, 12, "100.00")

	dues, err := f.ledger.RenewMembership(ctx, RenewalRequest{
		MembershipID: m.ID, PricingOptionID: option, PaymentItemID: f.item(t, "100.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", dues.CoverageBeginDate.String())

	_, ok, err := f.ledger.ActiveMembership(ctx, f.person, model.MustParseDate("2024-03-01"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecordRSVP_DefaultsReceivedDate(t *testing.T) {
	f := newFixture(t, "2024-01-10")
	ctx := context.Background()

	r, err := f.ledger.RecordRSVP(ctx, model.RSVP{EventID: f.event.ID, PersonID: f.person})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", r.ReceivedDate.String())

	_, err = f.ledger.RecordRSVP(ctx, model.RSVP{EventID: f.event.ID, PersonID: f.person})
	requireCode(t, err, model.ErrCodeConstraintViolation)

	_, err = f.ledger.RecordRSVP(ctx, model.RSVP{EventID: 99, PersonID: f.person})
	requireCode(t, err, model.ErrCodeNotFound)
}
