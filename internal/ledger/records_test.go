package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rksledger/internal/model"
)

func TestCreateEvent_FillsFromEventTypeDefaults(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	ctx := context.Background()
	start, err := model.ParseTimeOfDay("19:30")
	require.NoError(t, err)
	duration := 150
	workshop, err := f.ledger.CreateEventType(ctx, model.EventType{Name: "Workshop", DefaultStartTime: &start, DefaultDurationMinutes: &duration})
	require.NoError(t, err)

	e, err := f.ledger.CreateEvent(ctx, EventRequest{EventTypeID: workshop, Name: "Rope 101", Date: model.MustParseDate("2024-02-03")})
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 2, 3, 19, 30, 0, 0, time.Local).Equal(e.StartsAt), "starts at %s", e.StartsAt)
	assert.True(t, time.Date(2024, 2, 3, 22, 0, 0, 0, time.Local).Equal(e.EndsAt), "ends at %s", e.EndsAt)

	stored, err := f.ledger.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, e.StartsAt.Equal(stored.StartsAt))
}

func TestCreateEvent_NeedsTimes(t *testing.T) {
	f := newFixture(t, "2024-01-01")

	// The fixture's event type has no defaults.
	_, err := f.ledger.CreateEvent(context.Background(), EventRequest{EventTypeID: f.eventType, Name: "Social", Date: model.MustParseDate("2024-02-03")})
	requireCode(t, err, model.ErrCodeInvalidArgument)

	_, err = f.ledger.CreateEventType(context.Background(), model.EventType{Name: "   "})
	requireCode(t, err, model.ErrCodeInvalidArgument)
}

func TestCreateMembership_ApprovalPolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.RequireMembershipApproval = true
	f := newFixture(t, "2024-01-10", WithPolicy(policy))
	ctx := context.Background()

	_, err := f.ledger.CreateMembership(ctx, model.Membership{PersonID: f.person, MembershipTypeID: f.silver})
	requireCode(t, err, model.ErrCodeMembershipNotApproved)

	approval, err := f.ledger.ApproveMembership(ctx, f.person, model.Date{})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", approval.ApprovalDate.String())

	m, err := f.ledger.CreateMembership(ctx, model.Membership{PersonID: f.person, MembershipTypeID: f.silver})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", m.BeginDate.String())
	assert.Nil(t, m.EndDate)
}

func TestCreateMembership_EndBeforeBegin(t *testing.T) {
	f := newFixture(t, "2024-01-10")

	_, err := f.ledger.CreateMembership(context.Background(), model.Membership{
		PersonID: f.person, MembershipTypeID: f.silver,
		BeginDate: model.MustParseDate("2024-02-01"), EndDate: datePtr("2024-01-31"),
	})
	requireCode(t, err, model.ErrCodeOrderingViolation)
}

func TestListMembershipTypes_CountsActiveToday(t *testing.T) {
	f := newFixture(t, "2024-03-01")
	ctx := context.Background()
	f.membership(t, "2024-01-01", datePtr("2024-02-28"))
	f.membership(t, "2024-01-01", nil)

	types, err := f.ledger.ListMembershipTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, int64(1), types[0].ActiveCount)

	f.clock.SetDate(model.MustParseDate("2024-02-01"))
	types, err = f.ledger.ListMembershipTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), types[0].ActiveCount)
}

func TestActiveMembership(t *testing.T) {
	f := newFixture(t, "2024-03-01")
	ctx := context.Background()
	m := f.membership(t, "2024-01-01", datePtr("2024-02-28"))

	got, ok, err := f.ledger.ActiveMembership(ctx, f.person, model.MustParseDate("2024-02-28"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, m.ID, got.ID)

	_, ok, err = f.ledger.ActiveMembership(ctx, f.person, model.MustParseDate("2024-02-29"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreatePerson_Normalizes(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	ctx := context.Background()

	p, err := f.ledger.CreatePerson(ctx, model.Person{
		FirstNameOrNickname: "  Sam ",
		EmailAddresses:      []string{"Sam@Example.com", "sam@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sam", p.FirstNameOrNickname)
	assert.Equal(t, []string{"sam@example.com"}, p.EmailAddresses)

	_, err = f.ledger.CreatePerson(ctx, model.Person{FirstNameOrNickname: " "})
	requireCode(t, err, model.ErrCodeInvalidArgument)
}

func TestContactCounts(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	ctx := context.Background()

	counts, err := f.ledger.ContactCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ContactCounts{}, counts)

	_, err = f.ledger.CreatePerson(ctx, model.Person{
		FirstNameOrNickname: "Sam",
		EmailAddresses:      []string{"sam@example.com", "sam@example.org"},
	})
	require.NoError(t, err)
	_, err = f.ledger.AddPhoneNumber(ctx, model.PhoneNumber{PersonID: f.person, CountryCode: "1", AreaCode: "555", Prefix: "010", LineNumber: "4477"})
	require.NoError(t, err)

	counts, err = f.ledger.ContactCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ContactCounts{EmailAddresses: 2, PhoneNumbers: 1}, counts)
}

func TestConduct(t *testing.T) {
	f := newFixture(t, "2024-01-21")
	ctx := context.Background()
	other, err := f.ledger.CreatePerson(ctx, model.Person{FirstNameOrNickname: "Sam"})
	require.NoError(t, err)

	w, err := f.ledger.IssueWarning(ctx, model.Warning{PersonID: other.ID, Reason: "ignored a safeword"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-21", w.IssuedDate.String())

	_, err = f.ledger.IssueSanction(ctx, model.Sanction{PersonID: other.ID, EndDate: model.MustParseDate("2024-01-01"), Reason: "x"})
	requireCode(t, err, model.ErrCodeOrderingViolation)
	_, err = f.ledger.IssueSanction(ctx, model.Sanction{PersonID: other.ID, EndDate: model.MustParseDate("2024-03-01"), Reason: "repeat"})
	require.NoError(t, err)

	b, err := f.ledger.IssueBan(ctx, model.Ban{PersonID: other.ID, Reason: "final"})
	require.NoError(t, err)
	assert.Nil(t, b.EndDate)

	_, err = f.ledger.FileIncidentReport(ctx, model.IncidentReport{ReporterID: f.person, Description: "door incident", Involved: []int64{other.ID}})
	require.NoError(t, err)
	_, err = f.ledger.FileIncidentReport(ctx, model.IncidentReport{ReporterID: f.person, Description: "self", Involved: []int64{f.person}})
	requireCode(t, err, model.ErrCodeConstraintViolation)

	history, err := f.ledger.ConductHistory(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, history.Warnings, 1)
	assert.Len(t, history.Sanctions, 1)
	assert.Len(t, history.Bans, 1)

	waiver, err := f.ledger.CreateLegalDocumentType(ctx, "Waiver")
	require.NoError(t, err)
	doc, err := f.ledger.RecordLegalDocument(ctx, model.LegalDocument{PersonID: other.ID, TypeID: waiver})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-21", doc.SignedDate.String())
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.RenewalBase = "whenever"
	requireCode(t, p.Validate(), model.ErrCodeInvalidArgument)
}
