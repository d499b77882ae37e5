package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rksledger/internal/model"
)

func TestCreatePerson_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	discord, err := s.CreateContactInfoType(ctx, "Discord")
	require.NoError(t, err)

	id, err := s.CreatePerson(ctx, model.Person{
		FirstNameOrNickname: "Alex",
		Pronouns:            "they/them",
		Aliases:             []string{"Lex"},
		EmailAddresses:      []string{"alex@example.com", "alex@work.example.com"},
		PhoneNumbers: []model.PhoneNumber{
			{CountryCode: "1", AreaCode: "555", Prefix: "123", LineNumber: "4567"},
		},
		OtherContactInfo: []model.ContactInfo{{TypeID: discord, Value: "alex#0001"}},
	})
	require.NoError(t, err)

	p, err := s.GetPerson(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alex", p.FirstNameOrNickname)
	assert.Equal(t, "they/them", p.Pronouns)
	assert.Equal(t, "", p.Notes)
	assert.Equal(t, []string{"Lex"}, p.Aliases)
	assert.Equal(t, "alex@example.com", p.PrimaryEmail())
	assert.Len(t, p.EmailAddresses, 2)
	require.Len(t, p.PhoneNumbers, 1)
	assert.Equal(t, "+1 (555) 123-4567", p.PhoneNumbers[0].String())
	assert.Equal(t, []model.ContactInfo{{TypeID: discord, Value: "alex#0001"}}, p.OtherContactInfo)
}

func TestCreatePerson_RequiresName(t *testing.T) {
	s := createTestStore(t)

	_, err := s.CreatePerson(context.Background(), model.Person{})
	requireCode(t, err, model.ErrCodeConstraintViolation)
}

func TestGetPerson_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetPerson(context.Background(), 99)
	requireCode(t, err, model.ErrCodeNotFound)
}

func TestPhoneNumbers_UniqueAcrossPeople(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	phone := model.PhoneNumber{CountryCode: "1", AreaCode: "555", Prefix: "123", LineNumber: "4567"}

	phone.PersonID = createTestPerson(t, s, "Alex")
	_, err := s.AddPhoneNumber(ctx, phone)
	require.NoError(t, err)

	phone.PersonID = createTestPerson(t, s, "Sam")
	_, err = s.AddPhoneNumber(ctx, phone)
	requireCode(t, err, model.ErrCodeConstraintViolation)
}

func TestCreatePerson_RollsBackOnCollectionFailure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Contact info type 99 does not exist.
	_, err := s.CreatePerson(ctx, model.Person{
		FirstNameOrNickname: "Alex",
		OtherContactInfo:    []model.ContactInfo{{TypeID: 99, Value: "x"}},
	})
	requireCode(t, err, model.ErrCodeConstraintViolation)

	people, err := s.ListPeople(ctx)
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestPrimaryEmail_AtMostOnePerPerson(t *testing.T) {
	s := createTestStore(t)
	id := createTestPerson(t, s, "Alex")

	_, err := s.db.Exec(`INSERT INTO people_email_addresses (person_id, email_address, primary_email) VALUES (?, 'a@example.com', 1)`, id)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO people_email_addresses (person_id, email_address, primary_email) VALUES (?, 'b@example.com', 1)`, id)
	require.Error(t, err)
}

func TestPeople_NeverDeleted(t *testing.T) {
	s := createTestStore(t)
	id := createTestPerson(t, s, "Alex")

	_, err := s.exec(context.Background(), "delete person", `DELETE FROM people WHERE id = ?`, id)
	requireCode(t, err, model.ErrCodeConstraintViolation)
}

func TestUpdatePerson_ReplacesCollections(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.CreatePerson(ctx, model.Person{
		FirstNameOrNickname: "Alex",
		Aliases:             []string{"Lex"},
		EmailAddresses:      []string{"old@example.com"},
	})
	require.NoError(t, err)

	err = s.UpdatePerson(ctx, model.Person{
		ID:                  id,
		FirstNameOrNickname: "Alexandra",
		Notes:               "prefers Alex",
		EmailAddresses:      []string{"new@example.com", "old@example.com"},
	})
	require.NoError(t, err)

	p, err := s.GetPerson(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alexandra", p.FirstNameOrNickname)
	assert.Equal(t, "prefers Alex", p.Notes)
	assert.Empty(t, p.Aliases)
	assert.Equal(t, []string{"new@example.com", "old@example.com"}, p.EmailAddresses)

	err = s.UpdatePerson(ctx, model.Person{ID: 99, FirstNameOrNickname: "Nobody"})
	requireCode(t, err, model.ErrCodeNotFound)
}

func TestListPeople_PrimaryEmailOnly(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreatePerson(ctx, model.Person{
		FirstNameOrNickname: "Alex",
		EmailAddresses:      []string{"a@example.com", "b@example.com"},
	})
	require.NoError(t, err)
	createTestPerson(t, s, "Sam")

	people, err := s.ListPeople(ctx)
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, []string{"a@example.com"}, people[0].EmailAddresses)
	assert.Empty(t, people[1].EmailAddresses)
}

func TestContactInfoTypes_UsageAndUniqueness(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	discord, err := s.CreateContactInfoType(ctx, "Discord")
	require.NoError(t, err)
	_, err = s.CreateContactInfoType(ctx, "Signal")
	require.NoError(t, err)
	_, err = s.CreateContactInfoType(ctx, "Discord")
	requireCode(t, err, model.ErrCodeConstraintViolation)

	for _, name := range []string{"Alex", "Sam"} {
		_, err := s.CreatePerson(ctx, model.Person{
			FirstNameOrNickname: name,
			OtherContactInfo:    []model.ContactInfo{{TypeID: discord, Value: name}},
		})
		require.NoError(t, err)
	}

	usage, err := s.ListContactInfoTypeUsage(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, "Discord", usage[0].Name)
	assert.Equal(t, int64(2), usage[0].UsageCount)
	assert.Equal(t, "Signal", usage[1].Name)
	assert.Equal(t, int64(0), usage[1].UsageCount)
}

func TestCountContactRows(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	emails, err := s.CountEmailAddresses(ctx)
	require.NoError(t, err)
	assert.Zero(t, emails)

	alex, err := s.CreatePerson(ctx, model.Person{
		FirstNameOrNickname: "Alex",
		EmailAddresses:      []string{"a@example.com", "b@example.com"},
	})
	require.NoError(t, err)
	_, err = s.CreatePerson(ctx, model.Person{FirstNameOrNickname: "Sam", EmailAddresses: []string{"sam@example.com"}})
	require.NoError(t, err)
	_, err = s.AddPhoneNumber(ctx, model.PhoneNumber{PersonID: alex, CountryCode: "1", AreaCode: "555", Prefix: "010", LineNumber: "4477"})
	require.NoError(t, err)

	emails, err = s.CountEmailAddresses(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), emails)

	phones, err := s.CountPhoneNumbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), phones)
}
