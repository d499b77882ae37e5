package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rksledger/internal/model"
)

func TestGuestSheet_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sheet, err := s.CreateGuestSheet(ctx, model.GuestInfoSheet{
		CompletionDate: model.MustParseDate("2024-01-20"),
		Fields: []model.GuestInfoSheetField{
			{Name: "How did you hear about us?", Position: 3, Data: "a friend"},
			{Name: "Name", Behavior: model.BehaviorFirstNameOrNickname, Position: 1, Data: "Alex"},
			{Name: "Email", Behavior: model.BehaviorEmailAddress, Position: 2},
		},
	})
	require.NoError(t, err)

	got, err := s.GetGuestSheet(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PersonID)
	require.Len(t, got.Fields, 3)
	assert.Equal(t, "Name", got.Fields[0].Name)
	assert.Equal(t, model.BehaviorFirstNameOrNickname, got.Fields[0].Behavior)
	assert.Equal(t, "", got.Fields[1].Data)
	assert.Equal(t, model.BehaviorNone, got.Fields[2].Behavior)
}

func TestGuestSheet_FieldUniqueness(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		fields []model.GuestInfoSheetField
	}{
		{"name", []model.GuestInfoSheetField{{Name: "A", Position: 1}, {Name: "A", Position: 2}}},
		{"position", []model.GuestInfoSheetField{{Name: "A", Position: 1}, {Name: "B", Position: 1}}},
		{"behavior", []model.GuestInfoSheetField{
			{Name: "A", Behavior: model.BehaviorAlias, Position: 1},
			{Name: "B", Behavior: model.BehaviorAlias, Position: 2},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateGuestSheet(ctx, model.GuestInfoSheet{
				CompletionDate: model.MustParseDate("2024-01-20"),
				Fields:         tt.fields,
			})
			requireCode(t, err, model.ErrCodeConstraintViolation)
		})
	}

	// Failed sheets leave nothing behind.
	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM guest_info_sheets`).Scan(&n))
	assert.Zero(t, n)
}

func TestLinkGuestSheet_OnlyOnce(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sheet, err := s.CreateGuestSheet(ctx, model.GuestInfoSheet{CompletionDate: model.MustParseDate("2024-01-20")})
	require.NoError(t, err)
	alex := createTestPerson(t, s, "Alex")
	sam := createTestPerson(t, s, "Sam")

	linked, err := s.LinkGuestSheet(ctx, sheet.ID, alex)
	require.NoError(t, err)
	assert.True(t, linked)

	linked, err = s.LinkGuestSheet(ctx, sheet.ID, sam)
	require.NoError(t, err)
	assert.False(t, linked)

	_, err = s.exec(ctx, "relink", `UPDATE guest_info_sheets SET person_id = ? WHERE id = ?`, sam, sheet.ID)
	requireCode(t, err, model.ErrCodeConstraintViolation)

	got, err := s.GetGuestSheet(ctx, sheet.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PersonID)
	assert.Equal(t, alex, *got.PersonID)
}

func TestDefaultGuestSheetFields(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.SetDefaultGuestSheetField(ctx, model.DefaultGuestSheetField{Name: "Pronouns", Behavior: model.BehaviorPronouns, Position: 2})
	require.NoError(t, err)
	_, err = s.SetDefaultGuestSheetField(ctx, model.DefaultGuestSheetField{Name: "Name", Behavior: model.BehaviorFirstNameOrNickname, Position: 1})
	require.NoError(t, err)
	_, err = s.SetDefaultGuestSheetField(ctx, model.DefaultGuestSheetField{Name: "Comments", Position: 3})
	require.NoError(t, err)

	_, err = s.SetDefaultGuestSheetField(ctx, model.DefaultGuestSheetField{Name: "Other pronouns", Behavior: model.BehaviorPronouns, Position: 4})
	requireCode(t, err, model.ErrCodeConstraintViolation)

	fields, err := s.ListDefaultGuestSheetFields(ctx)
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, "Name", fields[0].Name)
	assert.Equal(t, model.BehaviorNone, fields[2].Behavior)
}
