package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rksledger/internal/model"
)

func TestLegalDocuments(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	person := createTestPerson(t, s, "Alex")

	waiver, err := s.CreateLegalDocumentType(ctx, "Waiver")
	require.NoError(t, err)
	_, err = s.CreateLegalDocumentType(ctx, "Waiver")
	requireCode(t, err, model.ErrCodeConstraintViolation)

	_, err = s.CreateLegalDocument(ctx, model.LegalDocument{PersonID: person, TypeID: waiver, SignedDate: model.MustParseDate("2023-01-01")})
	require.NoError(t, err)
	_, err = s.CreateLegalDocument(ctx, model.LegalDocument{PersonID: person, TypeID: waiver, SignedDate: model.MustParseDate("2024-01-01"), Notes: "renewed"})
	require.NoError(t, err)

	docs, err := s.ListLegalDocuments(ctx, person)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "2024-01-01", docs[0].SignedDate.String())
	assert.Equal(t, "renewed", docs[0].Notes)
}

func TestIncidentReport_ReporterNotInvolved(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	reporter := createTestPerson(t, s, "Alex")
	other := createTestPerson(t, s, "Sam")

	id, err := s.CreateIncidentReport(ctx, model.IncidentReport{
		ReporterID: reporter, ReportDate: model.MustParseDate("2024-01-21"),
		Description: "argument at the door", Involved: []int64{other},
	})
	require.NoError(t, err)

	r, err := s.GetIncidentReport(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []int64{other}, r.Involved)

	_, err = s.CreateIncidentReport(ctx, model.IncidentReport{
		ReporterID: reporter, ReportDate: model.MustParseDate("2024-01-22"),
		Description: "self report", Involved: []int64{other, reporter},
	})
	requireCode(t, err, model.ErrCodeConstraintViolation)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM incident_reports`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestConductHistory(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	person := createTestPerson(t, s, "Alex")

	_, err := s.CreateWarning(ctx, model.Warning{PersonID: person, IssuedDate: model.MustParseDate("2024-01-01"), Reason: "late"})
	require.NoError(t, err)
	_, err = s.CreateSanction(ctx, model.Sanction{
		PersonID: person, BeginDate: model.MustParseDate("2024-02-01"), EndDate: model.MustParseDate("2024-03-01"), Reason: "repeat",
	})
	require.NoError(t, err)
	_, err = s.CreateBan(ctx, model.Ban{PersonID: person, BeginDate: model.MustParseDate("2024-04-01"), Reason: "final"})
	require.NoError(t, err)

	t.Run("sanction ordering", func(t *testing.T) {
		_, err := s.CreateSanction(ctx, model.Sanction{
			PersonID: person, BeginDate: model.MustParseDate("2024-03-01"), EndDate: model.MustParseDate("2024-02-01"), Reason: "bad",
		})
		requireCode(t, err, model.ErrCodeConstraintViolation)
	})

	rec, err := s.ConductHistory(ctx, person)
	require.NoError(t, err)
	assert.Len(t, rec.Warnings, 1)
	assert.Len(t, rec.Sanctions, 1)
	require.Len(t, rec.Bans, 1)
	assert.Nil(t, rec.Bans[0].EndDate)
}
