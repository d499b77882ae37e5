package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rksledger/internal/model"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestPerson inserts a person with just a name.
func createTestPerson(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	id, err := s.CreatePerson(context.Background(), model.Person{FirstNameOrNickname: name})
	require.NoError(t, err)
	return id
}

// createTestMembership inserts a membership type, a person and a membership
// of that type.
func createTestMembership(t *testing.T, s *Store, begin string, end *model.Date) model.Membership {
	t.Helper()
	ctx := context.Background()
	typeID, err := s.CreateMembershipType(ctx, "Silver")
	require.NoError(t, err)
	m := model.Membership{
		PersonID:         createTestPerson(t, s, "Alex"),
		MembershipTypeID: typeID,
		BeginDate:        model.MustParseDate(begin),
		EndDate:          end,
	}
	m.ID, err = s.CreateMembership(ctx, m)
	require.NoError(t, err)
	return m
}

// createTestPaymentItem records a single-item payment and returns the item.
func createTestPaymentItem(t *testing.T, s *Store, personID int64, amount, reference string) model.PaymentItem {
	t.Helper()
	p, err := s.CreatePayment(context.Background(), model.Payment{
		PersonID:     personID,
		ReceivedDate: model.MustParseDate("2024-01-01"),
		Reference:    reference,
		Items:        []model.PaymentItem{{Amount: model.MustMoney(amount)}},
	})
	require.NoError(t, err)
	return p.Items[0]
}

func datePtr(s string) *model.Date {
	d := model.MustParseDate(s)
	return &d
}

func int64Ptr(v int64) *int64 { return &v }

func requireCode(t *testing.T, err error, code model.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, model.CodeOf(err), "error: %v", err)
}
