package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rksledger/internal/model"
)

func TestCreatePayment_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	person := createTestPerson(t, s, "Alex")

	p, err := s.CreatePayment(ctx, model.Payment{
		PersonID:     person,
		ReceivedDate: model.MustParseDate("2024-01-20"),
		Reference:    "ref-1",
		Method:       "cash",
		Items: []model.PaymentItem{
			{Amount: model.MustMoney("30.00")},
			{Amount: model.MustMoney("10.00")},
		},
	})
	require.NoError(t, err)
	require.Len(t, p.Items, 2)

	got, err := s.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "ref-1", got.Reference)
	assert.Equal(t, "cash", got.Method)
	assert.Nil(t, got.EventID)
	require.Len(t, got.Items, 2)
	total, err := got.Total()
	require.NoError(t, err)
	assert.Equal(t, "40.00", total.String())

	item, err := s.GetPaymentItem(ctx, p.Items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, item.PaymentID)

	_, err = s.GetPayment(ctx, 99)
	requireCode(t, err, model.ErrCodeNotFound)
}

func TestCreatePayment_ReferenceUnique(t *testing.T) {
	s := createTestStore(t)
	person := createTestPerson(t, s, "Alex")
	createTestPaymentItem(t, s, person, "1", "ref-1")

	_, err := s.CreatePayment(context.Background(), model.Payment{
		PersonID: person, ReceivedDate: model.MustParseDate("2024-01-01"), Reference: "ref-1",
	})
	requireCode(t, err, model.ErrCodeConstraintViolation)
}

func TestPayments_AppendOnly(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	item := createTestPaymentItem(t, s, createTestPerson(t, s, "Alex"), "10", "ref-1")

	_, err := s.exec(ctx, "rewrite", `UPDATE payment_items SET amount = '0' WHERE id = ?`, item.ID)
	requireCode(t, err, model.ErrCodeConstraintViolation)
	_, err = s.exec(ctx, "rewrite", `UPDATE payments SET notes = 'edited'`)
	requireCode(t, err, model.ErrCodeConstraintViolation)
}

func TestPaymentItem_DuesOrDoorFeeNeverBoth(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	m := createTestMembership(t, s, "2024-01-01", nil)
	e := createTestEvent(t, s)
	optionID, err := s.CreatePricingOption(ctx, model.PricingOption{
		MembershipTypeID: m.MembershipTypeID, LengthMonths: 1, Price: model.MustMoney("10"),
	})
	require.NoError(t, err)
	item := createTestPaymentItem(t, s, m.PersonID, "10", "ref-1")

	allocation, err := s.PaymentItemAllocation(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AllocationNone, allocation)

	unallocated, err := s.UnallocatedPaymentItems(ctx)
	require.NoError(t, err)
	assert.Len(t, unallocated, 1)

	_, err = s.CreateDoorFeePayment(ctx, model.DoorFeePayment{PaymentItemID: item.ID, EventID: e.ID, MembershipTypeID: &m.MembershipTypeID})
	require.NoError(t, err)

	allocation, err = s.PaymentItemAllocation(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AllocationDoorFee, allocation)

	t.Run("second door fee", func(t *testing.T) {
		_, err := s.CreateDoorFeePayment(ctx, model.DoorFeePayment{PaymentItemID: item.ID, EventID: e.ID})
		requireCode(t, err, model.ErrCodeConstraintViolation)
	})

	t.Run("dues on a door fee item", func(t *testing.T) {
		_, err := s.RecordDuesPayment(ctx, model.DuesPayment{
			PaymentItemID: item.ID, MembershipID: m.ID, PricingOptionID: optionID,
			OriginalEndDate: model.MustParseDate("2024-01-01"),
			NewEndDate:      model.MustParseDate("2024-02-01"),
		}, nil)
		requireCode(t, err, model.ErrCodeConstraintViolation)
	})

	unallocated, err = s.UnallocatedPaymentItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, unallocated)
}
