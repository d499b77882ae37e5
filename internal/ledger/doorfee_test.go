package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rksledger/internal/model"
)

func TestResolveDoorFee_FallsBackToEventType(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	ctx := context.Background()
	require.NoError(t, f.ledger.SetEventTypeDefaultFee(ctx, f.eventType, model.DoorFee{MembershipTypeID: &f.silver, Fee: model.MustMoney("10.00")}))

	fee, err := f.ledger.ResolveDoorFee(ctx, f.event.ID, &f.silver)
	require.NoError(t, err)
	assert.Equal(t, "10.00", fee.Amount.String())
	assert.Equal(t, model.FeeSourceEventType, fee.Source)

	again, err := f.ledger.ResolveDoorFee(ctx, f.event.ID, &f.silver)
	require.NoError(t, err)
	assert.Equal(t, fee.Amount.String(), again.Amount.String())
	assert.Equal(t, fee.Source, again.Source)
}

func TestResolveDoorFee_EventOverrideWins(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	ctx := context.Background()
	require.NoError(t, f.ledger.SetEventTypeDefaultFee(ctx, f.eventType, model.DoorFee{MembershipTypeID: &f.silver, Fee: model.MustMoney("10.00")}))
	require.NoError(t, f.ledger.SetEventDoorFee(ctx, f.event.ID, model.DoorFee{MembershipTypeID: &f.silver, Fee: model.MustMoney("5.00")}))

	fee, err := f.ledger.ResolveDoorFee(ctx, f.event.ID, &f.silver)
	require.NoError(t, err)
	assert.Equal(t, "5.00", fee.Amount.String())
	assert.Equal(t, model.FeeSourceEvent, fee.Source)
}

func TestResolveDoorFee_Errors(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	ctx := context.Background()
	unknown := int64(99)

	_, err := f.ledger.ResolveDoorFee(ctx, f.event.ID, &f.silver)
	requireCode(t, err, model.ErrCodeNoFeeDefined)

	_, err = f.ledger.ResolveDoorFee(ctx, f.event.ID, &unknown)
	requireCode(t, err, model.ErrCodeNotFound)

	_, err = f.ledger.ResolveDoorFee(ctx, 99, &f.silver)
	requireCode(t, err, model.ErrCodeNotFound)
}

func TestResolveDoorFee_NonMember(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		f := newFixture(t, "2024-01-01")
		ctx := context.Background()
		require.NoError(t, f.ledger.SetEventTypeDefaultFee(ctx, f.eventType, model.DoorFee{Fee: model.MustMoney("20")}))

		fee, err := f.ledger.ResolveDoorFee(ctx, f.event.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, "20.00", fee.Amount.String())
		assert.Nil(t, fee.MembershipTypeID)
	})

	t.Run("disabled", func(t *testing.T) {
		policy := DefaultPolicy()
		policy.NonMemberDoorFees = false
		f := newFixture(t, "2024-01-01", WithPolicy(policy))
		ctx := context.Background()

		err := f.ledger.SetEventTypeDefaultFee(ctx, f.eventType, model.DoorFee{Fee: model.MustMoney("20")})
		requireCode(t, err, model.ErrCodeNonMemberFeesDisabled)
		_, err = f.ledger.ResolveDoorFee(ctx, f.event.ID, nil)
		requireCode(t, err, model.ErrCodeNonMemberFeesDisabled)
	})
}

func TestPayDoorFee(t *testing.T) {
	f := newFixture(t, "2024-01-20")
	ctx := context.Background()
	require.NoError(t, f.ledger.SetEventTypeDefaultFee(ctx, f.eventType, model.DoorFee{MembershipTypeID: &f.silver, Fee: model.MustMoney("10.00")}))

	t.Run("mismatched amount", func(t *testing.T) {
		_, err := f.ledger.PayDoorFee(ctx, DoorFeeRequest{PaymentItemID: f.item(t, "8.00"), EventID: f.event.ID, MembershipTypeID: &f.silver})
		requireCode(t, err, model.ErrCodeAmountMismatch)
	})

	item := f.item(t, "10.00")
	paid, err := f.ledger.PayDoorFee(ctx, DoorFeeRequest{PaymentItemID: item, EventID: f.event.ID, MembershipTypeID: &f.silver})
	require.NoError(t, err)
	assert.NotZero(t, paid.ID)

	allocation, err := f.ledger.Store().PaymentItemAllocation(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, model.AllocationDoorFee, allocation)

	t.Run("item reused", func(t *testing.T) {
		_, err := f.ledger.PayDoorFee(ctx, DoorFeeRequest{PaymentItemID: item, EventID: f.event.ID, MembershipTypeID: &f.silver})
		requireCode(t, err, model.ErrCodePaymentItemAlreadyAllocated)
	})
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t, "2024-01-20")
	ctx := context.Background()

	p, err := f.ledger.RecordPayment(ctx, PaymentRequest{
		PersonID: f.person,
		EventID:  &f.event.ID,
		Method:   " cash ",
		Amounts:  []model.Money{model.MustMoney("30.00"), model.MustMoney("10.00")},
	})
	require.NoError(t, err)
	assert.Equal(t, "ref-0001", p.Reference)
	assert.Equal(t, "2024-01-20", p.ReceivedDate.String())
	assert.Equal(t, "cash", p.Method)
	require.Len(t, p.Items, 2)

	_, err = f.ledger.RecordPayment(ctx, PaymentRequest{PersonID: f.person})
	requireCode(t, err, model.ErrCodeInvalidArgument)

	_, err = f.ledger.RecordPayment(ctx, PaymentRequest{PersonID: 99, Amounts: []model.Money{model.MustMoney("1")}})
	requireCode(t, err, model.ErrCodeConstraintViolation)
}
