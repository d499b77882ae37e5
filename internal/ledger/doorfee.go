package ledger

import (
	"context"

	"github.com/roach88/rksledger/internal/model"
)

// ResolveDoorFee returns the fee a membership type owes at an event. A nil
// membershipTypeID asks for the non-member fee.
//
// The event's own fee for the membership type wins; otherwise the event
// type's default applies. Resolution only reads, so repeated calls agree
// until a fee is written.
func (l *Ledger) ResolveDoorFee(ctx context.Context, eventID int64, membershipTypeID *int64) (model.ResolvedFee, error) {
	if membershipTypeID == nil && !l.policy.NonMemberDoorFees {
		return model.ResolvedFee{}, model.NewError(model.ErrCodeNonMemberFeesDisabled,
			"non-member door fees are disabled").WithDetail("event_id", eventID)
	}

	event, err := l.store.GetEvent(ctx, eventID)
	if err != nil {
		return model.ResolvedFee{}, err
	}
	if membershipTypeID != nil {
		if _, err := l.store.GetMembershipType(ctx, *membershipTypeID); err != nil {
			return model.ResolvedFee{}, err
		}
	}

	resolved := model.ResolvedFee{EventID: eventID, MembershipTypeID: membershipTypeID}

	fee, ok, err := l.store.EventDoorFee(ctx, eventID, membershipTypeID)
	if err != nil {
		return model.ResolvedFee{}, err
	}
	if ok {
		resolved.Amount, resolved.Source = fee, model.FeeSourceEvent
		l.log.Debug("door fee resolved", "event_id", eventID, "source", resolved.Source)
		return resolved, nil
	}

	fee, ok, err = l.store.EventTypeDefaultFee(ctx, event.EventTypeID, membershipTypeID)
	if err != nil {
		return model.ResolvedFee{}, err
	}
	if ok {
		resolved.Amount, resolved.Source = fee, model.FeeSourceEventType
		l.log.Debug("door fee resolved", "event_id", eventID, "source", resolved.Source)
		return resolved, nil
	}

	e := model.NewError(model.ErrCodeNoFeeDefined, "no door fee defined for event %d", eventID).
		WithDetail("event_id", eventID).
		WithDetail("event_type_id", event.EventTypeID)
	if membershipTypeID != nil {
		e = e.WithDetail("membership_type_id", *membershipTypeID)
	}
	return model.ResolvedFee{}, e
}

// DoorFeeRequest applies a payment item to the door fee for an event.
type DoorFeeRequest struct {
	PaymentItemID    int64
	EventID          int64
	MembershipTypeID *int64
}

// PayDoorFee resolves the door fee and links the payment item to it in one
// transaction.
//
// Errors: those of ResolveDoorFee, PAYMENT_ITEM_ALREADY_ALLOCATED, and
// AMOUNT_MISMATCH when EnforcePaymentAmounts is set and the item amount
// differs from the resolved fee.
func (l *Ledger) PayDoorFee(ctx context.Context, req DoorFeeRequest) (model.DoorFeePayment, error) {
	payment := model.DoorFeePayment{
		PaymentItemID:    req.PaymentItemID,
		EventID:          req.EventID,
		MembershipTypeID: req.MembershipTypeID,
	}
	err := l.store.InTx(ctx, func(ctx context.Context) error {
		fee, err := l.ResolveDoorFee(ctx, req.EventID, req.MembershipTypeID)
		if err != nil {
			return err
		}
		item, err := l.unallocatedItem(ctx, req.PaymentItemID)
		if err != nil {
			return err
		}
		if l.policy.EnforcePaymentAmounts && !item.Amount.Equal(fee.Amount) {
			return model.NewError(model.ErrCodeAmountMismatch,
				"payment item %d amount %s does not match door fee %s",
				item.ID, item.Amount, fee.Amount).
				WithDetail("payment_item_id", item.ID).
				WithDetail("expected", fee.Amount)
		}
		payment.ID, err = l.store.CreateDoorFeePayment(ctx, payment)
		return err
	})
	if err != nil {
		return model.DoorFeePayment{}, err
	}

	l.log.Info("door fee paid",
		"event_id", payment.EventID,
		"payment_item_id", payment.PaymentItemID,
		"door_fee_payment_id", payment.ID)
	return payment, nil
}
