package ledger

import (
	"context"

	"github.com/roach88/rksledger/internal/model"
)

// RenewalRequest pays for one pricing option of a membership with a payment
// item.
type RenewalRequest struct {
	MembershipID    int64
	PricingOptionID int64
	PaymentItemID   int64
}

// RenewMembership extends a membership by the pricing option's length and
// records the dues payment, in one transaction.
//
// The new end date is the policy's renewal base plus LengthMonths months.
// The dues payment's original end date is the membership's end date before
// the renewal, or its begin date if it had none. Coverage resumes at the
// renewal base, so a lapsed membership stays inactive between its old end
// date and the day it was renewed.
//
// Errors:
//   - INVALID_PRICING_OPTION: the option belongs to another membership type
//   - PAYMENT_ITEM_ALREADY_ALLOCATED: the item already pays dues or a door fee
//   - AMOUNT_MISMATCH: the item amount differs from the option price and
//     EnforcePaymentAmounts is set
//   - ORDERING_VIOLATION: the new end date would precede the original
//   - CONCURRENT_UPDATE: the end date changed after it was read
//   - NOT_FOUND: the membership, option or item does not exist
func (l *Ledger) RenewMembership(ctx context.Context, req RenewalRequest) (model.DuesPayment, error) {
	var dues model.DuesPayment
	err := l.store.InTx(ctx, func(ctx context.Context) error {
		m, err := l.store.GetMembership(ctx, req.MembershipID)
		if err != nil {
			return err
		}
		option, err := l.store.GetPricingOption(ctx, req.PricingOptionID)
		if err != nil {
			return err
		}
		if option.MembershipTypeID != m.MembershipTypeID {
			return model.NewError(model.ErrCodeInvalidPricingOption,
				"pricing option %d belongs to membership type %d, membership %d is type %d",
				option.ID, option.MembershipTypeID, m.ID, m.MembershipTypeID).
				WithDetail("pricing_option_id", option.ID).
				WithDetail("membership_id", m.ID)
		}

		item, err := l.unallocatedItem(ctx, req.PaymentItemID)
		if err != nil {
			return err
		}
		if l.policy.EnforcePaymentAmounts && !item.Amount.Equal(option.Price) {
			return model.NewError(model.ErrCodeAmountMismatch,
				"payment item %d amount %s does not match pricing option price %s",
				item.ID, item.Amount, option.Price).
				WithDetail("payment_item_id", item.ID).
				WithDetail("expected", option.Price)
		}

		original := m.BeginDate
		if m.EndDate != nil {
			original = *m.EndDate
		}
		today := l.Today()
		base := l.policy.renewalBase(original, today)
		newEnd := base.AddMonths(option.LengthMonths)
		coverage := base
		if m.EndDate == nil {
			coverage = original
		}
		l.log.Debug("renewal base chosen",
			"membership_id", m.ID,
			"policy", l.policy.RenewalBase,
			"original_end_date", original,
			"today", today,
			"base", base)

		if newEnd.Before(original) {
			return model.NewError(model.ErrCodeOrderingViolation,
				"new end date %s precedes current end date %s", newEnd, original).
				WithDetail("membership_id", m.ID).
				WithDetail("original_end_date", original).
				WithDetail("new_end_date", newEnd)
		}

		dues = model.DuesPayment{
			PaymentItemID:     item.ID,
			MembershipID:      m.ID,
			PricingOptionID:   option.ID,
			OriginalEndDate:   original,
			CoverageBeginDate: coverage,
			NewEndDate:        newEnd,
		}
		dues.ID, err = l.store.RecordDuesPayment(ctx, dues, m.EndDate)
		return err
	})
	if err != nil {
		return model.DuesPayment{}, err
	}

	l.log.Info("membership renewed",
		"membership_id", dues.MembershipID,
		"dues_payment_id", dues.ID,
		"original_end_date", dues.OriginalEndDate,
		"coverage_begin_date", dues.CoverageBeginDate,
		"new_end_date", dues.NewEndDate)
	return dues, nil
}

// unallocatedItem loads a payment item and checks it has not been applied to
// dues or a door fee.
func (l *Ledger) unallocatedItem(ctx context.Context, id int64) (model.PaymentItem, error) {
	item, err := l.store.GetPaymentItem(ctx, id)
	if err != nil {
		return model.PaymentItem{}, err
	}
	allocation, err := l.store.PaymentItemAllocation(ctx, id)
	if err != nil {
		return model.PaymentItem{}, err
	}
	if allocation != model.AllocationNone {
		return model.PaymentItem{}, model.NewError(model.ErrCodePaymentItemAlreadyAllocated,
			"payment item %d already pays %s", id, allocation).
			WithDetail("payment_item_id", id).
			WithDetail("allocation", string(allocation))
	}
	return item, nil
}
