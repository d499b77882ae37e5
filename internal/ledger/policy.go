package ledger

import (
	"fmt"

	"github.com/roach88/rksledger/internal/model"
)

// RenewalBase selects the date a renewal's months are added to.
type RenewalBase string

const (
	// RenewalFromLaterOfExpirationOrToday extends an unexpired membership from
	// its end date and a lapsed one from today.
	RenewalFromLaterOfExpirationOrToday RenewalBase = "later_of_expiration_or_today"

	// RenewalFromExpiration always extends from the end date, so a lapsed
	// renewal is back-dated to cover the gap.
	RenewalFromExpiration RenewalBase = "expiration"

	// RenewalFromToday always extends from today. Renewing a membership that
	// runs past the new end date fails with ORDERING_VIOLATION.
	RenewalFromToday RenewalBase = "today"
)

// Policy is the organization-level configuration the ledger rules consult.
type Policy struct {
	RenewalBase RenewalBase `json:"renewal_base"`

	// NonMemberDoorFees allows door fees for people without a membership type.
	NonMemberDoorFees bool `json:"non_member_door_fees"`

	// EnforcePaymentAmounts requires a payment item to match the pricing
	// option price or the resolved door fee it is applied to.
	EnforcePaymentAmounts bool `json:"enforce_payment_amounts"`

	// RequireMembershipApproval refuses memberships for people without an
	// approval dated on or before the membership's begin date.
	RequireMembershipApproval bool `json:"require_membership_approval"`
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		RenewalBase:               RenewalFromLaterOfExpirationOrToday,
		NonMemberDoorFees:         true,
		EnforcePaymentAmounts:     true,
		RequireMembershipApproval: false,
	}
}

// Validate checks the policy's enumerated fields.
func (p Policy) Validate() error {
	switch p.RenewalBase {
	case RenewalFromLaterOfExpirationOrToday, RenewalFromExpiration, RenewalFromToday:
		return nil
	}
	return model.NewError(model.ErrCodeInvalidArgument, "unknown renewal base %q", p.RenewalBase).
		WithDetail("renewal_base", string(p.RenewalBase))
}

// renewalBase returns the date to add a pricing option's months to. prior is
// the membership's end date, or its begin date when it has none.
func (p Policy) renewalBase(prior, today model.Date) model.Date {
	switch p.RenewalBase {
	case RenewalFromExpiration:
		return prior
	case RenewalFromToday:
		return today
	default:
		if prior.After(today) {
			return prior
		}
		return today
	}
}

func (p Policy) String() string {
	return fmt.Sprintf("renewal_base=%s non_member_door_fees=%t enforce_payment_amounts=%t require_membership_approval=%t",
		p.RenewalBase, p.NonMemberDoorFees, p.EnforcePaymentAmounts, p.RequireMembershipApproval)
}
