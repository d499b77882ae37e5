package ledger

import (
	"context"

	"github.com/roach88/rksledger/internal/model"
)

// PaymentRequest records money received from a person.
type PaymentRequest struct {
	PersonID int64
	EventID  *int64

	// ReceivedDate defaults to today.
	ReceivedDate model.Date
	Method       string
	Notes        string

	// Amounts holds one entry per payment item.
	Amounts []model.Money
}

// RecordPayment stores a payment and its items under a freshly generated
// reference. Items are applied later with RenewMembership or PayDoorFee.
func (l *Ledger) RecordPayment(ctx context.Context, req PaymentRequest) (model.Payment, error) {
	if len(req.Amounts) == 0 {
		return model.Payment{}, invalidArgument("a payment needs at least one item")
	}
	p := model.Payment{
		PersonID:     req.PersonID,
		EventID:      req.EventID,
		ReceivedDate: req.ReceivedDate,
		Reference:    l.refs.Generate(),
		Method:       model.NormalizeText(req.Method),
		Notes:        model.NormalizeText(req.Notes),
	}
	if p.ReceivedDate.IsZero() {
		p.ReceivedDate = l.Today()
	}
	for _, amount := range req.Amounts {
		p.Items = append(p.Items, model.PaymentItem{Amount: amount})
	}

	p, err := l.store.CreatePayment(ctx, p)
	if err != nil {
		return model.Payment{}, err
	}

	total, err := p.Total()
	if err != nil {
		return model.Payment{}, err
	}
	l.log.Info("payment recorded",
		"payment_id", p.ID,
		"person_id", p.PersonID,
		"reference", p.Reference,
		"items", len(p.Items),
		"total", total)
	return p, nil
}
