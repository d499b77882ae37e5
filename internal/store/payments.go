package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rksledger/internal/model"
)

// CreatePayment inserts a payment and its items in one transaction and
// returns the payment with ids filled in.
func (s *Store) CreatePayment(ctx context.Context, p model.Payment) (model.Payment, error) {
	err := s.InTx(ctx, func(ctx context.Context) error {
		var err error
		p.ID, err = s.insert(ctx, "create payment", `
			INSERT INTO payments (person_id, event_id, received_date, reference, method, notes)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.PersonID, p.EventID, p.ReceivedDate, p.Reference, nullString(p.Method), nullString(p.Notes))
		if err != nil {
			return err
		}
		for i := range p.Items {
			p.Items[i].PaymentID = p.ID
			p.Items[i].ID, err = s.insert(ctx, "create payment item", `
				INSERT INTO payment_items (payment_id, amount) VALUES (?, ?)
			`, p.ID, p.Items[i].Amount)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return model.Payment{}, err
	}
	return p, nil
}

// GetPayment returns a payment with its items.
func (s *Store) GetPayment(ctx context.Context, id int64) (model.Payment, error) {
	var (
		p             model.Payment
		method, notes sql.NullString
	)
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, person_id, event_id, received_date, reference, method, notes
		FROM payments
		WHERE id = ?
	`, id).Scan(&p.ID, &p.PersonID, &p.EventID, &p.ReceivedDate, &p.Reference, &method, &notes)
	if err != nil {
		return model.Payment{}, notFound(err, "payment", id)
	}
	p.Method = method.String
	p.Notes = notes.String

	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, payment_id, amount FROM payment_items WHERE payment_id = ? ORDER BY id
	`, id)
	if err != nil {
		return model.Payment{}, translate("query payment items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item model.PaymentItem
		if err := rows.Scan(&item.ID, &item.PaymentID, &item.Amount); err != nil {
			return model.Payment{}, fmt.Errorf("scan payment item: %w", err)
		}
		p.Items = append(p.Items, item)
	}
	return p, rows.Err()
}

// GetPaymentItem returns a payment item by id.
func (s *Store) GetPaymentItem(ctx context.Context, id int64) (model.PaymentItem, error) {
	var item model.PaymentItem
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, payment_id, amount FROM payment_items WHERE id = ?
	`, id).Scan(&item.ID, &item.PaymentID, &item.Amount)
	if err != nil {
		return model.PaymentItem{}, notFound(err, "payment_item", id)
	}
	return item, nil
}

// PaymentItemAllocation reports what a payment item has been applied to.
func (s *Store) PaymentItemAllocation(ctx context.Context, itemID int64) (model.Allocation, error) {
	var dues, doorFees int
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM dues_payments WHERE payment_item_id = ?1),
			(SELECT COUNT(*) FROM door_fee_payments WHERE payment_item_id = ?1)
	`, itemID).Scan(&dues, &doorFees)
	if err != nil {
		return model.AllocationNone, translate("check payment item allocation", err)
	}
	switch {
	case dues > 0:
		return model.AllocationDues, nil
	case doorFees > 0:
		return model.AllocationDoorFee, nil
	default:
		return model.AllocationNone, nil
	}
}

// UnallocatedPaymentItems returns items not yet applied to dues or a door fee.
func (s *Store) UnallocatedPaymentItems(ctx context.Context) ([]model.PaymentItem, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT i.id, i.payment_id, i.amount
		FROM payment_items i
		WHERE NOT EXISTS (SELECT 1 FROM dues_payments d WHERE d.payment_item_id = i.id)
		  AND NOT EXISTS (SELECT 1 FROM door_fee_payments f WHERE f.payment_item_id = i.id)
		ORDER BY i.id
	`)
	if err != nil {
		return nil, translate("list unallocated payment items", err)
	}
	defer rows.Close()

	items := []model.PaymentItem{}
	for rows.Next() {
		var item model.PaymentItem
		if err := rows.Scan(&item.ID, &item.PaymentID, &item.Amount); err != nil {
			return nil, fmt.Errorf("scan payment item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateDoorFeePayment links a payment item to an event's door fee.
func (s *Store) CreateDoorFeePayment(ctx context.Context, d model.DoorFeePayment) (int64, error) {
	return s.insert(ctx, "record door fee payment", `
		INSERT INTO door_fee_payments (payment_item_id, event_id, membership_type_id)
		VALUES (?, ?, ?)
	`, d.PaymentItemID, d.EventID, d.MembershipTypeID)
}
