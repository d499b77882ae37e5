package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/rksledger/internal/model"
)

// CreateMembershipType adds a membership type with a unique name.
func (s *Store) CreateMembershipType(ctx context.Context, name string) (int64, error) {
	return s.insert(ctx, "create membership type", `
		INSERT INTO membership_types (name) VALUES (?)
	`, name)
}

// GetMembershipType returns a membership type by id.
func (s *Store) GetMembershipType(ctx context.Context, id int64) (model.MembershipType, error) {
	var mt model.MembershipType
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, name FROM membership_types WHERE id = ?
	`, id).Scan(&mt.ID, &mt.Name)
	if err != nil {
		return model.MembershipType{}, notFound(err, "membership_type", id)
	}
	return mt, nil
}

// ListMembershipTypes returns every membership type with the number of
// memberships active on the given date.
func (s *Store) ListMembershipTypes(ctx context.Context, on model.Date) ([]model.MembershipTypeSummary, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT t.id, t.name, COUNT(m.id)
		FROM membership_types t
		LEFT JOIN people_memberships m
		  ON m.membership_type_id = t.id
		 AND m.begin_date <= ?1
		 AND (m.end_date IS NULL OR ?1 <= m.end_date)
		 AND NOT `+inCoverageGap("m.id", "?1")+`
		GROUP BY t.id
		ORDER BY t.id
	`, on)
	if err != nil {
		return nil, translate("list membership types", err)
	}
	defer rows.Close()

	types := []model.MembershipTypeSummary{}
	for rows.Next() {
		var t model.MembershipTypeSummary
		if err := rows.Scan(&t.ID, &t.Name, &t.ActiveCount); err != nil {
			return nil, fmt.Errorf("scan membership type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// CreatePricingOption adds a (length, price) option to a membership type.
func (s *Store) CreatePricingOption(ctx context.Context, o model.PricingOption) (int64, error) {
	return s.insert(ctx, "create pricing option", `
		INSERT INTO membership_type_pricing_options (membership_type_id, length_months, price)
		VALUES (?, ?, ?)
	`, o.MembershipTypeID, o.LengthMonths, o.Price)
}

// UpdatePricingOption changes an option's length and price. The membership
// type it belongs to never changes.
func (s *Store) UpdatePricingOption(ctx context.Context, o model.PricingOption) error {
	n, err := s.exec(ctx, "update pricing option", `
		UPDATE membership_type_pricing_options
		SET length_months = ?, price = ?
		WHERE id = ?
	`, o.LengthMonths, o.Price, o.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return model.NewError(model.ErrCodeNotFound, "pricing option %d not found", o.ID).WithDetail("pricing_option_id", o.ID)
	}
	return nil
}

// GetPricingOption returns a pricing option by id.
func (s *Store) GetPricingOption(ctx context.Context, id int64) (model.PricingOption, error) {
	var o model.PricingOption
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, membership_type_id, length_months, price
		FROM membership_type_pricing_options
		WHERE id = ?
	`, id).Scan(&o.ID, &o.MembershipTypeID, &o.LengthMonths, &o.Price)
	if err != nil {
		return model.PricingOption{}, notFound(err, "pricing_option", id)
	}
	return o, nil
}

// ListPricingOptions returns a membership type's options, shortest first.
func (s *Store) ListPricingOptions(ctx context.Context, membershipTypeID int64) ([]model.PricingOption, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, membership_type_id, length_months, price
		FROM membership_type_pricing_options
		WHERE membership_type_id = ?
		ORDER BY length_months, id
	`, membershipTypeID)
	if err != nil {
		return nil, translate("list pricing options", err)
	}
	defer rows.Close()

	options := []model.PricingOption{}
	for rows.Next() {
		var o model.PricingOption
		if err := rows.Scan(&o.ID, &o.MembershipTypeID, &o.LengthMonths, &o.Price); err != nil {
			return nil, fmt.Errorf("scan pricing option: %w", err)
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// CreateMembershipApproval records that a person was approved for membership.
func (s *Store) CreateMembershipApproval(ctx context.Context, a model.MembershipApproval) (int64, error) {
	return s.insert(ctx, "create membership approval", `
		INSERT INTO membership_approvals (person_id, approval_date) VALUES (?, ?)
	`, a.PersonID, a.ApprovalDate)
}

// ApprovedBy reports whether the person has an approval dated on or before d.
func (s *Store) ApprovedBy(ctx context.Context, personID int64, d model.Date) (bool, error) {
	var n int
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM membership_approvals
		WHERE person_id = ? AND approval_date <= ?
	`, personID, d).Scan(&n)
	if err != nil {
		return false, translate("check membership approval", err)
	}
	return n > 0, nil
}

// CreateMembership inserts a membership. The end date is whatever the caller
// supplies; afterwards it only moves through RecordDuesPayment.
func (s *Store) CreateMembership(ctx context.Context, m model.Membership) (int64, error) {
	return s.insert(ctx, "create membership", `
		INSERT INTO people_memberships (person_id, membership_type_id, begin_date, end_date, notes)
		VALUES (?, ?, ?, ?, ?)
	`, m.PersonID, m.MembershipTypeID, m.BeginDate, m.EndDate, nullString(m.Notes))
}

const membershipColumns = `id, person_id, membership_type_id, begin_date, end_date, notes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMembership(row rowScanner) (model.Membership, error) {
	var (
		m     model.Membership
		notes sql.NullString
	)
	if err := row.Scan(&m.ID, &m.PersonID, &m.MembershipTypeID, &m.BeginDate, &m.EndDate, &notes); err != nil {
		return model.Membership{}, err
	}
	m.Notes = notes.String
	return m, nil
}

// GetMembership returns a membership by id.
func (s *Store) GetMembership(ctx context.Context, id int64) (model.Membership, error) {
	m, err := scanMembership(s.conn(ctx).QueryRowContext(ctx, `
		SELECT `+membershipColumns+` FROM people_memberships WHERE id = ?
	`, id))
	if err != nil {
		return model.Membership{}, notFound(err, "membership", id)
	}
	return m, nil
}

// inCoverageGap is an SQL predicate that holds when date falls between a
// renewal's original end date and the later day its coverage began.
func inCoverageGap(membershipID, date string) string {
	return `EXISTS (
		SELECT 1 FROM dues_payments g
		WHERE g.membership_id = ` + membershipID + `
		  AND g.original_end_date < ` + date + `
		  AND ` + date + ` < g.coverage_begin_date)`
}

// MembershipsActiveOn returns the person's memberships covering date d,
// oldest first.
func (s *Store) MembershipsActiveOn(ctx context.Context, personID int64, d model.Date) ([]model.Membership, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT `+membershipColumns+`
		FROM people_memberships
		WHERE person_id = ?1
		  AND begin_date <= ?2
		  AND (end_date IS NULL OR ?2 <= end_date)
		  AND NOT `+inCoverageGap("people_memberships.id", "?2")+`
		ORDER BY begin_date, id
	`, personID, d)
	if err != nil {
		return nil, translate("query active memberships", err)
	}
	defer rows.Close()

	memberships := []model.Membership{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// RecordDuesPayment inserts the audit row for a renewal and moves the
// membership's end date from d.OriginalEndDate's source value to
// d.NewEndDate. The update is a compare-and-swap on the end date read by the
// caller (prior, nil when the membership had none); if another renewal got
// there first the call fails with CONCURRENT_UPDATE. Callers run this inside
// InTx so the two writes commit together.
func (s *Store) RecordDuesPayment(ctx context.Context, d model.DuesPayment, prior *model.Date) (int64, error) {
	id, err := s.insert(ctx, "record dues payment", `
		INSERT INTO dues_payments
		(payment_item_id, membership_id, pricing_option_id, original_end_date, coverage_begin_date, new_end_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.PaymentItemID, d.MembershipID, d.PricingOptionID, d.OriginalEndDate, d.CoverageBeginDate, d.NewEndDate)
	if err != nil {
		return 0, err
	}

	n, err := s.exec(ctx, "extend membership", `
		UPDATE people_memberships
		SET end_date = ?
		WHERE id = ? AND end_date IS ?
	`, d.NewEndDate, d.MembershipID, prior)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, model.NewError(model.ErrCodeConcurrentUpdate,
			"membership %d end date changed during renewal", d.MembershipID).
			WithDetail("membership_id", d.MembershipID)
	}
	return id, nil
}

// ListDuesPayments returns a membership's renewal history, oldest first.
func (s *Store) ListDuesPayments(ctx context.Context, membershipID int64) ([]model.DuesPayment, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, payment_item_id, membership_id, pricing_option_id, original_end_date, coverage_begin_date, new_end_date
		FROM dues_payments
		WHERE membership_id = ?
		ORDER BY id
	`, membershipID)
	if err != nil {
		return nil, translate("list dues payments", err)
	}
	defer rows.Close()

	payments := []model.DuesPayment{}
	for rows.Next() {
		var d model.DuesPayment
		if err := rows.Scan(&d.ID, &d.PaymentItemID, &d.MembershipID, &d.PricingOptionID, &d.OriginalEndDate, &d.CoverageBeginDate, &d.NewEndDate); err != nil {
			return nil, fmt.Errorf("scan dues payment: %w", err)
		}
		payments = append(payments, d)
	}
	return payments, rows.Err()
}

// errNoRows reports whether err is sql.ErrNoRows.
func errNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }
