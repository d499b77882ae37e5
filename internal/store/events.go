package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/rksledger/internal/model"
)

// timestampLayout stores event times as sortable local wall-clock text.
const timestampLayout = "2006-01-02 15:04:05"

// CreateEventType adds an event type with optional scheduling defaults.
func (s *Store) CreateEventType(ctx context.Context, et model.EventType) (int64, error) {
	return s.insert(ctx, "create event type", `
		INSERT INTO event_types (name, default_start_time, default_duration_minutes)
		VALUES (?, ?, ?)
	`, et.Name, et.DefaultStartTime, et.DefaultDurationMinutes)
}

// GetEventType returns an event type by id.
func (s *Store) GetEventType(ctx context.Context, id int64) (model.EventType, error) {
	var et model.EventType
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, name, default_start_time, default_duration_minutes
		FROM event_types
		WHERE id = ?
	`, id).Scan(&et.ID, &et.Name, &et.DefaultStartTime, &et.DefaultDurationMinutes)
	if err != nil {
		return model.EventType{}, notFound(err, "event_type", id)
	}
	return et, nil
}

// SetEventTypeDefaultFee sets the default door fee an event type charges a
// membership type. A nil membership type sets the non-member fee.
func (s *Store) SetEventTypeDefaultFee(ctx context.Context, eventTypeID int64, fee model.DoorFee) error {
	return s.upsertFee(ctx, "event_type_default_door_fees", "event_type_id", eventTypeID, fee)
}

// SetEventDoorFee sets an event's override of its type's door fee for a
// membership type. A nil membership type sets the non-member fee.
func (s *Store) SetEventDoorFee(ctx context.Context, eventID int64, fee model.DoorFee) error {
	return s.upsertFee(ctx, "event_door_fees", "event_id", eventID, fee)
}

// upsertFee updates the (owner, membership type) fee row or inserts it.
// "IS ?" matches NULL membership types, which a plain upsert conflict target
// cannot.
func (s *Store) upsertFee(ctx context.Context, table, ownerColumn string, ownerID int64, fee model.DoorFee) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		n, err := s.exec(ctx, "update "+table, `
			UPDATE `+table+` SET fee = ?
			WHERE `+ownerColumn+` = ? AND membership_type_id IS ?
		`, fee.Fee, ownerID, fee.MembershipTypeID)
		if err != nil || n > 0 {
			return err
		}
		_, err = s.insert(ctx, "insert "+table, `
			INSERT INTO `+table+` (`+ownerColumn+`, membership_type_id, fee)
			VALUES (?, ?, ?)
		`, ownerID, fee.MembershipTypeID, fee.Fee)
		return err
	})
}

// EventTypeDefaultFee looks up an event type's default fee for a membership
// type. ok is false when none is defined.
func (s *Store) EventTypeDefaultFee(ctx context.Context, eventTypeID int64, membershipTypeID *int64) (model.Money, bool, error) {
	return s.lookupFee(ctx, "event_type_default_door_fees", "event_type_id", eventTypeID, membershipTypeID)
}

// EventDoorFee looks up an event's fee override for a membership type. ok is
// false when the event does not override its type's default.
func (s *Store) EventDoorFee(ctx context.Context, eventID int64, membershipTypeID *int64) (model.Money, bool, error) {
	return s.lookupFee(ctx, "event_door_fees", "event_id", eventID, membershipTypeID)
}

func (s *Store) lookupFee(ctx context.Context, table, ownerColumn string, ownerID int64, membershipTypeID *int64) (model.Money, bool, error) {
	var fee model.Money
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT fee FROM `+table+`
		WHERE `+ownerColumn+` = ? AND membership_type_id IS ?
	`, ownerID, membershipTypeID).Scan(&fee)
	if errNoRows(err) {
		return model.Money{}, false, nil
	}
	if err != nil {
		return model.Money{}, false, translate("read "+table, err)
	}
	return fee, true, nil
}

// CreateEvent inserts an event.
func (s *Store) CreateEvent(ctx context.Context, e model.Event) (int64, error) {
	return s.insert(ctx, "create event", `
		INSERT INTO events (event_type_id, name, starts_at, ends_at)
		VALUES (?, ?, ?, ?)
	`, e.EventTypeID, e.Name, e.StartsAt.Format(timestampLayout), e.EndsAt.Format(timestampLayout))
}

// GetEvent returns an event by id. Times come back in the local zone.
func (s *Store) GetEvent(ctx context.Context, id int64) (model.Event, error) {
	var (
		e              model.Event
		starts, ending string
	)
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, event_type_id, name, starts_at, ends_at
		FROM events
		WHERE id = ?
	`, id).Scan(&e.ID, &e.EventTypeID, &e.Name, &starts, &ending)
	if err != nil {
		return model.Event{}, notFound(err, "event", id)
	}
	if e.StartsAt, err = time.ParseInLocation(timestampLayout, starts, time.Local); err != nil {
		return model.Event{}, fmt.Errorf("parse event %d start: %w", id, err)
	}
	if e.EndsAt, err = time.ParseInLocation(timestampLayout, ending, time.Local); err != nil {
		return model.Event{}, fmt.Errorf("parse event %d end: %w", id, err)
	}
	return e, nil
}

// CreateAttendance records a person at an event.
func (s *Store) CreateAttendance(ctx context.Context, a model.Attendance) (int64, error) {
	return s.insert(ctx, "record attendance", `
		INSERT INTO attendance (event_id, person_id, guest_of_member_person_id)
		VALUES (?, ?, ?)
	`, a.EventID, a.PersonID, a.GuestOfMemberID)
}

// ListAttendance returns everyone recorded at an event.
func (s *Store) ListAttendance(ctx context.Context, eventID int64) ([]model.Attendance, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, event_id, person_id, guest_of_member_person_id
		FROM attendance
		WHERE event_id = ?
		ORDER BY id
	`, eventID)
	if err != nil {
		return nil, translate("list attendance", err)
	}
	defer rows.Close()

	list := []model.Attendance{}
	for rows.Next() {
		var a model.Attendance
		if err := rows.Scan(&a.ID, &a.EventID, &a.PersonID, &a.GuestOfMemberID); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// CreateRSVP records a person's pre-registration for an event.
func (s *Store) CreateRSVP(ctx context.Context, r model.RSVP) (int64, error) {
	return s.insert(ctx, "record rsvp", `
		INSERT INTO rsvps (event_id, person_id, rsvp_received_date, guest_of_member_person_id)
		VALUES (?, ?, ?, ?)
	`, r.EventID, r.PersonID, r.ReceivedDate, r.GuestOfMemberID)
}

// ListRSVPs returns every RSVP for an event.
func (s *Store) ListRSVPs(ctx context.Context, eventID int64) ([]model.RSVP, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, event_id, person_id, rsvp_received_date, guest_of_member_person_id
		FROM rsvps
		WHERE event_id = ?
		ORDER BY id
	`, eventID)
	if err != nil {
		return nil, translate("list rsvps", err)
	}
	defer rows.Close()

	list := []model.RSVP{}
	for rows.Next() {
		var r model.RSVP
		if err := rows.Scan(&r.ID, &r.EventID, &r.PersonID, &r.ReceivedDate, &r.GuestOfMemberID); err != nil {
			return nil, fmt.Errorf("scan rsvp: %w", err)
		}
		list = append(list, r)
	}
	return list, rows.Err()
}
