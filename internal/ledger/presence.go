package ledger

import (
	"context"

	"github.com/roach88/rksledger/internal/model"
)

// RecordAttendance records a person at an event. A guest's sponsor must hold
// a membership active on the event date.
func (l *Ledger) RecordAttendance(ctx context.Context, a model.Attendance) (model.Attendance, error) {
	err := l.store.InTx(ctx, func(ctx context.Context) error {
		if err := l.checkSponsor(ctx, a.EventID, a.GuestOfMemberID); err != nil {
			return err
		}
		var err error
		a.ID, err = l.store.CreateAttendance(ctx, a)
		return err
	})
	if err != nil {
		return model.Attendance{}, err
	}
	l.log.Info("attendance recorded", "event_id", a.EventID, "person_id", a.PersonID, "attendance_id", a.ID)
	return a, nil
}

// RecordRSVP records a person's pre-registration for an event. The received
// date defaults to today. A guest's sponsor must hold a membership active on
// the event date.
func (l *Ledger) RecordRSVP(ctx context.Context, r model.RSVP) (model.RSVP, error) {
	if r.ReceivedDate.IsZero() {
		r.ReceivedDate = l.Today()
	}
	err := l.store.InTx(ctx, func(ctx context.Context) error {
		if err := l.checkSponsor(ctx, r.EventID, r.GuestOfMemberID); err != nil {
			return err
		}
		var err error
		r.ID, err = l.store.CreateRSVP(ctx, r)
		return err
	})
	if err != nil {
		return model.RSVP{}, err
	}
	l.log.Info("rsvp recorded", "event_id", r.EventID, "person_id", r.PersonID, "rsvp_id", r.ID)
	return r, nil
}

func (l *Ledger) checkSponsor(ctx context.Context, eventID int64, sponsorID *int64) error {
	event, err := l.store.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if sponsorID == nil {
		return nil
	}
	_, active, err := l.ActiveMembership(ctx, *sponsorID, event.Date())
	if err != nil {
		return err
	}
	if !active {
		return model.NewError(model.ErrCodeSponsorNotActiveMember,
			"person %d has no membership active on %s", *sponsorID, event.Date()).
			WithDetail("person_id", *sponsorID).
			WithDetail("event_id", eventID)
	}
	return nil
}
