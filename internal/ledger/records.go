package ledger

import (
	"context"
	"time"

	"github.com/roach88/rksledger/internal/model"
	"github.com/roach88/rksledger/internal/store"
)

// requireName normalizes a reference entity name and rejects blanks.
func requireName(kind, name string) (string, error) {
	name = model.NormalizeText(name)
	if name == "" {
		return "", invalidArgument("%s name is required", kind)
	}
	return name, nil
}

// CreateContactInfoType adds a named kind of contact info, such as "Discord".
func (l *Ledger) CreateContactInfoType(ctx context.Context, name string) (int64, error) {
	name, err := requireName("contact info type", name)
	if err != nil {
		return 0, err
	}
	return l.store.CreateContactInfoType(ctx, name)
}

// ListContactInfoTypeUsage returns each contact info type with how many
// people's contact info rows use it.
func (l *Ledger) ListContactInfoTypeUsage(ctx context.Context) ([]model.ContactInfoTypeUsage, error) {
	return l.store.ListContactInfoTypeUsage(ctx)
}

// CreateMembershipType adds a membership type with a unique name.
func (l *Ledger) CreateMembershipType(ctx context.Context, name string) (int64, error) {
	name, err := requireName("membership type", name)
	if err != nil {
		return 0, err
	}
	return l.store.CreateMembershipType(ctx, name)
}

// ListMembershipTypes returns every membership type with the number of
// memberships active today.
func (l *Ledger) ListMembershipTypes(ctx context.Context) ([]model.MembershipTypeSummary, error) {
	return l.store.ListMembershipTypes(ctx, l.Today())
}

// CreatePricingOption offers a membership type for LengthMonths months at
// Price. The (type, length, price) triple is unique.
func (l *Ledger) CreatePricingOption(ctx context.Context, o model.PricingOption) (int64, error) {
	if o.LengthMonths <= 0 {
		return 0, invalidArgument("length_months must be positive, got %d", o.LengthMonths)
	}
	return l.store.CreatePricingOption(ctx, o)
}

// UpdatePricingOption changes an option's length and price. Its membership
// type is fixed.
func (l *Ledger) UpdatePricingOption(ctx context.Context, o model.PricingOption) error {
	if o.LengthMonths <= 0 {
		return invalidArgument("length_months must be positive, got %d", o.LengthMonths)
	}
	return l.store.UpdatePricingOption(ctx, o)
}

// ListPricingOptions returns a membership type's options, shortest first.
func (l *Ledger) ListPricingOptions(ctx context.Context, membershipTypeID int64) ([]model.PricingOption, error) {
	return l.store.ListPricingOptions(ctx, membershipTypeID)
}

// CreateEventType adds an event type with optional default start time and
// duration.
func (l *Ledger) CreateEventType(ctx context.Context, et model.EventType) (int64, error) {
	name, err := requireName("event type", et.Name)
	if err != nil {
		return 0, err
	}
	et.Name = name
	if et.DefaultDurationMinutes != nil && *et.DefaultDurationMinutes <= 0 {
		return 0, invalidArgument("default duration must be positive, got %d", *et.DefaultDurationMinutes)
	}
	return l.store.CreateEventType(ctx, et)
}

// SetEventTypeDefaultFee sets the door fee every event of the type charges
// unless the event overrides it. A nil membership type is the non-member fee.
func (l *Ledger) SetEventTypeDefaultFee(ctx context.Context, eventTypeID int64, fee model.DoorFee) error {
	if fee.MembershipTypeID == nil && !l.policy.NonMemberDoorFees {
		return model.NewError(model.ErrCodeNonMemberFeesDisabled, "non-member door fees are disabled")
	}
	return l.store.SetEventTypeDefaultFee(ctx, eventTypeID, fee)
}

// SetEventDoorFee sets an event's own door fee for one membership type, or
// for non-members when the membership type is nil.
func (l *Ledger) SetEventDoorFee(ctx context.Context, eventID int64, fee model.DoorFee) error {
	if fee.MembershipTypeID == nil && !l.policy.NonMemberDoorFees {
		return model.NewError(model.ErrCodeNonMemberFeesDisabled, "non-member door fees are disabled")
	}
	return l.store.SetEventDoorFee(ctx, eventID, fee)
}

// CreateLegalDocumentType adds a kind of document people sign, such as a
// waiver.
func (l *Ledger) CreateLegalDocumentType(ctx context.Context, name string) (int64, error) {
	name, err := requireName("legal document type", name)
	if err != nil {
		return 0, err
	}
	return l.store.CreateLegalDocumentType(ctx, name)
}

// CreatePerson normalizes and stores a person. The first email address
// becomes the primary one.
func (l *Ledger) CreatePerson(ctx context.Context, p model.Person) (model.Person, error) {
	p.Normalize()
	if p.FirstNameOrNickname == "" {
		return model.Person{}, invalidArgument("first name or nickname is required")
	}
	id, err := l.store.CreatePerson(ctx, p)
	if err != nil {
		return model.Person{}, err
	}
	p.ID = id
	l.log.Info("person created", "person_id", id)
	return p, nil
}

// UpdatePerson replaces a person's fields, aliases, email addresses and
// other contact info in full.
func (l *Ledger) UpdatePerson(ctx context.Context, p model.Person) error {
	p.Normalize()
	if p.FirstNameOrNickname == "" {
		return invalidArgument("first name or nickname is required")
	}
	return l.store.UpdatePerson(ctx, p)
}

// GetPerson returns a person with their aliases and contact info.
func (l *Ledger) GetPerson(ctx context.Context, id int64) (model.Person, error) {
	return l.store.GetPerson(ctx, id)
}

// ListPeople returns every person with only their primary email loaded.
func (l *Ledger) ListPeople(ctx context.Context) ([]model.Person, error) {
	return l.store.ListPeople(ctx)
}

// AddPhoneNumber attaches a phone number to an existing person.
func (l *Ledger) AddPhoneNumber(ctx context.Context, n model.PhoneNumber) (int64, error) {
	return l.store.AddPhoneNumber(ctx, n)
}

// ContactCounts returns how many email addresses and phone numbers are on
// file across all people.
func (l *Ledger) ContactCounts(ctx context.Context) (model.ContactCounts, error) {
	var c model.ContactCounts
	err := l.store.InTx(ctx, func(ctx context.Context) error {
		var err error
		if c.EmailAddresses, err = l.store.CountEmailAddresses(ctx); err != nil {
			return err
		}
		c.PhoneNumbers, err = l.store.CountPhoneNumbers(ctx)
		return err
	})
	return c, err
}

// ApproveMembership records a membership approval. The date defaults to
// today.
func (l *Ledger) ApproveMembership(ctx context.Context, personID int64, on model.Date) (model.MembershipApproval, error) {
	a := model.MembershipApproval{PersonID: personID, ApprovalDate: on}
	if a.ApprovalDate.IsZero() {
		a.ApprovalDate = l.Today()
	}
	id, err := l.store.CreateMembershipApproval(ctx, a)
	if err != nil {
		return model.MembershipApproval{}, err
	}
	a.ID = id
	l.log.Info("membership approved", "person_id", personID, "approval_date", a.ApprovalDate)
	return a, nil
}

// CreateMembership starts a membership. The begin date defaults to today.
// When RequireMembershipApproval is set the person needs an approval dated on
// or before the begin date.
func (l *Ledger) CreateMembership(ctx context.Context, m model.Membership) (model.Membership, error) {
	if m.BeginDate.IsZero() {
		m.BeginDate = l.Today()
	}
	if m.EndDate != nil && m.EndDate.Before(m.BeginDate) {
		return model.Membership{}, model.NewError(model.ErrCodeOrderingViolation,
			"end date %s precedes begin date %s", *m.EndDate, m.BeginDate)
	}
	m.Notes = model.NormalizeText(m.Notes)

	err := l.store.InTx(ctx, func(ctx context.Context) error {
		if l.policy.RequireMembershipApproval {
			approved, err := l.store.ApprovedBy(ctx, m.PersonID, m.BeginDate)
			if err != nil {
				return err
			}
			if !approved {
				return model.NewError(model.ErrCodeMembershipNotApproved,
					"person %d has no membership approval on or before %s", m.PersonID, m.BeginDate).
					WithDetail("person_id", m.PersonID)
			}
		}
		var err error
		m.ID, err = l.store.CreateMembership(ctx, m)
		return err
	})
	if err != nil {
		return model.Membership{}, err
	}
	l.log.Info("membership created", "membership_id", m.ID, "person_id", m.PersonID)
	return m, nil
}

// GetMembership returns a membership by id.
func (l *Ledger) GetMembership(ctx context.Context, id int64) (model.Membership, error) {
	return l.store.GetMembership(ctx, id)
}

// ActiveMembership returns the person's oldest membership covering d.
func (l *Ledger) ActiveMembership(ctx context.Context, personID int64, d model.Date) (model.Membership, bool, error) {
	memberships, err := l.store.MembershipsActiveOn(ctx, personID, d)
	if err != nil || len(memberships) == 0 {
		return model.Membership{}, false, err
	}
	return memberships[0], true, nil
}

// EventRequest creates an event. Nil times are filled from the event type's
// default start time and duration on Date.
type EventRequest struct {
	EventTypeID int64
	Name        string
	Date        model.Date
	StartsAt    *time.Time
	EndsAt      *time.Time
}

// CreateEvent schedules an event, filling missing times from its event type.
func (l *Ledger) CreateEvent(ctx context.Context, req EventRequest) (model.Event, error) {
	name, err := requireName("event", req.Name)
	if err != nil {
		return model.Event{}, err
	}
	e := model.Event{EventTypeID: req.EventTypeID, Name: name}

	et, err := l.store.GetEventType(ctx, req.EventTypeID)
	if err != nil {
		return model.Event{}, err
	}

	switch {
	case req.StartsAt != nil:
		e.StartsAt = *req.StartsAt
	case et.DefaultStartTime != nil && !req.Date.IsZero():
		e.StartsAt = et.DefaultStartTime.On(req.Date, time.Local)
	default:
		return model.Event{}, invalidArgument("event needs a start time or a date and an event type default start time")
	}

	switch {
	case req.EndsAt != nil:
		e.EndsAt = *req.EndsAt
	case et.DefaultDurationMinutes != nil:
		e.EndsAt = e.StartsAt.Add(time.Duration(*et.DefaultDurationMinutes) * time.Minute)
	default:
		return model.Event{}, invalidArgument("event needs an end time or an event type default duration")
	}
	if e.EndsAt.Before(e.StartsAt) {
		return model.Event{}, model.NewError(model.ErrCodeOrderingViolation, "event ends before it starts")
	}

	if e.ID, err = l.store.CreateEvent(ctx, e); err != nil {
		return model.Event{}, err
	}
	l.log.Info("event created", "event_id", e.ID, "event_type_id", e.EventTypeID)
	return e, nil
}

// GetEvent returns an event by id.
func (l *Ledger) GetEvent(ctx context.Context, id int64) (model.Event, error) {
	return l.store.GetEvent(ctx, id)
}

// RecordLegalDocument records a signed document. The signed date defaults to
// today.
func (l *Ledger) RecordLegalDocument(ctx context.Context, d model.LegalDocument) (model.LegalDocument, error) {
	if d.SignedDate.IsZero() {
		d.SignedDate = l.Today()
	}
	d.Notes = model.NormalizeText(d.Notes)
	id, err := l.store.CreateLegalDocument(ctx, d)
	if err != nil {
		return model.LegalDocument{}, err
	}
	d.ID = id
	return d, nil
}

// IssueWarning records a warning. The issued date defaults to today.
func (l *Ledger) IssueWarning(ctx context.Context, w model.Warning) (model.Warning, error) {
	if w.IssuedDate.IsZero() {
		w.IssuedDate = l.Today()
	}
	if w.Reason = model.NormalizeText(w.Reason); w.Reason == "" {
		return model.Warning{}, invalidArgument("a warning needs a reason")
	}
	id, err := l.store.CreateWarning(ctx, w)
	if err != nil {
		return model.Warning{}, err
	}
	w.ID = id
	l.log.Info("warning issued", "person_id", w.PersonID, "warning_id", id)
	return w, nil
}

// IssueSanction records a sanction between two dates. The begin date
// defaults to today.
func (l *Ledger) IssueSanction(ctx context.Context, s model.Sanction) (model.Sanction, error) {
	if s.BeginDate.IsZero() {
		s.BeginDate = l.Today()
	}
	if s.EndDate.Before(s.BeginDate) {
		return model.Sanction{}, model.NewError(model.ErrCodeOrderingViolation,
			"sanction end date %s precedes begin date %s", s.EndDate, s.BeginDate)
	}
	if s.Reason = model.NormalizeText(s.Reason); s.Reason == "" {
		return model.Sanction{}, invalidArgument("a sanction needs a reason")
	}
	id, err := l.store.CreateSanction(ctx, s)
	if err != nil {
		return model.Sanction{}, err
	}
	s.ID = id
	l.log.Info("sanction issued", "person_id", s.PersonID, "sanction_id", id)
	return s, nil
}

// IssueBan records a ban. A nil end date makes it permanent.
func (l *Ledger) IssueBan(ctx context.Context, b model.Ban) (model.Ban, error) {
	if b.BeginDate.IsZero() {
		b.BeginDate = l.Today()
	}
	if b.EndDate != nil && b.EndDate.Before(b.BeginDate) {
		return model.Ban{}, model.NewError(model.ErrCodeOrderingViolation,
			"ban end date %s precedes begin date %s", *b.EndDate, b.BeginDate)
	}
	if b.Reason = model.NormalizeText(b.Reason); b.Reason == "" {
		return model.Ban{}, invalidArgument("a ban needs a reason")
	}
	id, err := l.store.CreateBan(ctx, b)
	if err != nil {
		return model.Ban{}, err
	}
	b.ID = id
	l.log.Info("ban issued", "person_id", b.PersonID, "ban_id", id)
	return b, nil
}

// FileIncidentReport records a report and the people it involves. The
// reporter may not be listed as involved.
func (l *Ledger) FileIncidentReport(ctx context.Context, r model.IncidentReport) (model.IncidentReport, error) {
	if r.ReportDate.IsZero() {
		r.ReportDate = l.Today()
	}
	if r.Description = model.NormalizeText(r.Description); r.Description == "" {
		return model.IncidentReport{}, invalidArgument("an incident report needs a description")
	}
	id, err := l.store.CreateIncidentReport(ctx, r)
	if err != nil {
		return model.IncidentReport{}, err
	}
	r.ID = id
	l.log.Info("incident report filed", "incident_report_id", id, "involved", len(r.Involved))
	return r, nil
}

// ConductHistory returns a person's warnings, sanctions and bans.
func (l *Ledger) ConductHistory(ctx context.Context, personID int64) (store.ConductRecord, error) {
	return l.store.ConductHistory(ctx, personID)
}
