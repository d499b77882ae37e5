package harness

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/rksledger/internal/ledger"
	"github.com/roach88/rksledger/internal/model"
)

// eventTimeLayout is how scenarios write event start and end times, in the
// local time zone.
const eventTimeLayout = "2006-01-02 15:04"

// stepOutput is what an operation hands back to the harness.
type stepOutput struct {
	id     int64
	items  []int64
	fields map[string]string
}

type opFunc func(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error)

// operations maps scenario op names to ledger calls.
var operations map[string]opFunc

func init() {
	operations = map[string]opFunc{
		"set_today":                  opSetToday,
		"create_person":              opCreatePerson,
		"create_contact_info_type":   opCreateContactInfoType,
		"create_membership_type":     opCreateMembershipType,
		"create_pricing_option":      opCreatePricingOption,
		"approve_membership":         opApproveMembership,
		"create_membership":          opCreateMembership,
		"get_membership":             opGetMembership,
		"create_event_type":          opCreateEventType,
		"set_event_type_fee":         opSetEventTypeFee,
		"create_event":               opCreateEvent,
		"set_event_fee":              opSetEventFee,
		"record_payment":             opRecordPayment,
		"renew":                      opRenew,
		"resolve_door_fee":           opResolveDoorFee,
		"pay_door_fee":               opPayDoorFee,
		"set_guest_sheet_field":      opSetGuestSheetField,
		"submit_guest_sheet":         opSubmitGuestSheet,
		"project_guest_sheet":        opProjectGuestSheet,
		"attend":                     opAttend,
		"rsvp":                       opRSVP,
		"create_legal_document_type": opCreateLegalDocumentType,
		"sign_document":              opSignDocument,
		"warn":                       opWarn,
		"sanction":                   opSanction,
		"ban":                        opBan,
		"file_incident":              opFileIncident,
	}
}

// OpNames returns the supported scenario operations, sorted.
func OpNames() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func idOnly(id int64, err error) (stepOutput, error) {
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: id}, nil
}

func optionalID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func optionalDate(d *model.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func parseEventTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(eventTimeLayout, s, time.Local)
	if err != nil {
		return nil, model.WrapError(model.ErrCodeInvalidArgument, err, "event time %q", s)
	}
	return &t, nil
}

func opSetToday(_ context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Date model.Date `yaml:"date"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	if args.Date.IsZero() {
		return stepOutput{}, fmt.Errorf("set_today needs a date")
	}
	h.clock.SetDate(args.Date)
	return stepOutput{fields: map[string]string{"today": args.Date.String()}}, nil
}

func opCreatePerson(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Name     string   `yaml:"name"`
		Pronouns string   `yaml:"pronouns"`
		Notes    string   `yaml:"notes"`
		Aliases  []string `yaml:"aliases"`
		Emails   []string `yaml:"emails"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	p, err := h.ledger.CreatePerson(ctx, model.Person{
		FirstNameOrNickname: args.Name,
		Pronouns:            args.Pronouns,
		Notes:               args.Notes,
		Aliases:             args.Aliases,
		EmailAddresses:      args.Emails,
	})
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: p.ID, fields: personFields(p)}, nil
}

func opCreateContactInfoType(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Name string `yaml:"name"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	return idOnly(h.ledger.CreateContactInfoType(ctx, args.Name))
}

func opCreateMembershipType(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Name string `yaml:"name"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	return idOnly(h.ledger.CreateMembershipType(ctx, args.Name))
}

func opCreatePricingOption(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		MembershipType int64       `yaml:"membership_type"`
		Months         int         `yaml:"months"`
		Price          model.Money `yaml:"price"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	return idOnly(h.ledger.CreatePricingOption(ctx, model.PricingOption{
		MembershipTypeID: args.MembershipType,
		LengthMonths:     args.Months,
		Price:            args.Price,
	}))
}

func opApproveMembership(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Person int64      `yaml:"person"`
		Date   model.Date `yaml:"date"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	a, err := h.ledger.ApproveMembership(ctx, args.Person, args.Date)
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: a.ID, fields: map[string]string{"approval_date": a.ApprovalDate.String()}}, nil
}

func opCreateMembership(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Person         int64       `yaml:"person"`
		MembershipType int64       `yaml:"membership_type"`
		Begin          model.Date  `yaml:"begin"`
		End            *model.Date `yaml:"end"`
		Notes          string      `yaml:"notes"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	m, err := h.ledger.CreateMembership(ctx, model.Membership{
		PersonID:         args.Person,
		MembershipTypeID: args.MembershipType,
		BeginDate:        args.Begin,
		EndDate:          args.End,
		Notes:            args.Notes,
	})
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: m.ID, fields: membershipFields(m)}, nil
}

func opGetMembership(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Membership int64 `yaml:"membership"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	m, err := h.ledger.GetMembership(ctx, args.Membership)
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: m.ID, fields: membershipFields(m)}, nil
}

func opCreateEventType(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Name            string           `yaml:"name"`
		DefaultStart    *model.TimeOfDay `yaml:"default_start"`
		DefaultDuration *int             `yaml:"default_duration_minutes"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	return idOnly(h.ledger.CreateEventType(ctx, model.EventType{
		Name:                   args.Name,
		DefaultStartTime:       args.DefaultStart,
		DefaultDurationMinutes: args.DefaultDuration,
	}))
}

func opSetEventTypeFee(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		EventType      int64       `yaml:"event_type"`
		MembershipType *int64      `yaml:"membership_type"`
		Fee            model.Money `yaml:"fee"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	err := h.ledger.SetEventTypeDefaultFee(ctx, args.EventType,
		model.DoorFee{MembershipTypeID: args.MembershipType, Fee: args.Fee})
	return stepOutput{}, err
}

func opCreateEvent(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		EventType int64      `yaml:"event_type"`
		Name      string     `yaml:"name"`
		Date      model.Date `yaml:"date"`
		StartsAt  string     `yaml:"starts_at"`
		EndsAt    string     `yaml:"ends_at"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	req := ledger.EventRequest{EventTypeID: args.EventType, Name: args.Name, Date: args.Date}
	var err error
	if req.StartsAt, err = parseEventTime(args.StartsAt); err != nil {
		return stepOutput{}, err
	}
	if req.EndsAt, err = parseEventTime(args.EndsAt); err != nil {
		return stepOutput{}, err
	}
	e, err := h.ledger.CreateEvent(ctx, req)
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: e.ID, fields: eventFields(e)}, nil
}

func opSetEventFee(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Event          int64       `yaml:"event"`
		MembershipType *int64      `yaml:"membership_type"`
		Fee            model.Money `yaml:"fee"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	err := h.ledger.SetEventDoorFee(ctx, args.Event,
		model.DoorFee{MembershipTypeID: args.MembershipType, Fee: args.Fee})
	return stepOutput{}, err
}

func opRecordPayment(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Person  int64         `yaml:"person"`
		Event   *int64        `yaml:"event"`
		Date    model.Date    `yaml:"date"`
		Method  string        `yaml:"method"`
		Notes   string        `yaml:"notes"`
		Amounts []model.Money `yaml:"amounts"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	p, err := h.ledger.RecordPayment(ctx, ledger.PaymentRequest{
		PersonID:     args.Person,
		EventID:      args.Event,
		ReceivedDate: args.Date,
		Method:       args.Method,
		Notes:        args.Notes,
		Amounts:      args.Amounts,
	})
	if err != nil {
		return stepOutput{}, err
	}
	total, err := p.Total()
	if err != nil {
		return stepOutput{}, err
	}
	out := stepOutput{id: p.ID, fields: map[string]string{
		"reference":     p.Reference,
		"received_date": p.ReceivedDate.String(),
		"total":         total.String(),
		"items":         strconv.Itoa(len(p.Items)),
	}}
	for _, item := range p.Items {
		out.items = append(out.items, item.ID)
	}
	return out, nil
}

func opRenew(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Membership    int64 `yaml:"membership"`
		PricingOption int64 `yaml:"pricing_option"`
		Item          int64 `yaml:"item"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	d, err := h.ledger.RenewMembership(ctx, ledger.RenewalRequest{
		MembershipID:    args.Membership,
		PricingOptionID: args.PricingOption,
		PaymentItemID:   args.Item,
	})
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: d.ID, fields: map[string]string{
		"membership_id":     strconv.FormatInt(d.MembershipID, 10),
		"original_end_date": d.OriginalEndDate.String(),
		"new_end_date":      d.NewEndDate.String(),
	}}, nil
}

func opResolveDoorFee(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Event          int64  `yaml:"event"`
		MembershipType *int64 `yaml:"membership_type"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	fee, err := h.ledger.ResolveDoorFee(ctx, args.Event, args.MembershipType)
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{fields: map[string]string{
		"amount": fee.Amount.String(),
		"source": string(fee.Source),
	}}, nil
}

func opPayDoorFee(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Item           int64  `yaml:"item"`
		Event          int64  `yaml:"event"`
		MembershipType *int64 `yaml:"membership_type"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	p, err := h.ledger.PayDoorFee(ctx, ledger.DoorFeeRequest{
		PaymentItemID:    args.Item,
		EventID:          args.Event,
		MembershipTypeID: args.MembershipType,
	})
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: p.ID, fields: map[string]string{
		"event_id":        strconv.FormatInt(p.EventID, 10),
		"payment_item_id": strconv.FormatInt(p.PaymentItemID, 10),
	}}, nil
}

type sheetFieldArgs struct {
	Name     string              `yaml:"name"`
	Behavior model.FieldBehavior `yaml:"behavior"`
	Position int                 `yaml:"position"`
	Data     string              `yaml:"data"`
}

func opSetGuestSheetField(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Name     string              `yaml:"name"`
		Behavior model.FieldBehavior `yaml:"behavior"`
		Position int                 `yaml:"position"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	return idOnly(h.ledger.SetDefaultGuestSheetField(ctx, model.DefaultGuestSheetField{
		Name:     args.Name,
		Behavior: args.Behavior,
		Position: args.Position,
	}))
}

func opSubmitGuestSheet(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Event  *int64           `yaml:"event"`
		Date   model.Date       `yaml:"date"`
		Fields []sheetFieldArgs `yaml:"fields"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	req := ledger.GuestSheetRequest{EventID: args.Event, CompletionDate: args.Date}
	for _, f := range args.Fields {
		req.Fields = append(req.Fields, model.GuestInfoSheetField{
			Name:     f.Name,
			Behavior: f.Behavior,
			Position: f.Position,
			Data:     f.Data,
		})
	}
	sheet, err := h.ledger.SubmitGuestSheet(ctx, req)
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: sheet.ID, fields: map[string]string{
		"completion_date": sheet.CompletionDate.String(),
		"fields":          strconv.Itoa(len(sheet.Fields)),
	}}, nil
}

func opProjectGuestSheet(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Sheet int64 `yaml:"sheet"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	p, err := h.ledger.ProjectGuestSheet(ctx, args.Sheet)
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: p.ID, fields: personFields(p)}, nil
}

func opAttend(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Event   int64  `yaml:"event"`
		Person  int64  `yaml:"person"`
		GuestOf *int64 `yaml:"guest_of"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	a, err := h.ledger.RecordAttendance(ctx, model.Attendance{
		EventID:         args.Event,
		PersonID:        args.Person,
		GuestOfMemberID: args.GuestOf,
	})
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: a.ID, fields: map[string]string{"guest_of": optionalID(a.GuestOfMemberID)}}, nil
}

func opRSVP(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Event   int64      `yaml:"event"`
		Person  int64      `yaml:"person"`
		GuestOf *int64     `yaml:"guest_of"`
		Date    model.Date `yaml:"date"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	r, err := h.ledger.RecordRSVP(ctx, model.RSVP{
		EventID:         args.Event,
		PersonID:        args.Person,
		ReceivedDate:    args.Date,
		GuestOfMemberID: args.GuestOf,
	})
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: r.ID, fields: map[string]string{
		"received_date": r.ReceivedDate.String(),
		"guest_of":      optionalID(r.GuestOfMemberID),
	}}, nil
}

func opCreateLegalDocumentType(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Name string `yaml:"name"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	return idOnly(h.ledger.CreateLegalDocumentType(ctx, args.Name))
}

func opSignDocument(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Person int64      `yaml:"person"`
		Type   int64      `yaml:"type"`
		Date   model.Date `yaml:"date"`
		Notes  string     `yaml:"notes"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	d, err := h.ledger.RecordLegalDocument(ctx, model.LegalDocument{
		PersonID:   args.Person,
		TypeID:     args.Type,
		SignedDate: args.Date,
		Notes:      args.Notes,
	})
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: d.ID, fields: map[string]string{"signed_date": d.SignedDate.String()}}, nil
}

func opWarn(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Person int64      `yaml:"person"`
		Date   model.Date `yaml:"date"`
		Reason string     `yaml:"reason"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	w, err := h.ledger.IssueWarning(ctx, model.Warning{PersonID: args.Person, IssuedDate: args.Date, Reason: args.Reason})
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: w.ID, fields: map[string]string{"issued_date": w.IssuedDate.String()}}, nil
}

func opSanction(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Person int64      `yaml:"person"`
		Begin  model.Date `yaml:"begin"`
		End    model.Date `yaml:"end"`
		Reason string     `yaml:"reason"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	s, err := h.ledger.IssueSanction(ctx, model.Sanction{
		PersonID:  args.Person,
		BeginDate: args.Begin,
		EndDate:   args.End,
		Reason:    args.Reason,
	})
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: s.ID, fields: map[string]string{
		"begin_date": s.BeginDate.String(),
		"end_date":   s.EndDate.String(),
	}}, nil
}

func opBan(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Person int64       `yaml:"person"`
		Begin  model.Date  `yaml:"begin"`
		End    *model.Date `yaml:"end"`
		Reason string      `yaml:"reason"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	b, err := h.ledger.IssueBan(ctx, model.Ban{
		PersonID:  args.Person,
		BeginDate: args.Begin,
		EndDate:   args.End,
		Reason:    args.Reason,
	})
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: b.ID, fields: map[string]string{
		"begin_date": b.BeginDate.String(),
		"end_date":   optionalDate(b.EndDate),
	}}, nil
}

func opFileIncident(ctx context.Context, h *Harness, decode func(any) error) (stepOutput, error) {
	var args struct {
		Reporter    int64      `yaml:"reporter"`
		Date        model.Date `yaml:"date"`
		Description string     `yaml:"description"`
		Involved    []int64    `yaml:"involved"`
	}
	if err := decode(&args); err != nil {
		return stepOutput{}, err
	}
	r, err := h.ledger.FileIncidentReport(ctx, model.IncidentReport{
		ReporterID:  args.Reporter,
		ReportDate:  args.Date,
		Description: args.Description,
		Involved:    args.Involved,
	})
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{id: r.ID, fields: map[string]string{
		"report_date": r.ReportDate.String(),
		"involved":    strconv.Itoa(len(r.Involved)),
	}}, nil
}

func personFields(p model.Person) map[string]string {
	return map[string]string{
		"first_name_or_nickname": p.FirstNameOrNickname,
		"pronouns":               p.Pronouns,
		"notes":                  p.Notes,
		"aliases":                strings.Join(p.Aliases, ","),
		"primary_email":          p.PrimaryEmail(),
	}
}

func membershipFields(m model.Membership) map[string]string {
	return map[string]string{
		"person_id":          strconv.FormatInt(m.PersonID, 10),
		"membership_type_id": strconv.FormatInt(m.MembershipTypeID, 10),
		"begin_date":         m.BeginDate.String(),
		"end_date":           optionalDate(m.EndDate),
	}
}

func eventFields(e model.Event) map[string]string {
	return map[string]string{
		"name":      e.Name,
		"starts_at": e.StartsAt.In(time.Local).Format(eventTimeLayout),
		"ends_at":   e.EndsAt.In(time.Local).Format(eventTimeLayout),
	}
}
