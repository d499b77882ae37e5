package model

import (
	"fmt"
	"time"
)

// Person is an identity record. ID is the only unique attribute; names may
// collide. People are never deleted.
type Person struct {
	ID                  int64
	FirstNameOrNickname string
	Pronouns            string
	Notes               string

	Aliases []string

	// EmailAddresses is ordered primary first. Saving a person marks the
	// first address primary.
	EmailAddresses []string

	PhoneNumbers     []PhoneNumber
	OtherContactInfo []ContactInfo
}

// PrimaryEmail returns the person's primary email address, or "".
func (p Person) PrimaryEmail() string {
	if len(p.EmailAddresses) == 0 {
		return ""
	}
	return p.EmailAddresses[0]
}

// Normalize trims and NFC-normalizes the person's text fields and collections.
func (p *Person) Normalize() {
	p.FirstNameOrNickname = NormalizeText(p.FirstNameOrNickname)
	p.Pronouns = NormalizeText(p.Pronouns)
	p.Notes = NormalizeText(p.Notes)
	p.Aliases = normalizeAll(p.Aliases, NormalizeText)
	p.EmailAddresses = normalizeAll(p.EmailAddresses, NormalizeEmail)
	for i := range p.OtherContactInfo {
		p.OtherContactInfo[i].Value = NormalizeText(p.OtherContactInfo[i].Value)
	}
}

// PhoneNumber is split into its dialing parts so numbers can be searched by
// area code or prefix. The four parts are unique across the whole system.
type PhoneNumber struct {
	ID          int64
	PersonID    int64
	CountryCode string
	AreaCode    string
	Prefix      string
	LineNumber  string
}

// String formats the number as +C (AAA) PPP-LLLL.
func (n PhoneNumber) String() string {
	return fmt.Sprintf("+%s (%s) %s-%s", n.CountryCode, n.AreaCode, n.Prefix, n.LineNumber)
}

// ContactInfoType names a contact channel other than email or phone, such as
// a messaging handle.
type ContactInfoType struct {
	ID   int64
	Name string
}

// ContactInfoTypeUsage is a contact info type with the number of people
// records using it.
type ContactInfoTypeUsage struct {
	ContactInfoType
	UsageCount int64
}

// ContactCounts is the number of email address and phone number rows across
// all people.
type ContactCounts struct {
	EmailAddresses int64
	PhoneNumbers   int64
}

// ContactInfo is a tagged contact value: the type tag plus the value.
type ContactInfo struct {
	TypeID int64
	Value  string
}

// MembershipType is a named kind of membership.
type MembershipType struct {
	ID   int64
	Name string
}

// MembershipTypeSummary is a membership type with the number of memberships
// active on the summary date.
type MembershipTypeSummary struct {
	MembershipType
	ActiveCount int64
}

// PricingOption is one (duration, price) offer of a membership type.
type PricingOption struct {
	ID               int64
	MembershipTypeID int64
	LengthMonths     int
	Price            Money
}

// MembershipApproval records the date a person was approved for membership.
type MembershipApproval struct {
	ID           int64
	PersonID     int64
	ApprovalDate Date
}

// Membership is one membership held by a person. EndDate nil means the
// membership does not expire. EndDate only changes through a dues payment.
type Membership struct {
	ID               int64
	PersonID         int64
	MembershipTypeID int64
	BeginDate        Date
	EndDate          *Date
	Notes            string
}

// ActiveOn reports whether the membership covers date d.
func (m Membership) ActiveOn(d Date) bool {
	if d.Before(m.BeginDate) {
		return false
	}
	return m.EndDate == nil || !d.After(*m.EndDate)
}

// EventType is a kind of recurring event with optional scheduling defaults.
type EventType struct {
	ID                     int64
	Name                   string
	DefaultStartTime       *TimeOfDay
	DefaultDurationMinutes *int
}

// DoorFee is a fee for one membership type. A nil MembershipTypeID is the
// non-member fee.
type DoorFee struct {
	MembershipTypeID *int64
	Fee              Money
}

// Event is one occurrence of an event type.
type Event struct {
	ID          int64
	EventTypeID int64
	Name        string
	StartsAt    time.Time
	EndsAt      time.Time
}

// Date returns the calendar date the event starts on.
func (e Event) Date() Date { return DateOf(e.StartsAt) }

// FeeSource says where a resolved door fee came from.
type FeeSource string

const (
	FeeSourceEvent     FeeSource = "event"
	FeeSourceEventType FeeSource = "event_type"
)

// ResolvedFee is the outcome of door fee resolution.
type ResolvedFee struct {
	EventID          int64
	MembershipTypeID *int64
	Amount           Money
	Source           FeeSource
}

// Payment is money received from a person, split into one or more items.
type Payment struct {
	ID           int64
	PersonID     int64
	EventID      *int64
	ReceivedDate Date

	// Reference is a unique receipt reference generated when the payment is
	// recorded.
	Reference string
	Method    string
	Notes     string
	Items     []PaymentItem
}

// Total sums the payment's items.
func (p Payment) Total() (Money, error) {
	total := MustMoney("0")
	for _, item := range p.Items {
		var err error
		if total, err = total.Add(item.Amount); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// PaymentItem is a single charge within a payment. It is consumed by at most
// one dues payment or door-fee payment, never both.
type PaymentItem struct {
	ID        int64
	PaymentID int64
	Amount    Money
}

// Allocation says what, if anything, a payment item has been applied to.
type Allocation string

const (
	AllocationNone    Allocation = ""
	AllocationDues    Allocation = "dues"
	AllocationDoorFee Allocation = "door_fee"
)

// DuesPayment is the immutable audit record of one membership renewal.
// CoverageBeginDate is later than OriginalEndDate when the membership had
// lapsed; the days strictly between the two are not covered.
type DuesPayment struct {
	ID                int64
	PaymentItemID     int64
	MembershipID      int64
	PricingOptionID   int64
	OriginalEndDate   Date
	CoverageBeginDate Date
	NewEndDate        Date
}

// DoorFeePayment links a payment item to the event attendance it paid for.
type DoorFeePayment struct {
	ID               int64
	PaymentItemID    int64
	EventID          int64
	MembershipTypeID *int64
}

// Attendance records a person at an event, optionally as a member's guest.
type Attendance struct {
	ID              int64
	EventID         int64
	PersonID        int64
	GuestOfMemberID *int64
}

// RSVP records a person's pre-registration for an event.
type RSVP struct {
	ID              int64
	EventID         int64
	PersonID        int64
	ReceivedDate    Date
	GuestOfMemberID *int64
}

// FieldBehavior tags a guest info sheet field whose data seeds a new person.
type FieldBehavior string

const (
	BehaviorNone                FieldBehavior = ""
	BehaviorFirstNameOrNickname FieldBehavior = "first_name_or_nickname"
	BehaviorPronouns            FieldBehavior = "pronouns"
	BehaviorAlias               FieldBehavior = "alias"
	BehaviorEmailAddress        FieldBehavior = "email_address"
	BehaviorNotes               FieldBehavior = "notes"
)

// Projected reports whether fields with this behavior are copied onto the
// person created from a sheet.
func (b FieldBehavior) Projected() bool {
	switch b {
	case BehaviorFirstNameOrNickname, BehaviorPronouns, BehaviorAlias,
		BehaviorEmailAddress, BehaviorNotes:
		return true
	}
	return false
}

// GuestInfoSheet is an intake form completed by a first-time guest. PersonID
// is set once the sheet has been projected into a Person.
type GuestInfoSheet struct {
	ID             int64
	PersonID       *int64
	EventID        *int64
	CompletionDate Date
	Fields         []GuestInfoSheetField
}

// GuestInfoSheetField is one answered field. Name, Behavior and Position are
// each unique within a sheet.
type GuestInfoSheetField struct {
	ID       int64
	SheetID  int64
	Name     string
	Behavior FieldBehavior
	Position int
	Data     string
}

// DefaultGuestSheetField is a template field copied onto new sheets.
type DefaultGuestSheetField struct {
	ID       int64
	Name     string
	Behavior FieldBehavior
	Position int
}

// LegalDocumentType names a kind of signed document, such as a waiver.
type LegalDocumentType struct {
	ID   int64
	Name string
}

// LegalDocument is a document of a given type signed by a person.
type LegalDocument struct {
	ID         int64
	PersonID   int64
	TypeID     int64
	SignedDate Date
	Notes      string
}

// IncidentReport is filed by a reporter about the involved people. The
// reporter is never one of the involved.
type IncidentReport struct {
	ID          int64
	ReporterID  int64
	ReportDate  Date
	Description string
	Involved    []int64
}

// Warning is a recorded conduct warning.
type Warning struct {
	ID         int64
	PersonID   int64
	IssuedDate Date
	Reason     string
}

// Sanction restricts a person's participation between two dates inclusive.
type Sanction struct {
	ID        int64
	PersonID  int64
	BeginDate Date
	EndDate   Date
	Reason    string
}

// Ban restricts a person's participation from BeginDate; a nil EndDate is
// permanent.
type Ban struct {
	ID        int64
	PersonID  int64
	BeginDate Date
	EndDate   *Date
	Reason    string
}
