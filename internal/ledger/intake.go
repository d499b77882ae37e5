package ledger

import (
	"context"

	"github.com/roach88/rksledger/internal/model"
)

// GuestSheetRequest is a completed guest info sheet.
type GuestSheetRequest struct {
	EventID *int64

	// CompletionDate defaults to today.
	CompletionDate model.Date

	// Fields with a zero Position are numbered by their order in the slice.
	Fields []model.GuestInfoSheetField
}

// GuestSheetTemplate returns the default fields new sheets are printed with.
func (l *Ledger) GuestSheetTemplate(ctx context.Context) ([]model.DefaultGuestSheetField, error) {
	return l.store.ListDefaultGuestSheetFields(ctx)
}

// SetDefaultGuestSheetField adds a field to the guest sheet template.
func (l *Ledger) SetDefaultGuestSheetField(ctx context.Context, f model.DefaultGuestSheetField) (int64, error) {
	f.Name = model.NormalizeText(f.Name)
	if f.Name == "" {
		return 0, invalidArgument("field name is required")
	}
	return l.store.SetDefaultGuestSheetField(ctx, f)
}

// SubmitGuestSheet stores a completed sheet without projecting it.
func (l *Ledger) SubmitGuestSheet(ctx context.Context, req GuestSheetRequest) (model.GuestInfoSheet, error) {
	sheet := model.GuestInfoSheet{
		EventID:        req.EventID,
		CompletionDate: req.CompletionDate,
	}
	if sheet.CompletionDate.IsZero() {
		sheet.CompletionDate = l.Today()
	}
	for i, f := range req.Fields {
		f.Name = model.NormalizeText(f.Name)
		f.Data = model.NormalizeText(f.Data)
		if f.Name == "" {
			return model.GuestInfoSheet{}, invalidArgument("field %d has no name", i+1)
		}
		if f.Position == 0 {
			f.Position = i + 1
		}
		sheet.Fields = append(sheet.Fields, f)
	}

	sheet, err := l.store.CreateGuestSheet(ctx, sheet)
	if err != nil {
		return model.GuestInfoSheet{}, err
	}
	l.log.Info("guest sheet submitted", "guest_info_sheet_id", sheet.ID, "fields", len(sheet.Fields))
	return sheet, nil
}

// ProjectGuestSheet creates a person from a sheet's tagged fields and links
// the sheet to them, in one transaction.
//
// Fields tagged first_name_or_nickname, pronouns, alias, email_address or
// notes seed the matching person attribute. Untagged fields and fields with
// other tags stay on the sheet only.
//
// Errors: SHEET_ALREADY_PROJECTED if the sheet already references a person,
// INVALID_ARGUMENT if no field supplies a name.
func (l *Ledger) ProjectGuestSheet(ctx context.Context, sheetID int64) (model.Person, error) {
	var person model.Person
	err := l.store.InTx(ctx, func(ctx context.Context) error {
		sheet, err := l.store.GetGuestSheet(ctx, sheetID)
		if err != nil {
			return err
		}
		if sheet.PersonID != nil {
			return alreadyProjected(sheet.ID, *sheet.PersonID)
		}

		person = personFromSheet(sheet)
		if person.FirstNameOrNickname == "" {
			return invalidArgument("guest info sheet %d has no first name or nickname", sheet.ID)
		}
		if person.ID, err = l.store.CreatePerson(ctx, person); err != nil {
			return err
		}

		linked, err := l.store.LinkGuestSheet(ctx, sheet.ID, person.ID)
		if err != nil {
			return err
		}
		if !linked {
			return alreadyProjected(sheet.ID, 0)
		}
		return nil
	})
	if err != nil {
		return model.Person{}, err
	}

	l.log.Info("guest sheet projected", "guest_info_sheet_id", sheetID, "person_id", person.ID)
	return person, nil
}

func personFromSheet(sheet model.GuestInfoSheet) model.Person {
	var p model.Person
	for _, f := range sheet.Fields {
		if !f.Behavior.Projected() || f.Data == "" {
			continue
		}
		switch f.Behavior {
		case model.BehaviorFirstNameOrNickname:
			p.FirstNameOrNickname = f.Data
		case model.BehaviorPronouns:
			p.Pronouns = f.Data
		case model.BehaviorAlias:
			p.Aliases = append(p.Aliases, f.Data)
		case model.BehaviorEmailAddress:
			p.EmailAddresses = append(p.EmailAddresses, f.Data)
		case model.BehaviorNotes:
			p.Notes = f.Data
		}
	}
	p.Normalize()
	return p
}

func alreadyProjected(sheetID, personID int64) error {
	e := model.NewError(model.ErrCodeSheetAlreadyProjected,
		"guest info sheet %d already references a person", sheetID).
		WithDetail("guest_info_sheet_id", sheetID)
	if personID != 0 {
		e = e.WithDetail("person_id", personID)
	}
	return e
}
