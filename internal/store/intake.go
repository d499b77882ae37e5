package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rksledger/internal/model"
)

// CreateGuestSheet inserts a guest info sheet and its fields in one
// transaction and returns the sheet with ids filled in.
func (s *Store) CreateGuestSheet(ctx context.Context, sheet model.GuestInfoSheet) (model.GuestInfoSheet, error) {
	err := s.InTx(ctx, func(ctx context.Context) error {
		var err error
		sheet.ID, err = s.insert(ctx, "create guest info sheet", `
			INSERT INTO guest_info_sheets (person_id, event_id, completion_date)
			VALUES (?, ?, ?)
		`, sheet.PersonID, sheet.EventID, sheet.CompletionDate)
		if err != nil {
			return err
		}
		for i := range sheet.Fields {
			f := &sheet.Fields[i]
			f.SheetID = sheet.ID
			f.ID, err = s.insert(ctx, "create guest info sheet field", `
				INSERT INTO guest_info_sheet_fields
				(guest_info_sheet_id, field_name, field_behavior, field_position, field_data)
				VALUES (?, ?, ?, ?, ?)
			`, sheet.ID, f.Name, nullString(string(f.Behavior)), f.Position, nullString(f.Data))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return model.GuestInfoSheet{}, err
	}
	return sheet, nil
}

// GetGuestSheet returns a sheet with its fields ordered by position.
func (s *Store) GetGuestSheet(ctx context.Context, id int64) (model.GuestInfoSheet, error) {
	var sheet model.GuestInfoSheet
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, person_id, event_id, completion_date
		FROM guest_info_sheets
		WHERE id = ?
	`, id).Scan(&sheet.ID, &sheet.PersonID, &sheet.EventID, &sheet.CompletionDate)
	if err != nil {
		return model.GuestInfoSheet{}, notFound(err, "guest_info_sheet", id)
	}

	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, guest_info_sheet_id, field_name, field_behavior, field_position, field_data
		FROM guest_info_sheet_fields
		WHERE guest_info_sheet_id = ?
		ORDER BY field_position
	`, id)
	if err != nil {
		return model.GuestInfoSheet{}, translate("query guest info sheet fields", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			f              model.GuestInfoSheetField
			behavior, data sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.SheetID, &f.Name, &behavior, &f.Position, &data); err != nil {
			return model.GuestInfoSheet{}, fmt.Errorf("scan guest info sheet field: %w", err)
		}
		f.Behavior = model.FieldBehavior(behavior.String)
		f.Data = data.String
		sheet.Fields = append(sheet.Fields, f)
	}
	return sheet, rows.Err()
}

// LinkGuestSheet points an unprojected sheet at the person created from it.
// linked is false when the sheet already references a person.
func (s *Store) LinkGuestSheet(ctx context.Context, sheetID, personID int64) (linked bool, err error) {
	n, err := s.exec(ctx, "link guest info sheet", `
		UPDATE guest_info_sheets SET person_id = ?
		WHERE id = ? AND person_id IS NULL
	`, personID, sheetID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetDefaultGuestSheetField adds a field to the template copied onto new
// sheets. Name, behavior and position are each unique across the template.
func (s *Store) SetDefaultGuestSheetField(ctx context.Context, f model.DefaultGuestSheetField) (int64, error) {
	return s.insert(ctx, "create default guest sheet field", `
		INSERT INTO default_guest_info_sheet_fields (field_name, field_behavior, field_position)
		VALUES (?, ?, ?)
	`, f.Name, nullString(string(f.Behavior)), f.Position)
}

// ListDefaultGuestSheetFields returns the template ordered by position.
func (s *Store) ListDefaultGuestSheetFields(ctx context.Context) ([]model.DefaultGuestSheetField, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, field_name, field_behavior, field_position
		FROM default_guest_info_sheet_fields
		ORDER BY field_position
	`)
	if err != nil {
		return nil, translate("list default guest sheet fields", err)
	}
	defer rows.Close()

	fields := []model.DefaultGuestSheetField{}
	for rows.Next() {
		var (
			f        model.DefaultGuestSheetField
			behavior sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.Name, &behavior, &f.Position); err != nil {
			return nil, fmt.Errorf("scan default guest sheet field: %w", err)
		}
		f.Behavior = model.FieldBehavior(behavior.String)
		fields = append(fields, f)
	}
	return fields, rows.Err()
}
