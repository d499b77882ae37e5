package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rksledger/internal/model"
)

// CreatePerson inserts a person and their contact collections. The first
// email address is marked primary.
func (s *Store) CreatePerson(ctx context.Context, p model.Person) (int64, error) {
	var id int64
	err := s.InTx(ctx, func(ctx context.Context) error {
		var err error
		id, err = s.insert(ctx, "create person", `
			INSERT INTO people (first_name_or_nickname, pronouns, notes)
			VALUES (?, ?, ?)
		`, p.FirstNameOrNickname, nullString(p.Pronouns), nullString(p.Notes))
		if err != nil {
			return err
		}
		return s.writeCollections(ctx, id, p)
	})
	return id, err
}

// UpdatePerson overwrites a person's fields and replaces their aliases, email
// addresses and other contact info in full. Phone numbers are left alone;
// they are added with AddPhoneNumber.
func (s *Store) UpdatePerson(ctx context.Context, p model.Person) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		n, err := s.exec(ctx, "update person", `
			UPDATE people
			SET first_name_or_nickname = ?, pronouns = ?, notes = ?
			WHERE id = ?
		`, p.FirstNameOrNickname, nullString(p.Pronouns), nullString(p.Notes), p.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return model.NewError(model.ErrCodeNotFound, "person %d not found", p.ID).WithDetail("person_id", p.ID)
		}
		for _, table := range []string{"people_aliases", "people_email_addresses", "people_other_contact_info"} {
			// Table names come from the fixed list above.
			if _, err := s.exec(ctx, "clear "+table, "DELETE FROM "+table+" WHERE person_id = ?", p.ID); err != nil {
				return err
			}
		}
		return s.writeCollections(ctx, p.ID, p)
	})
}

func (s *Store) writeCollections(ctx context.Context, personID int64, p model.Person) error {
	for _, alias := range p.Aliases {
		if _, err := s.insert(ctx, "add alias", `
			INSERT INTO people_aliases (person_id, alias) VALUES (?, ?)
		`, personID, alias); err != nil {
			return err
		}
	}
	for i, email := range p.EmailAddresses {
		var primary any
		if i == 0 {
			primary = 1
		}
		if _, err := s.insert(ctx, "add email address", `
			INSERT INTO people_email_addresses (person_id, email_address, primary_email)
			VALUES (?, ?, ?)
		`, personID, email, primary); err != nil {
			return err
		}
	}
	for _, info := range p.OtherContactInfo {
		if _, err := s.insert(ctx, "add contact info", `
			INSERT INTO people_other_contact_info (person_id, other_contact_info_type_id, contact_info)
			VALUES (?, ?, ?)
		`, personID, info.TypeID, info.Value); err != nil {
			return err
		}
	}
	for _, phone := range p.PhoneNumbers {
		phone.PersonID = personID
		if _, err := s.AddPhoneNumber(ctx, phone); err != nil {
			return err
		}
	}
	return nil
}

// AddPhoneNumber attaches a phone number to a person. The four parts are
// unique across all people.
func (s *Store) AddPhoneNumber(ctx context.Context, n model.PhoneNumber) (int64, error) {
	return s.insert(ctx, "add phone number", `
		INSERT INTO people_phone_numbers (person_id, country_code, area_code, prefix, line_number)
		VALUES (?, ?, ?, ?, ?)
	`, n.PersonID, n.CountryCode, n.AreaCode, n.Prefix, n.LineNumber)
}

// GetPerson returns a person with all contact collections loaded.
func (s *Store) GetPerson(ctx context.Context, id int64) (model.Person, error) {
	var (
		p        model.Person
		pronouns sql.NullString
		notes    sql.NullString
	)
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, first_name_or_nickname, pronouns, notes
		FROM people
		WHERE id = ?
	`, id).Scan(&p.ID, &p.FirstNameOrNickname, &pronouns, &notes)
	if err != nil {
		return model.Person{}, notFound(err, "person", id)
	}
	p.Pronouns = pronouns.String
	p.Notes = notes.String

	if p.Aliases, err = s.queryStrings(ctx, `
		SELECT alias FROM people_aliases WHERE person_id = ? ORDER BY id
	`, id); err != nil {
		return model.Person{}, err
	}
	if p.EmailAddresses, err = s.queryStrings(ctx, `
		SELECT email_address FROM people_email_addresses
		WHERE person_id = ?
		ORDER BY primary_email = 1 DESC, id
	`, id); err != nil {
		return model.Person{}, err
	}
	if p.PhoneNumbers, err = s.phoneNumbers(ctx, id); err != nil {
		return model.Person{}, err
	}
	if p.OtherContactInfo, err = s.otherContactInfo(ctx, id); err != nil {
		return model.Person{}, err
	}
	return p, nil
}

// PersonExists reports whether a person row exists.
func (s *Store) PersonExists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM people WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, translate("check person", err)
	}
	return n > 0, nil
}

// ListPeople returns every person with only their primary email loaded.
func (s *Store) ListPeople(ctx context.Context) ([]model.Person, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT p.id, p.first_name_or_nickname, p.pronouns, p.notes, e.email_address
		FROM people p
		LEFT JOIN people_email_addresses e
		  ON e.person_id = p.id AND e.primary_email = 1
		ORDER BY p.id
	`)
	if err != nil {
		return nil, translate("list people", err)
	}
	defer rows.Close()

	people := []model.Person{}
	for rows.Next() {
		var (
			p                      model.Person
			pronouns, notes, email sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.FirstNameOrNickname, &pronouns, &notes, &email); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		p.Pronouns = pronouns.String
		p.Notes = notes.String
		if email.Valid {
			p.EmailAddresses = []string{email.String}
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	return people, nil
}

func (s *Store) phoneNumbers(ctx context.Context, personID int64) ([]model.PhoneNumber, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, person_id, country_code, area_code, prefix, line_number
		FROM people_phone_numbers
		WHERE person_id = ?
		ORDER BY id
	`, personID)
	if err != nil {
		return nil, translate("query phone numbers", err)
	}
	defer rows.Close()

	var numbers []model.PhoneNumber
	for rows.Next() {
		var n model.PhoneNumber
		if err := rows.Scan(&n.ID, &n.PersonID, &n.CountryCode, &n.AreaCode, &n.Prefix, &n.LineNumber); err != nil {
			return nil, fmt.Errorf("scan phone number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (s *Store) otherContactInfo(ctx context.Context, personID int64) ([]model.ContactInfo, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT other_contact_info_type_id, contact_info
		FROM people_other_contact_info
		WHERE person_id = ?
		ORDER BY id
	`, personID)
	if err != nil {
		return nil, translate("query contact info", err)
	}
	defer rows.Close()

	var infos []model.ContactInfo
	for rows.Next() {
		var info model.ContactInfo
		if err := rows.Scan(&info.TypeID, &info.Value); err != nil {
			return nil, fmt.Errorf("scan contact info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (s *Store) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate("query", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CreateContactInfoType adds a named contact channel type.
func (s *Store) CreateContactInfoType(ctx context.Context, name string) (int64, error) {
	return s.insert(ctx, "create contact info type", `
		INSERT INTO other_contact_info_types (name) VALUES (?)
	`, name)
}

// ListContactInfoTypeUsage returns every contact info type with the number
// of contact info rows that use it.
func (s *Store) ListContactInfoTypeUsage(ctx context.Context) ([]model.ContactInfoTypeUsage, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT t.id, t.name, COUNT(i.id)
		FROM other_contact_info_types t
		LEFT JOIN people_other_contact_info i ON i.other_contact_info_type_id = t.id
		GROUP BY t.id
		ORDER BY t.id
	`)
	if err != nil {
		return nil, translate("list contact info types", err)
	}
	defer rows.Close()

	usage := []model.ContactInfoTypeUsage{}
	for rows.Next() {
		var u model.ContactInfoTypeUsage
		if err := rows.Scan(&u.ID, &u.Name, &u.UsageCount); err != nil {
			return nil, fmt.Errorf("scan contact info type: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// CountEmailAddresses returns the number of email addresses on file.
func (s *Store) CountEmailAddresses(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM people_email_addresses`).Scan(&n); err != nil {
		return 0, translate("count email addresses", err)
	}
	return n, nil
}

// CountPhoneNumbers returns the number of phone numbers on file.
func (s *Store) CountPhoneNumbers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM people_phone_numbers`).Scan(&n); err != nil {
		return 0, translate("count phone numbers", err)
	}
	return n, nil
}
