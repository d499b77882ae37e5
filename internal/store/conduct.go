package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rksledger/internal/model"
)

func (s *Store) CreateLegalDocumentType(ctx context.Context, name string) (int64, error) {
	return s.insert(ctx, "create legal document type", `
		INSERT INTO legal_document_types (name) VALUES (?)
	`, name)
}

func (s *Store) CreateLegalDocument(ctx context.Context, d model.LegalDocument) (int64, error) {
	return s.insert(ctx, "create legal document", `
		INSERT INTO legal_documents (person_id, legal_document_type_id, signed_date, notes)
		VALUES (?, ?, ?, ?)
	`, d.PersonID, d.TypeID, d.SignedDate, nullString(d.Notes))
}

// ListLegalDocuments returns the documents a person has signed, newest first.
func (s *Store) ListLegalDocuments(ctx context.Context, personID int64) ([]model.LegalDocument, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, person_id, legal_document_type_id, signed_date, notes
		FROM legal_documents
		WHERE person_id = ?
		ORDER BY signed_date DESC, id DESC
	`, personID)
	if err != nil {
		return nil, translate("list legal documents", err)
	}
	defer rows.Close()

	docs := []model.LegalDocument{}
	for rows.Next() {
		var (
			d     model.LegalDocument
			notes sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.PersonID, &d.TypeID, &d.SignedDate, &notes); err != nil {
			return nil, fmt.Errorf("scan legal document: %w", err)
		}
		d.Notes = notes.String
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// CreateIncidentReport inserts a report and its involved people together.
func (s *Store) CreateIncidentReport(ctx context.Context, r model.IncidentReport) (int64, error) {
	var id int64
	err := s.InTx(ctx, func(ctx context.Context) error {
		var err error
		id, err = s.insert(ctx, "create incident report", `
			INSERT INTO incident_reports (reporter_person_id, report_date, description)
			VALUES (?, ?, ?)
		`, r.ReporterID, r.ReportDate, r.Description)
		if err != nil {
			return err
		}
		for _, personID := range r.Involved {
			if _, err := s.insert(ctx, "add incident involvement", `
				INSERT INTO incident_report_involvements (incident_report_id, person_id)
				VALUES (?, ?)
			`, id, personID); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

func (s *Store) GetIncidentReport(ctx context.Context, id int64) (model.IncidentReport, error) {
	var r model.IncidentReport
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, reporter_person_id, report_date, description
		FROM incident_reports
		WHERE id = ?
	`, id).Scan(&r.ID, &r.ReporterID, &r.ReportDate, &r.Description)
	if err != nil {
		return model.IncidentReport{}, notFound(err, "incident_report", id)
	}

	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT person_id FROM incident_report_involvements
		WHERE incident_report_id = ?
		ORDER BY person_id
	`, id)
	if err != nil {
		return model.IncidentReport{}, translate("query incident involvements", err)
	}
	defer rows.Close()
	for rows.Next() {
		var personID int64
		if err := rows.Scan(&personID); err != nil {
			return model.IncidentReport{}, fmt.Errorf("scan incident involvement: %w", err)
		}
		r.Involved = append(r.Involved, personID)
	}
	return r, rows.Err()
}

func (s *Store) CreateWarning(ctx context.Context, w model.Warning) (int64, error) {
	return s.insert(ctx, "create warning", `
		INSERT INTO warnings (person_id, issued_date, reason) VALUES (?, ?, ?)
	`, w.PersonID, w.IssuedDate, w.Reason)
}

func (s *Store) CreateSanction(ctx context.Context, sn model.Sanction) (int64, error) {
	return s.insert(ctx, "create sanction", `
		INSERT INTO sanctions (person_id, begin_date, end_date, reason) VALUES (?, ?, ?, ?)
	`, sn.PersonID, sn.BeginDate, sn.EndDate, sn.Reason)
}

func (s *Store) CreateBan(ctx context.Context, b model.Ban) (int64, error) {
	return s.insert(ctx, "create ban", `
		INSERT INTO bans (person_id, begin_date, end_date, reason) VALUES (?, ?, ?, ?)
	`, b.PersonID, b.BeginDate, b.EndDate, b.Reason)
}

// ConductRecord gathers a person's warnings, sanctions and bans.
type ConductRecord struct {
	Warnings  []model.Warning
	Sanctions []model.Sanction
	Bans      []model.Ban
}

// ConductHistory returns every conduct record for a person, oldest first.
func (s *Store) ConductHistory(ctx context.Context, personID int64) (ConductRecord, error) {
	rec := ConductRecord{
		Warnings:  []model.Warning{},
		Sanctions: []model.Sanction{},
		Bans:      []model.Ban{},
	}
	q := s.conn(ctx)

	rows, err := q.QueryContext(ctx, `
		SELECT id, person_id, issued_date, reason FROM warnings
		WHERE person_id = ? ORDER BY issued_date, id
	`, personID)
	if err != nil {
		return ConductRecord{}, translate("list warnings", err)
	}
	for rows.Next() {
		var w model.Warning
		if err := rows.Scan(&w.ID, &w.PersonID, &w.IssuedDate, &w.Reason); err != nil {
			rows.Close()
			return ConductRecord{}, fmt.Errorf("scan warning: %w", err)
		}
		rec.Warnings = append(rec.Warnings, w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ConductRecord{}, err
	}

	rows, err = q.QueryContext(ctx, `
		SELECT id, person_id, begin_date, end_date, reason FROM sanctions
		WHERE person_id = ? ORDER BY begin_date, id
	`, personID)
	if err != nil {
		return ConductRecord{}, translate("list sanctions", err)
	}
	for rows.Next() {
		var sn model.Sanction
		if err := rows.Scan(&sn.ID, &sn.PersonID, &sn.BeginDate, &sn.EndDate, &sn.Reason); err != nil {
			rows.Close()
			return ConductRecord{}, fmt.Errorf("scan sanction: %w", err)
		}
		rec.Sanctions = append(rec.Sanctions, sn)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ConductRecord{}, err
	}

	rows, err = q.QueryContext(ctx, `
		SELECT id, person_id, begin_date, end_date, reason FROM bans
		WHERE person_id = ? ORDER BY begin_date, id
	`, personID)
	if err != nil {
		return ConductRecord{}, translate("list bans", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b model.Ban
		if err := rows.Scan(&b.ID, &b.PersonID, &b.BeginDate, &b.EndDate, &b.Reason); err != nil {
			return ConductRecord{}, fmt.Errorf("scan ban: %w", err)
		}
		rec.Bans = append(rec.Bans, b)
	}
	return rec, rows.Err()
}
