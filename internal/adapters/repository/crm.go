package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/scorecard/internal/domain/model"
)

const leadColumns = `id, first_name, last_name, email, company, phone, source, status, assigned_to, band, created_at`

// CreateLead inserts a lead. A duplicate id is ErrConflict.
func (s *Store) CreateLead(ctx context.Context, l model.Lead) error { //nolint:gocritic // hugeParam
	_, err := s.exec(ctx, "create_lead",
		`INSERT INTO leads (`+leadColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.FirstName, l.LastName, l.Email, l.Company, l.Phone, l.Source, l.Status, l.AssignedTo, l.Band,
		millis(l.CreatedAt))
	return err
}

// GetLead returns the lead with id or ErrNotFound.
func (s *Store) GetLead(ctx context.Context, id string) (model.Lead, error) {
	defer s.observeQuery("get_lead", time.Now())
	row := s.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	var (
		l       model.Lead
		created int64
	)
	err := row.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Company, &l.Phone, &l.Source, &l.Status,
		&l.AssignedTo, &l.Band, &created)
	if err != nil {
		return model.Lead{}, fmt.Errorf("get lead %s: %w", id, translate(err))
	}
	l.CreatedAt = fromMillis(created)
	return l, nil
}

// UpdateLeadBand stores the lead temperature derived from its score.
func (s *Store) UpdateLeadBand(ctx context.Context, id, band string) error {
	res, err := s.exec(ctx, "update_lead_band", `UPDATE leads SET band = ? WHERE id = ?`, band, id)
	if err != nil {
		return err
	}
	return requireRow(res, "update lead band "+id)
}

const contactColumns = `id, first_name, last_name, email, company, phone, status, type, created_at`

// CreateContact inserts a contact.
func (s *Store) CreateContact(ctx context.Context, c model.Contact) error { //nolint:gocritic // hugeParam
	_, err := s.exec(ctx, "create_contact",
		`INSERT INTO contacts (`+contactColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Company, c.Phone, c.Status, c.Type, millis(c.CreatedAt))
	return err
}

// GetContact returns the contact with id or ErrNotFound.
func (s *Store) GetContact(ctx context.Context, id string) (model.Contact, error) {
	defer s.observeQuery("get_contact", time.Now())
	return s.getContact(ctx, id)
}

func (s *Store) getContact(ctx context.Context, id string) (model.Contact, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	var (
		c       model.Contact
		created int64
	)
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Company, &c.Phone, &c.Status, &c.Type, &created)
	if err != nil {
		return model.Contact{}, fmt.Errorf("get contact %s: %w", id, translate(err))
	}
	c.CreatedAt = fromMillis(created)
	return c, nil
}

// AddInteraction records an interaction against an existing contact.
func (s *Store) AddInteraction(ctx context.Context, in model.Interaction) error { //nolint:gocritic // hugeParam
	if _, err := s.getContact(ctx, in.ContactID); err != nil {
		return err
	}
	_, err := s.exec(ctx, "add_interaction",
		`INSERT INTO interactions (id, contact_id, type, notes, created_at) VALUES (?, ?, ?, ?, ?)`,
		in.ID, in.ContactID, in.Type, in.Notes, millis(in.CreatedAt))
	return err
}

// ContactSnapshot loads a contact together with its deal values and
// interaction count.
func (s *Store) ContactSnapshot(ctx context.Context, id string) (model.ContactSnapshot, error) {
	defer s.observeQuery("contact_snapshot", time.Now())
	c, err := s.getContact(ctx, id)
	if err != nil {
		return model.ContactSnapshot{}, err
	}
	snap := model.ContactSnapshot{Contact: c}

	rows, err := s.db.QueryContext(ctx, `SELECT value FROM deals WHERE contact_id = ? ORDER BY created_at`, id)
	if err != nil {
		return model.ContactSnapshot{}, fmt.Errorf("contact deals %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return model.ContactSnapshot{}, fmt.Errorf("scan deal value: %w", err)
		}
		snap.DealValues = append(snap.DealValues, v)
	}
	if err := rows.Err(); err != nil {
		return model.ContactSnapshot{}, fmt.Errorf("contact deals %s: %w", id, err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions WHERE contact_id = ?`, id).
		Scan(&snap.Interactions)
	if err != nil {
		return model.ContactSnapshot{}, fmt.Errorf("count interactions %s: %w", id, err)
	}
	return snap, nil
}
