package fixture

import (
	"context"
	"fmt"

	"github.com/starford/rolodex/internal/apperr"
)

// Row is one stored contact. Tags are kept in their comma-joined wire form.
type Row struct {
	ID          int64
	FullName    string
	Email       string
	PhoneNumber string
	Tags        string
}

// List returns every contact in insertion order.
func (db *DB) List(ctx context.Context) ([]Row, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, full_name, email, phone_number, tags FROM contacts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("fixture: list contacts: %w", err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.FullName, &r.Email, &r.PhoneNumber, &r.Tags); err != nil {
			return nil, fmt.Errorf("fixture: scan contact: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Insert stores a new contact and returns its id.
func (db *DB) Insert(ctx context.Context, r Row) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO contacts (full_name, email, phone_number, tags) VALUES (?, ?, ?, ?)`,
		r.FullName, r.Email, r.PhoneNumber, r.Tags)
	if err != nil {
		return 0, fmt.Errorf("fixture: insert contact: %w", err)
	}
	return res.LastInsertId()
}

// Update replaces every field of the contact with r.ID.
func (db *DB) Update(ctx context.Context, r Row) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE contacts
		SET full_name = ?, email = ?, phone_number = ?, tags = ?
		WHERE id = ?`,
		r.FullName, r.Email, r.PhoneNumber, r.Tags, r.ID)
	if err != nil {
		return fmt.Errorf("fixture: update contact %d: %w", r.ID, err)
	}
	return expectOne(res.RowsAffected, r.ID)
}

// Delete removes the contact with id.
func (db *DB) Delete(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("fixture: delete contact %d: %w", id, err)
	}
	return expectOne(res.RowsAffected, id)
}

func expectOne(affected func() (int64, error), id int64) error {
	n, err := affected()
	if err != nil {
		return fmt.Errorf("fixture: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("fixture: contact %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}
