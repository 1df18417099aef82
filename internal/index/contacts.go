package index

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/eldrid/munin/internal/apperr"
	"github.com/eldrid/munin/internal/models"
)

// ListContacts returns every contact, ordered by last then first name.
func (db *DB) ListContacts() ([]models.Contact, error) {
	rows, err := db.conn.Query(`SELECT id, first_name, last_name FROM contacts ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("index: list contacts: %w", err)
	}
	defer rows.Close()

	var out []models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetContact returns one contact by id, or apperr.ErrNotFound.
func (db *DB) GetContact(id string) (*models.Contact, error) {
	var c models.Contact
	err := db.conn.QueryRow(`SELECT id, first_name, last_name FROM contacts WHERE id = ?`, id).
		Scan(&c.ID, &c.FirstName, &c.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get contact: %w", err)
	}
	return &c, nil
}

// UpsertContact inserts or updates a contact.
func (db *DB) UpsertContact(c models.Contact) error {
	_, err := db.conn.Exec(`
		INSERT INTO contacts (id, first_name, last_name)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name  = excluded.last_name
	`, c.ID, c.FirstName, c.LastName)
	if err != nil {
		return fmt.Errorf("index: upsert contact: %w", err)
	}
	return nil
}

// DeleteContact removes a contact by id.
func (db *DB) DeleteContact(id string) error {
	res, err := db.conn.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("index: delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
