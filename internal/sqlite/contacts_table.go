package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// insertContacts writes contacts with positions 0..n-1.
func insertContacts(ctx context.Context, tx execer, contacts []types.Contact) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := "INSERT INTO contacts (" + contactColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	for i, c := range contacts {
		_, err := tx.ExecContext(ctx, query,
			c.ID, i, c.FirstName, c.LastName, c.Phone, c.Email,
			nullString(c.Company), nullString(c.Address), nullString(c.Birthday),
			nullString(c.Notes), nullString(c.Avatar),
			boolToInt(c.Favorite), now,
		)
		if err != nil {
			return fmt.Errorf("inserting contact %s: %w", c.ID, err)
		}
	}
	return nil
}

// selectContacts reads every contact ordered by position.
func selectContacts(ctx context.Context, db queryer) ([]types.Contact, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+contactColumns+" FROM contacts ORDER BY position ASC")
	if err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}
	defer rows.Close()

	contacts := []types.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contacts: %w", err)
	}
	return contacts, nil
}

func scanContact(rows *sql.Rows) (types.Contact, error) {
	var (
		c                                         types.Contact
		position                                  int
		company, address, birthday, notes, avatar sql.NullString
		favorite                                  int
		updatedAt                                 string
	)
	err := rows.Scan(
		&c.ID, &position, &c.FirstName, &c.LastName, &c.Phone, &c.Email,
		&company, &address, &birthday, &notes, &avatar,
		&favorite, &updatedAt,
	)
	if err != nil {
		return types.Contact{}, fmt.Errorf("scanning contact: %w", err)
	}
	c.Company = stringPtr(company)
	c.Address = stringPtr(address)
	c.Birthday = stringPtr(birthday)
	c.Notes = stringPtr(notes)
	c.Avatar = stringPtr(avatar)
	c.Favorite = favorite != 0
	return c, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
