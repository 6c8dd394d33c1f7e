package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/billsplit/internal/models"
)

const personColumns = `SELECT id, bill_id, name, phone, payment_method, payment_details,
	is_contact, has_paid, paid_at, payment_method_used, created_at`

// insertPerson writes one bill participant row.
func insertPerson(ctx context.Context, tx *sql.Tx, p models.Person, billID string) error {
	var paidAt sql.NullInt64
	if p.PaidAt != nil {
		paidAt = sql.NullInt64{Int64: toMillis(*p.PaidAt), Valid: true}
	}
	var methodUsed sql.NullString
	if p.PaymentMethodUsed != nil {
		methodUsed = sql.NullString{String: *p.PaymentMethodUsed, Valid: true}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO people (id, bill_id, name, phone, payment_method, payment_details,
			is_contact, has_paid, paid_at, payment_method_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		billID,
		p.Name,
		p.Phone,
		p.PaymentMethod,
		p.PaymentDetails,
		p.IsContact,
		p.HasPaid,
		paidAt,
		methodUsed,
		toMillis(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}
	return nil
}

// queryPeople runs a query selecting personColumns and scans every row.
func (s *SQLiteStore) queryPeople(ctx context.Context, query string, args ...any) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		var (
			p          models.Person
			bill       sql.NullString
			paidAt     sql.NullInt64
			methodUsed sql.NullString
			createdAt  int64
		)
		if err := rows.Scan(
			&p.ID,
			&bill,
			&p.Name,
			&p.Phone,
			&p.PaymentMethod,
			&p.PaymentDetails,
			&p.IsContact,
			&p.HasPaid,
			&paidAt,
			&methodUsed,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		p.BillID = bill.String
		if paidAt.Valid {
			at := fromMillis(paidAt.Int64)
			p.PaidAt = &at
		}
		if methodUsed.Valid {
			m := methodUsed.String
			p.PaymentMethodUsed = &m
		}
		p.CreatedAt = fromMillis(createdAt)
		people = append(people, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}
	return people, nil
}

// SaveContact creates or replaces a contact row.
func (s *SQLiteStore) SaveContact(ctx context.Context, contact models.Person) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO people (id, bill_id, name, phone, payment_method, payment_details, is_contact, created_at)
		 VALUES (?, NULL, ?, ?, ?, ?, 1, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			payment_method = excluded.payment_method,
			payment_details = excluded.payment_details
		 WHERE people.is_contact = 1`,
		contact.ID,
		contact.Name,
		contact.Phone,
		contact.PaymentMethod,
		contact.PaymentDetails,
		toMillis(contact.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save contact: %w", err)
	}
	return nil
}

// ListContacts retrieves every contact in creation order.
func (s *SQLiteStore) ListContacts(ctx context.Context) ([]models.Person, error) {
	contacts, err := s.queryPeople(ctx,
		personColumns+" FROM people WHERE is_contact = 1 ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// DeleteContact removes a contact. Bill people copied from it are untouched.
func (s *SQLiteStore) DeleteContact(ctx context.Context, contactID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM people WHERE id = ? AND is_contact = 1", contactID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return requireAffected(res, "contact", contactID)
}
