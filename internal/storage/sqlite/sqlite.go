// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Foreign keys are per connection, so enable them in the DSN for every
	// connection the pool opens.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveBill upserts the bill row and rewrites its items, people and splits
// inside one transaction.
func (s *SQLiteStore) SaveBill(ctx context.Context, snap *models.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	b := snap.Bill
	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, name, date, notes, discount_percentage, service_charge_percentage,
			tax_percentage, currency, payee_name, payee_method, payee_details, archived, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			date = excluded.date,
			notes = excluded.notes,
			discount_percentage = excluded.discount_percentage,
			service_charge_percentage = excluded.service_charge_percentage,
			tax_percentage = excluded.tax_percentage,
			currency = excluded.currency,
			payee_name = excluded.payee_name,
			payee_method = excluded.payee_method,
			payee_details = excluded.payee_details,
			archived = excluded.archived,
			updated_at = excluded.updated_at`,
		b.ID, b.Name, toMillis(b.Date), b.Notes, b.DiscountPercentage, b.ServiceChargePercentage,
		b.TaxPercentage, b.Currency, b.PayeeName, b.PayeeMethod, b.PayeeDetails, b.Archived,
		toMillis(b.CreatedAt), toMillis(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert bill: %w", err)
	}

	// Children are rewritten wholesale; deleting items and people cascades to splits.
	if _, err := tx.ExecContext(ctx, "DELETE FROM bill_items WHERE bill_id = ?", b.ID); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM people WHERE bill_id = ?", b.ID); err != nil {
		return fmt.Errorf("failed to clear people: %w", err)
	}

	for _, item := range snap.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO bill_items (id, bill_id, name, amount, quantity, notes, sort_order, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, b.ID, item.Name, item.Amount, item.Quantity, item.Notes, item.SortOrder, toMillis(item.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	for _, p := range snap.People {
		if err := insertPerson(ctx, tx, p, b.ID); err != nil {
			return err
		}
	}

	for _, split := range snap.Splits {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO item_splits (id, item_id, person_id, amount, percentage, is_manual_amount, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			split.ID, split.ItemID, split.PersonID, split.Amount, split.Percentage, split.IsManualAmount,
			toMillis(split.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ID, including its items, people and splits.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	b := &snap.Bill
	var date, createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, date, notes, discount_percentage, service_charge_percentage, tax_percentage,
			currency, payee_name, payee_method, payee_details, archived, created_at, updated_at
		 FROM bills WHERE id = ?`,
		billID,
	).Scan(&b.ID, &b.Name, &date, &b.Notes, &b.DiscountPercentage, &b.ServiceChargePercentage,
		&b.TaxPercentage, &b.Currency, &b.PayeeName, &b.PayeeMethod, &b.PayeeDetails, &b.Archived,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	b.Date = fromMillis(date)
	b.CreatedAt = fromMillis(createdAt)
	b.UpdatedAt = fromMillis(updatedAt)

	if snap.Items, err = s.billItems(ctx, billID); err != nil {
		return nil, err
	}
	if snap.People, err = s.queryPeople(ctx,
		personColumns+" FROM people WHERE bill_id = ? ORDER BY rowid", billID); err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	if snap.Splits, err = s.billSplits(ctx, billID); err != nil {
		return nil, err
	}
	return snap, nil
}

// ListBills retrieves all bills in creation order.
func (s *SQLiteStore) ListBills(ctx context.Context) ([]*models.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM bills ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan bill id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	bills := make([]*models.Snapshot, 0, len(ids))
	for _, id := range ids {
		snap, err := s.GetBill(ctx, id)
		if err != nil {
			return nil, err
		}
		bills = append(bills, snap)
	}
	return bills, nil
}

// DeleteBill removes a bill; items, people and splits go with it.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return requireAffected(res, "bill", billID)
}

func (s *SQLiteStore) billItems(ctx context.Context, billID string) ([]models.BillItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, bill_id, name, amount, quantity, notes, sort_order, created_at
		 FROM bill_items WHERE bill_id = ? ORDER BY sort_order, rowid`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.BillItem
	for rows.Next() {
		var item models.BillItem
		var createdAt int64
		if err := rows.Scan(&item.ID, &item.BillID, &item.Name, &item.Amount, &item.Quantity,
			&item.Notes, &item.SortOrder, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.CreatedAt = fromMillis(createdAt)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func (s *SQLiteStore) billSplits(ctx context.Context, billID string) ([]models.ItemSplit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.item_id, s.person_id, s.amount, s.percentage, s.is_manual_amount, s.created_at
		 FROM item_splits s JOIN bill_items i ON i.id = s.item_id
		 WHERE i.bill_id = ? ORDER BY s.rowid`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []models.ItemSplit
	for rows.Next() {
		var split models.ItemSplit
		var createdAt int64
		if err := rows.Scan(&split.ID, &split.ItemID, &split.PersonID, &split.Amount, &split.Percentage,
			&split.IsManualAmount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		split.CreatedAt = fromMillis(createdAt)
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
