// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/billsplit/internal/models"
)

// ErrNotFound is returned when a requested bill or contact does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for bill storage operations.
// Bills are saved whole: a snapshot replaces everything previously stored
// for that bill.
type Store interface {
	// SaveBill creates or replaces a bill with its items, people and splits.
	SaveBill(ctx context.Context, snap *models.Snapshot) error

	// GetBill retrieves a bill and everything it owns.
	// Returns ErrNotFound if the bill does not exist.
	GetBill(ctx context.Context, billID string) (*models.Snapshot, error)

	// ListBills retrieves every stored bill, oldest first.
	ListBills(ctx context.Context) ([]*models.Snapshot, error)

	// DeleteBill removes a bill and everything it owns.
	// Returns ErrNotFound if the bill does not exist.
	DeleteBill(ctx context.Context, billID string) error

	// SaveContact creates or replaces a contact.
	SaveContact(ctx context.Context, contact models.Person) error

	// ListContacts retrieves every contact, oldest first.
	ListContacts(ctx context.Context) ([]models.Person, error)

	// DeleteContact removes a contact.
	// Returns ErrNotFound if the contact does not exist.
	DeleteContact(ctx context.Context, contactID string) error

	// Close releases any resources held by the store.
	Close() error
}
