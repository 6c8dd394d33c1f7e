package models

import "time"

// Person represents a participant of one bill or, when IsContact is set,
// a reusable address-book entry that belongs to no bill.
//
// Contacts are never added to a bill directly. A bill gets its own copy with
// a fresh ID, so editing one never affects the other.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string

	// BillID is the owning bill. Empty for contacts.
	BillID string

	Name  string
	Phone string

	// PaymentMethod and PaymentDetails are the person's preferred way of
	// receiving or sending money (e.g., "DuitNow", "012-3456789").
	PaymentMethod  string
	PaymentDetails string

	IsContact bool

	CreatedAt time.Time

	// HasPaid is the per-bill payment state.
	// PaidAt is non-nil if and only if HasPaid is true.
	HasPaid bool
	PaidAt  *time.Time

	// PaymentMethodUsed records how the person actually paid, if known.
	PaymentMethodUsed *string
}
