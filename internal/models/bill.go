package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill represents one shared-expense session, typically a meal.
// It owns its items and people; deleting a bill deletes both.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// Name is the display name, usually the venue (e.g., "Nasi Lemak Corner").
	Name string

	// Date is when the meal took place.
	Date time.Time

	// Notes is free text attached to the bill.
	Notes string

	// DiscountPercentage, ServiceChargePercentage and TaxPercentage are
	// whole-number percents: 6 means 6%.
	// They are applied in that order, each on the result of the previous step.
	DiscountPercentage      decimal.Decimal
	ServiceChargePercentage decimal.Decimal
	TaxPercentage           decimal.Decimal

	// Currency is a 3-letter code used only to pick a display symbol.
	Currency string

	// PayeeName, PayeeMethod and PayeeDetails describe who fronted the bill
	// and how the others should pay them back.
	PayeeName    string
	PayeeMethod  string
	PayeeDetails string

	// Archived hides the bill from the default listing.
	Archived bool

	CreatedAt time.Time

	// UpdatedAt is refreshed on any change to the bill or anything it owns.
	UpdatedAt time.Time
}

// BillItem represents a single priced line on a bill.
type BillItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// BillID is the bill this item belongs to.
	BillID string

	// Name is the description of the item (e.g., "Teh Tarik").
	Name string

	// Amount is the unit price. It may be zero.
	Amount decimal.Decimal

	// Quantity is the number of units, at least 1.
	Quantity int

	Notes string

	// SortOrder keeps display order stable; new items get the current item count.
	SortOrder int

	CreatedAt time.Time
}

// TotalAmount returns Amount × Quantity.
func (i BillItem) TotalAmount() decimal.Decimal {
	return i.Amount.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemSplit is the join between an item and a person: the share of the item
// the person owes.
type ItemSplit struct {
	// ID is the unique identifier for the split (UUID format).
	ID string

	// ItemID and PersonID reference the item and the person. Both must exist
	// in the same bill.
	ItemID   string
	PersonID string

	// Amount is the authoritative money value this person owes for the item.
	Amount decimal.Decimal

	// Percentage (0-100) is informational only.
	Percentage decimal.Decimal

	// IsManualAmount is true when Amount was typed directly instead of being
	// derived from a whole or equal split.
	IsManualAmount bool

	CreatedAt time.Time
}
