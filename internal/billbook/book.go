// Package billbook holds bills, their items and people, and the splits that
// link items to people.
//
// Entities live in flat tables keyed by ID. Ownership is expressed through
// foreign keys plus ordered index lists (bill→items, bill→people,
// item→splits, person→splits), and every cascade is an explicit multi-table
// delete. A Book is not safe for concurrent use; callers serialize edits.
package billbook

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/models"
)

var (
	ErrBillNotFound    = errors.New("bill not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrPersonNotFound  = errors.New("person not found")
	ErrSplitNotFound   = errors.New("split not found")
	ErrContactNotFound = errors.New("contact not found")
	ErrNotAContact     = errors.New("person is not a contact")
	ErrCrossBill       = errors.New("item and person belong to different bills")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidAmount   = errors.New("amount must not be negative")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidRate     = errors.New("percentage must not be negative")
)

// Defaults are applied to newly created bills.
type Defaults struct {
	Currency      string
	TaxPercentage decimal.Decimal
}

// DefaultDefaults starts bills in Malaysian ringgit with 6% SST.
var DefaultDefaults = Defaults{
	Currency:      "MYR",
	TaxPercentage: decimal.NewFromInt(6),
}

// Option configures a Book.
type Option func(*Book)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Book) { b.now = now }
}

// WithDefaults overrides the currency and tax rate given to new bills.
func WithDefaults(d Defaults) Option {
	return func(b *Book) { b.defaults = d }
}

// Book is the in-memory entity store.
type Book struct {
	now      func() time.Time
	defaults Defaults

	bills    map[string]*models.Bill
	items    map[string]*models.BillItem
	people   map[string]*models.Person
	splits   map[string]*models.ItemSplit
	contacts map[string]*models.Person

	billOrder    []string
	contactOrder []string
	billItems    map[string][]string
	billPeople   map[string][]string
	itemSplits   map[string][]string
	personSplits map[string][]string
}

// New creates an empty Book.
func New(opts ...Option) *Book {
	b := &Book{
		now:          time.Now,
		defaults:     DefaultDefaults,
		bills:        make(map[string]*models.Bill),
		items:        make(map[string]*models.BillItem),
		people:       make(map[string]*models.Person),
		splits:       make(map[string]*models.ItemSplit),
		contacts:     make(map[string]*models.Person),
		billItems:    make(map[string][]string),
		billPeople:   make(map[string][]string),
		itemSplits:   make(map[string][]string),
		personSplits: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func newID() string {
	return uuid.New().String()
}

// touch marks a bill as updated.
func (b *Book) touch(billID string, at time.Time) {
	if bill, ok := b.bills[billID]; ok {
		bill.UpdatedAt = at
	}
}

// CreateBill starts a new bill dated now, with the configured currency and
// tax rate and zero discount and service charge.
func (b *Book) CreateBill(name string) models.Bill {
	now := b.now()
	bill := &models.Bill{
		ID:                      newID(),
		Name:                    name,
		Date:                    now,
		DiscountPercentage:      decimal.Zero,
		ServiceChargePercentage: decimal.Zero,
		TaxPercentage:           b.defaults.TaxPercentage,
		Currency:                b.defaults.Currency,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	b.bills[bill.ID] = bill
	b.billOrder = append(b.billOrder, bill.ID)
	return *bill
}

// Bill returns a copy of one bill.
func (b *Book) Bill(id string) (models.Bill, bool) {
	bill, ok := b.bills[id]
	if !ok {
		return models.Bill{}, false
	}
	return *bill, true
}

// Bills returns copies of all bills in creation order.
func (b *Book) Bills() []models.Bill {
	out := make([]models.Bill, 0, len(b.billOrder))
	for _, id := range b.billOrder {
		out = append(out, *b.bills[id])
	}
	return out
}

// EditBill applies a direct field edit. ID and CreatedAt cannot change, and
// the edit is rolled back if it leaves a negative rate.
func (b *Book) EditBill(id string, edit func(*models.Bill)) (models.Bill, error) {
	bill, ok := b.bills[id]
	if !ok {
		return models.Bill{}, fmt.Errorf("%w: %s", ErrBillNotFound, id)
	}
	edited := *bill
	edit(&edited)
	edited.ID = bill.ID
	edited.CreatedAt = bill.CreatedAt
	for _, rate := range []decimal.Decimal{
		edited.DiscountPercentage,
		edited.ServiceChargePercentage,
		edited.TaxPercentage,
	} {
		if rate.IsNegative() {
			return *bill, ErrInvalidRate
		}
	}
	edited.UpdatedAt = b.now()
	*bill = edited
	return edited, nil
}

// DeleteBill removes a bill together with its items, people and splits.
func (b *Book) DeleteBill(id string) error {
	if _, ok := b.bills[id]; !ok {
		return fmt.Errorf("%w: %s", ErrBillNotFound, id)
	}
	for _, itemID := range b.billItems[id] {
		b.dropItemSplits(itemID)
		delete(b.items, itemID)
		delete(b.itemSplits, itemID)
	}
	for _, personID := range b.billPeople[id] {
		delete(b.people, personID)
		delete(b.personSplits, personID)
	}
	delete(b.billItems, id)
	delete(b.billPeople, id)
	delete(b.bills, id)
	b.billOrder = removeID(b.billOrder, id)
	return nil
}

// DuplicateBill copies a bill's venue, rates, currency and payee details and
// re-creates its people as unpaid copies. Items and splits are not copied.
func (b *Book) DuplicateBill(id string) (models.Bill, error) {
	src, ok := b.bills[id]
	if !ok {
		return models.Bill{}, fmt.Errorf("%w: %s", ErrBillNotFound, id)
	}
	now := b.now()
	dup := &models.Bill{
		ID:                      newID(),
		Name:                    src.Name,
		Date:                    now,
		DiscountPercentage:      src.DiscountPercentage,
		ServiceChargePercentage: src.ServiceChargePercentage,
		TaxPercentage:           src.TaxPercentage,
		Currency:                src.Currency,
		PayeeName:               src.PayeeName,
		PayeeMethod:             src.PayeeMethod,
		PayeeDetails:            src.PayeeDetails,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	b.bills[dup.ID] = dup
	b.billOrder = append(b.billOrder, dup.ID)

	for _, personID := range b.billPeople[id] {
		b.insertPerson(dup.ID, copyOf(*b.people[personID]), now)
	}
	return *dup, nil
}

// BillIDOf returns the bill that owns an item, person or split.
func (b *Book) BillIDOf(id string) (string, bool) {
	if item, ok := b.items[id]; ok {
		return item.BillID, true
	}
	if p, ok := b.people[id]; ok {
		return p.BillID, true
	}
	if split, ok := b.splits[id]; ok {
		if item, ok := b.items[split.ItemID]; ok {
			return item.BillID, true
		}
	}
	return "", false
}

// Snapshot returns a deep copy of one bill and everything it owns.
func (b *Book) Snapshot(id string) (*models.Snapshot, error) {
	bill, ok := b.bills[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBillNotFound, id)
	}
	snap := &models.Snapshot{Bill: *bill}
	for _, itemID := range b.billItems[id] {
		snap.Items = append(snap.Items, *b.items[itemID])
		for _, splitID := range b.itemSplits[itemID] {
			snap.Splits = append(snap.Splits, *b.splits[splitID])
		}
	}
	for _, personID := range b.billPeople[id] {
		snap.People = append(snap.People, clonePerson(b.people[personID]))
	}
	slices.SortStableFunc(snap.Items, func(a, c models.BillItem) int {
		return cmp.Compare(a.SortOrder, c.SortOrder)
	})
	return snap, nil
}

// Load inserts a previously persisted bill. Every split must reference an
// item and a person of the same snapshot.
func (b *Book) Load(snap *models.Snapshot) error {
	billID := snap.Bill.ID
	if _, exists := b.bills[billID]; exists {
		return fmt.Errorf("%w: bill %s", ErrAlreadyExists, billID)
	}
	itemIDs := make(map[string]bool, len(snap.Items))
	for _, item := range snap.Items {
		if item.BillID != billID {
			return fmt.Errorf("%w: item %s", ErrCrossBill, item.ID)
		}
		itemIDs[item.ID] = true
	}
	personIDs := make(map[string]bool, len(snap.People))
	for _, p := range snap.People {
		if p.BillID != billID {
			return fmt.Errorf("%w: person %s", ErrCrossBill, p.ID)
		}
		personIDs[p.ID] = true
	}
	for _, split := range snap.Splits {
		if !itemIDs[split.ItemID] {
			return fmt.Errorf("split %s: %w", split.ID, ErrItemNotFound)
		}
		if !personIDs[split.PersonID] {
			return fmt.Errorf("split %s: %w", split.ID, ErrPersonNotFound)
		}
	}

	bill := snap.Bill
	b.bills[billID] = &bill
	b.billOrder = append(b.billOrder, billID)
	for _, item := range snap.Items {
		b.items[item.ID] = &item
		b.billItems[billID] = append(b.billItems[billID], item.ID)
	}
	for i := range snap.People {
		p := clonePerson(&snap.People[i])
		b.people[p.ID] = &p
		b.billPeople[billID] = append(b.billPeople[billID], p.ID)
	}
	for _, split := range snap.Splits {
		b.linkSplit(&split)
	}
	return nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
