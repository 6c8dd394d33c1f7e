package billbook

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/models"
)

// AddItem appends an item to a bill with SortOrder equal to the current
// item count.
func (b *Book) AddItem(billID, name string, amount decimal.Decimal, quantity int) (models.BillItem, error) {
	if _, ok := b.bills[billID]; !ok {
		return models.BillItem{}, fmt.Errorf("%w: %s", ErrBillNotFound, billID)
	}
	if amount.IsNegative() {
		return models.BillItem{}, ErrInvalidAmount
	}
	if quantity < 1 {
		return models.BillItem{}, ErrInvalidQuantity
	}

	now := b.now()
	item := &models.BillItem{
		ID:        newID(),
		BillID:    billID,
		Name:      name,
		Amount:    amount,
		Quantity:  quantity,
		SortOrder: len(b.billItems[billID]),
		CreatedAt: now,
	}
	b.items[item.ID] = item
	b.billItems[billID] = append(b.billItems[billID], item.ID)
	b.touch(billID, now)
	return *item, nil
}

// EditItem applies a direct field edit to an item. Existing splits keep their
// amounts; reassigning after a price change is up to the caller.
func (b *Book) EditItem(itemID string, edit func(*models.BillItem)) (models.BillItem, error) {
	item, ok := b.items[itemID]
	if !ok {
		return models.BillItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	edited := *item
	edit(&edited)
	edited.ID = item.ID
	edited.BillID = item.BillID
	edited.CreatedAt = item.CreatedAt
	if edited.Amount.IsNegative() {
		return *item, ErrInvalidAmount
	}
	if edited.Quantity < 1 {
		return *item, ErrInvalidQuantity
	}
	*item = edited
	b.touch(item.BillID, b.now())
	return edited, nil
}

// RemoveItem deletes an item and its splits, unlinking each split from its
// person as well.
func (b *Book) RemoveItem(itemID string) error {
	item, ok := b.items[itemID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	b.dropItemSplits(itemID)
	delete(b.itemSplits, itemID)
	delete(b.items, itemID)
	b.billItems[item.BillID] = removeID(b.billItems[item.BillID], itemID)
	b.touch(item.BillID, b.now())
	return nil
}
