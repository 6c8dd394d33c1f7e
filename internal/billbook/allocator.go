package billbook

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/models"
)

var hundred = decimal.NewFromInt(100)

// AssignWhole replaces an item's splits with a single split giving the whole
// item to one person.
func (b *Book) AssignWhole(itemID, personID string) (models.ItemSplit, error) {
	item, err := b.itemInBill(itemID, personID)
	if err != nil {
		return models.ItemSplit{}, err
	}
	now := b.now()
	b.dropItemSplits(itemID)
	split := b.newSplit(item, personID, item.TotalAmount(), hundred, false, now)
	b.touch(item.BillID, now)
	return split, nil
}

// SplitEqually replaces an item's splits with one equal share per person.
// Shares are exact decimal quotients: any sub-cent residual from an
// indivisible total is left in place, not redistributed. Repeated IDs count
// once. An empty list is a no-op.
func (b *Book) SplitEqually(itemID string, personIDs []string) ([]models.ItemSplit, error) {
	item, ok := b.items[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	people := dedupe(personIDs)
	if len(people) == 0 {
		return nil, nil
	}
	for _, personID := range people {
		if _, err := b.itemInBill(itemID, personID); err != nil {
			return nil, err
		}
	}

	count := decimal.NewFromInt(int64(len(people)))
	share := item.TotalAmount().Div(count)
	percentage := hundred.Div(count)

	now := b.now()
	b.dropItemSplits(itemID)
	splits := make([]models.ItemSplit, 0, len(people))
	for _, personID := range people {
		splits = append(splits, b.newSplit(item, personID, share, percentage, false, now))
	}
	b.touch(item.BillID, now)
	return splits, nil
}

// CustomSplit appends a manually entered amount for one person without
// touching the item's other splits. Calling it twice for the same person
// records two splits.
func (b *Book) CustomSplit(itemID, personID string, amount decimal.Decimal) (models.ItemSplit, error) {
	item, err := b.itemInBill(itemID, personID)
	if err != nil {
		return models.ItemSplit{}, err
	}
	if amount.IsNegative() {
		return models.ItemSplit{}, ErrInvalidAmount
	}
	percentage := decimal.Zero
	if total := item.TotalAmount(); total.IsPositive() {
		percentage = amount.Div(total).Mul(hundred)
	}
	now := b.now()
	split := b.newSplit(item, personID, amount, percentage, true, now)
	b.touch(item.BillID, now)
	return split, nil
}

// RemoveSplit deletes one split from both its item and its person.
func (b *Book) RemoveSplit(splitID string) error {
	split, ok := b.splits[splitID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSplitNotFound, splitID)
	}
	b.unlinkSplit(split)
	if item, ok := b.items[split.ItemID]; ok {
		b.touch(item.BillID, b.now())
	}
	return nil
}

// ClearAllSplits removes every split of an item from the item and from the
// people who owed them.
func (b *Book) ClearAllSplits(itemID string) error {
	item, ok := b.items[itemID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	b.dropItemSplits(itemID)
	b.touch(item.BillID, b.now())
	return nil
}

// itemInBill resolves an item and checks the person shares its bill.
func (b *Book) itemInBill(itemID, personID string) (*models.BillItem, error) {
	item, ok := b.items[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	p, ok := b.people[personID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPersonNotFound, personID)
	}
	if p.BillID != item.BillID {
		return nil, ErrCrossBill
	}
	return item, nil
}

func (b *Book) newSplit(item *models.BillItem, personID string, amount, percentage decimal.Decimal, manual bool, at time.Time) models.ItemSplit {
	split := &models.ItemSplit{
		ID:             newID(),
		ItemID:         item.ID,
		PersonID:       personID,
		Amount:         amount,
		Percentage:     percentage,
		IsManualAmount: manual,
		CreatedAt:      at,
	}
	b.linkSplit(split)
	return *split
}

// linkSplit records a split in the split table and on both sides.
func (b *Book) linkSplit(split *models.ItemSplit) {
	b.splits[split.ID] = split
	b.itemSplits[split.ItemID] = append(b.itemSplits[split.ItemID], split.ID)
	b.personSplits[split.PersonID] = append(b.personSplits[split.PersonID], split.ID)
}

// unlinkSplit removes a split from the split table and from both sides.
func (b *Book) unlinkSplit(split *models.ItemSplit) {
	b.itemSplits[split.ItemID] = removeID(b.itemSplits[split.ItemID], split.ID)
	b.personSplits[split.PersonID] = removeID(b.personSplits[split.PersonID], split.ID)
	delete(b.splits, split.ID)
}

// dropItemSplits removes all splits of an item, leaving the item itself.
func (b *Book) dropItemSplits(itemID string) {
	for _, splitID := range b.itemSplits[itemID] {
		split := b.splits[splitID]
		b.personSplits[split.PersonID] = removeID(b.personSplits[split.PersonID], splitID)
		delete(b.splits, splitID)
	}
	b.itemSplits[itemID] = nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
