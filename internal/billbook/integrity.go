package billbook

import (
	"errors"
	"fmt"
	"slices"
)

// CheckIntegrity reports every broken invariant in the book: splits pointing
// at missing items or people, index lists that disagree with the split table,
// and payment timestamps on unpaid people. A nil result means the tables are
// consistent. Any error here is a bug in this package, not bad user input.
func (b *Book) CheckIntegrity() error {
	var errs []error

	for id, split := range b.splits {
		item, ok := b.items[split.ItemID]
		if !ok {
			errs = append(errs, fmt.Errorf("split %s references missing item %s", id, split.ItemID))
		}
		p, ok := b.people[split.PersonID]
		if !ok {
			errs = append(errs, fmt.Errorf("split %s references missing person %s", id, split.PersonID))
		}
		if item != nil && p != nil && item.BillID != p.BillID {
			errs = append(errs, fmt.Errorf("split %s links item and person of different bills", id))
		}
		if !slices.Contains(b.itemSplits[split.ItemID], id) {
			errs = append(errs, fmt.Errorf("split %s missing from item %s", id, split.ItemID))
		}
		if !slices.Contains(b.personSplits[split.PersonID], id) {
			errs = append(errs, fmt.Errorf("split %s missing from person %s", id, split.PersonID))
		}
	}

	for itemID, ids := range b.itemSplits {
		for _, id := range ids {
			if split, ok := b.splits[id]; !ok || split.ItemID != itemID {
				errs = append(errs, fmt.Errorf("item %s lists dangling split %s", itemID, id))
			}
		}
	}
	for personID, ids := range b.personSplits {
		for _, id := range ids {
			if split, ok := b.splits[id]; !ok || split.PersonID != personID {
				errs = append(errs, fmt.Errorf("person %s lists dangling split %s", personID, id))
			}
		}
	}

	for billID, ids := range b.billItems {
		for _, id := range ids {
			if item, ok := b.items[id]; !ok || item.BillID != billID {
				errs = append(errs, fmt.Errorf("bill %s lists dangling item %s", billID, id))
			}
		}
	}
	for billID, ids := range b.billPeople {
		for _, id := range ids {
			if p, ok := b.people[id]; !ok || p.BillID != billID {
				errs = append(errs, fmt.Errorf("bill %s lists dangling person %s", billID, id))
			}
		}
	}

	for id, p := range b.people {
		if _, ok := b.bills[p.BillID]; !ok {
			errs = append(errs, fmt.Errorf("person %s belongs to missing bill %s", id, p.BillID))
		}
		if p.HasPaid != (p.PaidAt != nil) {
			errs = append(errs, fmt.Errorf("person %s: hasPaid=%t but paidAt set=%t", id, p.HasPaid, p.PaidAt != nil))
		}
	}
	for id, item := range b.items {
		if _, ok := b.bills[item.BillID]; !ok {
			errs = append(errs, fmt.Errorf("item %s belongs to missing bill %s", id, item.BillID))
		}
	}

	return errors.Join(errs...)
}
