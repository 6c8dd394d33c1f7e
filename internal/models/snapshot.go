package models

import "github.com/shopspring/decimal"

// Snapshot is a read-only copy of one bill and everything it owns.
// Items are ordered by SortOrder, people by insertion order.
type Snapshot struct {
	Bill   Bill
	Items  []BillItem
	People []Person
	Splits []ItemSplit
}

// Item returns the item with the given ID.
func (s *Snapshot) Item(id string) (BillItem, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return BillItem{}, false
}

// Person returns the person with the given ID.
func (s *Snapshot) Person(id string) (Person, bool) {
	for _, p := range s.People {
		if p.ID == id {
			return p, true
		}
	}
	return Person{}, false
}

// SplitsForItem returns the splits of one item in creation order.
func (s *Snapshot) SplitsForItem(itemID string) []ItemSplit {
	var out []ItemSplit
	for _, split := range s.Splits {
		if split.ItemID == itemID {
			out = append(out, split)
		}
	}
	return out
}

// SplitsForPerson returns the splits owed by one person in creation order.
func (s *Snapshot) SplitsForPerson(personID string) []ItemSplit {
	var out []ItemSplit
	for _, split := range s.Splits {
		if split.PersonID == personID {
			out = append(out, split)
		}
	}
	return out
}

// AssignedAmount sums the split amounts recorded against one item.
func (s *Snapshot) AssignedAmount(itemID string) decimal.Decimal {
	total := decimal.Zero
	for _, split := range s.Splits {
		if split.ItemID == itemID {
			total = total.Add(split.Amount)
		}
	}
	return total
}
