// Package billquery filters and orders collections of bills for listing.
package billquery

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
)

// Archival selects bills by their archived flag.
type Archival int

const (
	ActiveOnly Archival = iota
	ArchivedOnly
	AnyArchival
)

// SortKey names the field bills are ordered by.
type SortKey string

const (
	SortByDate       SortKey = "date"
	SortByName       SortKey = "name"
	SortByGrandTotal SortKey = "grand_total"
)

// Query describes which bills to list and in what order. The zero value lists
// active bills, newest first.
type Query struct {
	// Search matches case-insensitively against name, notes and payee name.
	Search    string
	Archival  Archival
	SortBy    SortKey
	Ascending bool
}

// Result pairs a bill with its computed totals.
type Result struct {
	Snapshot *models.Snapshot
	Totals   calculator.BillTotals
}

// Run filters snaps by q and sorts the survivors. Ties keep input order.
func Run(snaps []*models.Snapshot, q Query) []Result {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]Result, 0, len(snaps))
	for _, snap := range snaps {
		if !matchesArchival(snap.Bill, q.Archival) || !matchesSearch(snap.Bill, needle) {
			continue
		}
		out = append(out, Result{Snapshot: snap, Totals: calculator.CalculateBill(snap)})
	}

	compare := comparator(q.SortBy)
	slices.SortStableFunc(out, func(a, b Result) int {
		if q.Ascending {
			return compare(a, b)
		}
		return compare(b, a)
	})
	return out
}

func matchesArchival(b models.Bill, a Archival) bool {
	switch a {
	case ActiveOnly:
		return !b.Archived
	case ArchivedOnly:
		return b.Archived
	default:
		return true
	}
}

func matchesSearch(b models.Bill, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range []string{b.Name, b.Notes, b.PayeeName} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func comparator(key SortKey) func(a, b Result) int {
	switch key {
	case SortByName:
		return func(a, b Result) int {
			return cmp.Compare(strings.ToLower(a.Snapshot.Bill.Name), strings.ToLower(b.Snapshot.Bill.Name))
		}
	case SortByGrandTotal:
		return func(a, b Result) int {
			return a.Totals.GrandTotal.Cmp(b.Totals.GrandTotal)
		}
	default:
		return func(a, b Result) int {
			return a.Snapshot.Bill.Date.Compare(b.Snapshot.Bill.Date)
		}
	}
}

// ParseSortKey maps a request value to a SortKey, defaulting to date.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(s)) {
	case SortByName:
		return SortByName
	case SortByGrandTotal:
		return SortByGrandTotal
	default:
		return SortByDate
	}
}
