package calculator

import "github.com/shopspring/decimal"

// Collection summarizes how much of a bill the payee has been paid back.
type Collection struct {
	// Collected sums FinalAmount of people marked as paid.
	Collected decimal.Decimal

	// Outstanding sums FinalAmount of people not yet paid.
	Outstanding decimal.Decimal

	Paid   []PersonBreakdown
	Unpaid []PersonBreakdown
}

// Settled reports whether everyone who owes something has paid.
func (c Collection) Settled() bool {
	return !c.Outstanding.IsPositive()
}

// CollectionStatus splits the people of a bill into paid and unpaid.
// People who owe nothing are listed by their flag but add nothing to either sum.
func CollectionStatus(totals BillTotals) Collection {
	c := Collection{
		Collected:   decimal.Zero,
		Outstanding: decimal.Zero,
	}
	for _, p := range totals.People {
		if p.HasPaid {
			c.Collected = c.Collected.Add(p.FinalAmount)
			c.Paid = append(c.Paid, p)
			continue
		}
		c.Outstanding = c.Outstanding.Add(p.FinalAmount)
		c.Unpaid = append(c.Unpaid, p)
	}
	return c
}
