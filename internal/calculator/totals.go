package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/models"
)

// ReconcileTolerance is the largest gap between the bill's grand total and
// the sum of what people owe that still counts as reconciled.
var ReconcileTolerance = decimal.New(1, -2)

// BillTotals is the bill-level cascade plus every person's breakdown.
type BillTotals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	AfterDiscount  decimal.Decimal
	ServiceCharge  decimal.Decimal
	Tax            decimal.Decimal
	GrandTotal     decimal.Decimal

	// TotalFromPeople sums every person's FinalAmount.
	TotalFromPeople decimal.Decimal

	// UnassignedAmount is the bill subtotal minus the sum of person
	// subtotals. Negative when items are over-assigned.
	UnassignedAmount decimal.Decimal

	// Difference is GrandTotal − TotalFromPeople.
	Difference decimal.Decimal

	People []PersonBreakdown
}

// IsReconciled reports whether the people's totals match the grand total
// within ReconcileTolerance.
func (t BillTotals) IsReconciled() bool {
	return t.Difference.Abs().LessThanOrEqual(ReconcileTolerance)
}

// CalculateBill runs the cascade on the whole bill and on every person.
// The bill subtotal is the sum of item totals, whether assigned or not.
func CalculateBill(snap *models.Snapshot) BillTotals {
	rates := RatesOf(snap.Bill)

	subtotal := decimal.Zero
	for _, item := range snap.Items {
		subtotal = subtotal.Add(item.TotalAmount())
	}
	bill := Cascade(subtotal, rates)

	totals := BillTotals{
		Subtotal:       bill.Subtotal,
		DiscountAmount: bill.DiscountAmount,
		AfterDiscount:  bill.AfterDiscount,
		ServiceCharge:  bill.ServiceCharge,
		Tax:            bill.Tax,
		GrandTotal:     bill.FinalAmount,
		People:         make([]PersonBreakdown, 0, len(snap.People)),
	}

	fromPeople := decimal.Zero
	assigned := decimal.Zero
	for _, person := range snap.People {
		pb := CalculatePerson(person, snap.SplitsForPerson(person.ID), snap.Items, rates)
		fromPeople = fromPeople.Add(pb.FinalAmount)
		assigned = assigned.Add(pb.Subtotal)
		totals.People = append(totals.People, pb)
	}

	totals.TotalFromPeople = fromPeople
	totals.UnassignedAmount = subtotal.Sub(assigned)
	totals.Difference = totals.GrandTotal.Sub(fromPeople)
	return totals
}

// AssignmentValidation classifies items by how much of their total has been
// split out. It is advisory and never blocks edits.
type AssignmentValidation struct {
	IsComplete             bool
	UnassignedItems        []models.BillItem
	PartiallyAssignedItems []models.BillItem

	// OverAssignedItems have splits summing to more than the item total.
	// They count as complete.
	OverAssignedItems []models.BillItem
}

// ValidateAssignments compares each item's split sum with its total: zero is
// unassigned, below total is partial, at or above total is complete.
// A zero-priced item therefore always reads as unassigned.
func ValidateAssignments(snap *models.Snapshot) AssignmentValidation {
	var v AssignmentValidation
	for _, item := range snap.Items {
		assigned := snap.AssignedAmount(item.ID)
		total := item.TotalAmount()
		switch {
		case !assigned.IsPositive():
			v.UnassignedItems = append(v.UnassignedItems, item)
		case assigned.LessThan(total):
			v.PartiallyAssignedItems = append(v.PartiallyAssignedItems, item)
		case assigned.GreaterThan(total):
			v.OverAssignedItems = append(v.OverAssignedItems, item)
		}
	}
	v.IsComplete = len(v.UnassignedItems) == 0 && len(v.PartiallyAssignedItems) == 0
	return v
}
