// Package calculator derives what each person owes from a bill snapshot.
// All functions are pure: they read a models.Snapshot and never modify it.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/models"
)

// Rates are the three adjustment percentages of a bill, as whole-number
// percents (6 means 6%).
type Rates struct {
	Discount      decimal.Decimal
	ServiceCharge decimal.Decimal
	Tax           decimal.Decimal
}

// RatesOf returns the adjustment rates of a bill.
func RatesOf(bill models.Bill) Rates {
	return Rates{
		Discount:      bill.DiscountPercentage,
		ServiceCharge: bill.ServiceChargePercentage,
		Tax:           bill.TaxPercentage,
	}
}

// Breakdown is the result of running the cascade on one subtotal.
type Breakdown struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	AfterDiscount  decimal.Decimal
	ServiceCharge  decimal.Decimal
	Tax            decimal.Decimal
	FinalAmount    decimal.Decimal
}

// Cascade applies discount, then service charge on the discounted amount,
// then tax on discounted amount plus service charge:
//
//	afterDiscount = subtotal − subtotal × discount%
//	serviceCharge = afterDiscount × service%
//	tax           = (afterDiscount + serviceCharge) × tax%
//	final         = afterDiscount + serviceCharge + tax
//
// The order matters whenever more than one rate is non-zero.
func Cascade(subtotal decimal.Decimal, r Rates) Breakdown {
	discount := percentOf(subtotal, r.Discount)
	afterDiscount := subtotal.Sub(discount)
	service := percentOf(afterDiscount, r.ServiceCharge)
	taxable := afterDiscount.Add(service)
	tax := percentOf(taxable, r.Tax)
	return Breakdown{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		AfterDiscount:  afterDiscount,
		ServiceCharge:  service,
		Tax:            tax,
		FinalAmount:    afterDiscount.Add(service).Add(tax),
	}
}

// percentOf returns pct% of amount without any rounding.
func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Shift(-2)
}

// SplitBreakdown runs the cascade on a single item split.
func SplitBreakdown(split models.ItemSplit, r Rates) Breakdown {
	return Cascade(split.Amount, r)
}

// PersonItem is one item share owed by a person.
type PersonItem struct {
	SplitID     string
	ItemID      string
	Description string
	Amount      decimal.Decimal // This person's share of the item
	Percentage  decimal.Decimal
	IsManual    bool
}

// PersonBreakdown is one person's calculated share of a bill.
type PersonBreakdown struct {
	PersonID string
	Name     string
	HasPaid  bool
	Breakdown

	// Items lists the person's splits in item order.
	Items []PersonItem
}

// CalculatePerson sums a person's splits into a subtotal and runs the
// cascade with the given rates. A person with no splits owes zero.
func CalculatePerson(person models.Person, splits []models.ItemSplit, items []models.BillItem, r Rates) PersonBreakdown {
	names := make(map[string]string, len(items))
	for _, item := range items {
		names[item.ID] = item.Name
	}

	subtotal := decimal.Zero
	personItems := make([]PersonItem, 0, len(splits))
	for _, split := range splits {
		if split.PersonID != person.ID {
			continue
		}
		subtotal = subtotal.Add(split.Amount)
		personItems = append(personItems, PersonItem{
			SplitID:     split.ID,
			ItemID:      split.ItemID,
			Description: names[split.ItemID],
			Amount:      split.Amount,
			Percentage:  split.Percentage,
			IsManual:    split.IsManualAmount,
		})
	}

	return PersonBreakdown{
		PersonID:  person.ID,
		Name:      person.Name,
		HasPaid:   person.HasPaid,
		Breakdown: Cascade(subtotal, r),
		Items:     personItems,
	}
}

// PersonSplit computes one person's breakdown from a snapshot using the
// bill's own rates.
func PersonSplit(snap *models.Snapshot, personID string) (PersonBreakdown, bool) {
	person, ok := snap.Person(personID)
	if !ok {
		return PersonBreakdown{}, false
	}
	return CalculatePerson(person, snap.SplitsForPerson(personID), snap.Items, RatesOf(snap.Bill)), true
}
