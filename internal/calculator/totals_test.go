package calculator_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mmynk/billsplit/internal/billbook"
	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setRates(t *testing.T, book *billbook.Book, billID, discount, service, tax string) {
	t.Helper()
	_, err := book.EditBill(billID, func(b *models.Bill) {
		b.DiscountPercentage = dec(discount)
		b.ServiceChargePercentage = dec(service)
		b.TaxPercentage = dec(tax)
	})
	require.NoError(t, err)
}

func TestCalculateBill(t *testing.T) {
	t.Parallel()

	book := billbook.New()
	bill := book.CreateBill("Mamak")
	setRates(t, book, bill.ID, "10", "5", "6")

	alice, err := book.AddPerson(bill.ID, "Alice")
	require.NoError(t, err)
	bob, err := book.AddPerson(bill.ID, "Bob")
	require.NoError(t, err)

	roti, err := book.AddItem(bill.ID, "Roti Canai", dec("2.50"), 4)
	require.NoError(t, err)
	milo, err := book.AddItem(bill.ID, "Milo Ais", dec("90"), 1)
	require.NoError(t, err)

	_, err = book.SplitEqually(roti.ID, []string{alice.ID, bob.ID})
	require.NoError(t, err)
	_, err = book.AssignWhole(milo.ID, bob.ID)
	require.NoError(t, err)

	snap, err := book.Snapshot(bill.ID)
	require.NoError(t, err)
	totals := calculator.CalculateBill(snap)

	require.True(t, dec("100").Equal(totals.Subtotal), "subtotal %s", totals.Subtotal)
	require.True(t, dec("10").Equal(totals.DiscountAmount))
	require.True(t, dec("90").Equal(totals.AfterDiscount))
	require.True(t, dec("4.5").Equal(totals.ServiceCharge))
	require.True(t, dec("5.67").Equal(totals.Tax))
	require.True(t, dec("100.17").Equal(totals.GrandTotal))
	require.True(t, totals.UnassignedAmount.IsZero())
	require.True(t, totals.IsReconciled())
	require.Len(t, totals.People, 2)

	// Alice owes 5 before adjustments: 5 × 0.9 × 1.05 × 1.06 = 5.00850
	require.Equal(t, "Alice", totals.People[0].Name)
	require.True(t, dec("5.0085").Equal(totals.People[0].FinalAmount), "alice %s", totals.People[0].FinalAmount)
	require.True(t, dec("95.1615").Equal(totals.People[1].FinalAmount), "bob %s", totals.People[1].FinalAmount)
	require.True(t, totals.GrandTotal.Equal(totals.TotalFromPeople))
}

func TestCalculateBillUnassigned(t *testing.T) {
	t.Parallel()

	book := billbook.New()
	bill := book.CreateBill("Kopitiam")
	setRates(t, book, bill.ID, "0", "0", "0")
	alice, err := book.AddPerson(bill.ID, "Alice")
	require.NoError(t, err)
	kopi, err := book.AddItem(bill.ID, "Kopi O", dec("3"), 1)
	require.NoError(t, err)
	_, err = book.AddItem(bill.ID, "Kaya Toast", dec("4"), 1)
	require.NoError(t, err)
	_, err = book.AssignWhole(kopi.ID, alice.ID)
	require.NoError(t, err)

	snap, err := book.Snapshot(bill.ID)
	require.NoError(t, err)
	totals := calculator.CalculateBill(snap)

	require.True(t, dec("7").Equal(totals.GrandTotal))
	require.True(t, dec("3").Equal(totals.TotalFromPeople))
	require.True(t, dec("4").Equal(totals.UnassignedAmount))
	require.True(t, dec("4").Equal(totals.Difference))
	require.False(t, totals.IsReconciled())
}

func TestCalculateBillEmpty(t *testing.T) {
	t.Parallel()

	snap := &models.Snapshot{Bill: models.Bill{TaxPercentage: dec("6")}}
	totals := calculator.CalculateBill(snap)
	require.True(t, totals.GrandTotal.IsZero())
	require.True(t, totals.IsReconciled())
	require.Empty(t, totals.People)
}

func TestValidateAssignments(t *testing.T) {
	t.Parallel()

	book := billbook.New()
	bill := book.CreateBill("Hawker")
	alice, err := book.AddPerson(bill.ID, "Alice")
	require.NoError(t, err)
	bob, err := book.AddPerson(bill.ID, "Bob")
	require.NoError(t, err)

	full, err := book.AddItem(bill.ID, "Char Kway Teow", dec("8"), 1)
	require.NoError(t, err)
	partial, err := book.AddItem(bill.ID, "Satay", dec("12"), 1)
	require.NoError(t, err)
	none, err := book.AddItem(bill.ID, "Cendol", dec("4"), 1)
	require.NoError(t, err)
	over, err := book.AddItem(bill.ID, "Ice", dec("1"), 1)
	require.NoError(t, err)

	_, err = book.AssignWhole(full.ID, alice.ID)
	require.NoError(t, err)
	_, err = book.CustomSplit(partial.ID, bob.ID, dec("5"))
	require.NoError(t, err)
	_, err = book.CustomSplit(over.ID, alice.ID, dec("1"))
	require.NoError(t, err)
	_, err = book.CustomSplit(over.ID, bob.ID, dec("1"))
	require.NoError(t, err)

	snap, err := book.Snapshot(bill.ID)
	require.NoError(t, err)
	v := calculator.ValidateAssignments(snap)

	require.False(t, v.IsComplete)
	require.Len(t, v.UnassignedItems, 1)
	require.Equal(t, none.ID, v.UnassignedItems[0].ID)
	require.Len(t, v.PartiallyAssignedItems, 1)
	require.Equal(t, partial.ID, v.PartiallyAssignedItems[0].ID)
	require.Len(t, v.OverAssignedItems, 1)
	require.Equal(t, over.ID, v.OverAssignedItems[0].ID)

	require.NoError(t, book.RemoveItem(none.ID))
	_, err = book.CustomSplit(partial.ID, alice.ID, dec("7"))
	require.NoError(t, err)

	snap, err = book.Snapshot(bill.ID)
	require.NoError(t, err)
	require.True(t, calculator.ValidateAssignments(snap).IsComplete)
}

func TestCollectionStatus(t *testing.T) {
	t.Parallel()

	book := billbook.New()
	bill := book.CreateBill("Dim Sum")
	setRates(t, book, bill.ID, "0", "0", "0")
	alice, err := book.AddPerson(bill.ID, "Alice")
	require.NoError(t, err)
	bob, err := book.AddPerson(bill.ID, "Bob")
	require.NoError(t, err)
	carol, err := book.AddPerson(bill.ID, "Carol")
	require.NoError(t, err)

	item, err := book.AddItem(bill.ID, "Har Gow", dec("30"), 1)
	require.NoError(t, err)
	_, err = book.SplitEqually(item.ID, []string{alice.ID, bob.ID})
	require.NoError(t, err)
	_, err = book.SetPaid(alice.ID, true, "cash")
	require.NoError(t, err)

	snap, err := book.Snapshot(bill.ID)
	require.NoError(t, err)
	c := calculator.CollectionStatus(calculator.CalculateBill(snap))

	require.True(t, dec("15").Equal(c.Collected))
	require.True(t, dec("15").Equal(c.Outstanding))
	require.Len(t, c.Paid, 1)
	require.Len(t, c.Unpaid, 2)
	require.False(t, c.Settled())

	_, err = book.SetPaid(bob.ID, true, "")
	require.NoError(t, err)
	snap, err = book.Snapshot(bill.ID)
	require.NoError(t, err)
	c = calculator.CollectionStatus(calculator.CalculateBill(snap))
	require.True(t, c.Settled(), "carol owes nothing so the bill is settled")
	require.Equal(t, carol.ID, c.Unpaid[0].PersonID)
}

// Bills whose items are all given away whole or in equal shares reconcile
// for any non-negative rates.
func TestReconciliationProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		book := billbook.New()
		bill := book.CreateBill("property")
		_, err := book.EditBill(bill.ID, func(b *models.Bill) {
			b.DiscountPercentage = decimal.New(int64(rapid.IntRange(0, 10000).Draw(t, "discount")), -2)
			b.ServiceChargePercentage = decimal.New(int64(rapid.IntRange(0, 3000).Draw(t, "service")), -2)
			b.TaxPercentage = decimal.New(int64(rapid.IntRange(0, 3000).Draw(t, "tax")), -2)
		})
		if err != nil {
			t.Fatalf("EditBill: %v", err)
		}

		numPeople := rapid.IntRange(1, 7).Draw(t, "people")
		var people []string
		for i := range numPeople {
			p, err := book.AddPerson(bill.ID, fmt.Sprintf("p%d", i))
			if err != nil {
				t.Fatalf("AddPerson: %v", err)
			}
			people = append(people, p.ID)
		}

		numItems := rapid.IntRange(1, 8).Draw(t, "items")
		for i := range numItems {
			cents := rapid.Int64Range(1, 100000).Draw(t, fmt.Sprintf("cents%d", i))
			qty := rapid.IntRange(1, 5).Draw(t, fmt.Sprintf("qty%d", i))
			item, err := book.AddItem(bill.ID, fmt.Sprintf("item%d", i), decimal.New(cents, -2), qty)
			if err != nil {
				t.Fatalf("AddItem: %v", err)
			}
			if rapid.Bool().Draw(t, fmt.Sprintf("whole%d", i)) {
				who := rapid.SampledFrom(people).Draw(t, fmt.Sprintf("who%d", i))
				if _, err := book.AssignWhole(item.ID, who); err != nil {
					t.Fatalf("AssignWhole: %v", err)
				}
				continue
			}
			n := rapid.IntRange(1, len(people)).Draw(t, fmt.Sprintf("n%d", i))
			if _, err := book.SplitEqually(item.ID, people[:n]); err != nil {
				t.Fatalf("SplitEqually: %v", err)
			}
		}

		snap, err := book.Snapshot(bill.ID)
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		// Equal shares of an indivisible total leave a sub-cent residual, so
		// the item may read as partially assigned; the totals still reconcile.
		if v := calculator.ValidateAssignments(snap); len(v.UnassignedItems) > 0 {
			t.Fatalf("unexpected unassigned items: %d", len(v.UnassignedItems))
		}
		totals := calculator.CalculateBill(snap)
		if !totals.IsReconciled() {
			t.Fatalf("grand total %s vs people %s", totals.GrandTotal, totals.TotalFromPeople)
		}
	})
}
