package billbook

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billsplit/internal/models"
)

// fakeClock advances one second on every reading.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestBook() (*Book, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)}
	return New(WithClock(clock.now)), clock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateBillDefaults(t *testing.T) {
	t.Parallel()

	t.Run("package defaults", func(t *testing.T) {
		book, _ := newTestBook()
		bill := book.CreateBill("Nasi Kandar")

		require.NotEmpty(t, bill.ID)
		require.Equal(t, "Nasi Kandar", bill.Name)
		require.Equal(t, "MYR", bill.Currency)
		require.True(t, dec("6").Equal(bill.TaxPercentage))
		require.True(t, bill.DiscountPercentage.IsZero())
		require.True(t, bill.ServiceChargePercentage.IsZero())
		require.Equal(t, bill.CreatedAt, bill.UpdatedAt)
	})

	t.Run("configured defaults", func(t *testing.T) {
		book := New(WithDefaults(Defaults{Currency: "SGD", TaxPercentage: dec("9")}))
		bill := book.CreateBill("Zi Char")
		require.Equal(t, "SGD", bill.Currency)
		require.True(t, dec("9").Equal(bill.TaxPercentage))
	})
}

func TestEditBill(t *testing.T) {
	t.Parallel()

	book, _ := newTestBook()
	bill := book.CreateBill("Before")

	edited, err := book.EditBill(bill.ID, func(b *models.Bill) {
		b.ID = "hijack"
		b.Name = "After"
		b.ServiceChargePercentage = dec("10")
		b.PayeeName = "Aminah"
	})
	require.NoError(t, err)
	require.Equal(t, bill.ID, edited.ID)
	require.Equal(t, "After", edited.Name)
	require.True(t, edited.UpdatedAt.After(bill.UpdatedAt))

	_, err = book.EditBill(bill.ID, func(b *models.Bill) {
		b.TaxPercentage = dec("-1")
	})
	require.ErrorIs(t, err, ErrInvalidRate)
	stored, _ := book.Bill(bill.ID)
	require.True(t, dec("6").Equal(stored.TaxPercentage), "rejected edit must not apply")

	_, err = book.EditBill("missing", func(*models.Bill) {})
	require.ErrorIs(t, err, ErrBillNotFound)
}

func TestAddItem(t *testing.T) {
	t.Parallel()

	book, _ := newTestBook()
	bill := book.CreateBill("Bak Kut Teh")

	first, err := book.AddItem(bill.ID, "Soup", dec("18.90"), 2)
	require.NoError(t, err)
	second, err := book.AddItem(bill.ID, "Rice", dec("1.50"), 1)
	require.NoError(t, err)

	require.Equal(t, 0, first.SortOrder)
	require.Equal(t, 1, second.SortOrder)
	require.True(t, dec("37.80").Equal(first.TotalAmount()))

	_, err = book.AddItem(bill.ID, "Free Tea", decimal.Zero, 1)
	require.NoError(t, err, "zero-priced items are allowed")

	_, err = book.AddItem(bill.ID, "Refund", dec("-1"), 1)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = book.AddItem(bill.ID, "Nothing", dec("1"), 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = book.AddItem("missing", "Soup", dec("1"), 1)
	require.ErrorIs(t, err, ErrBillNotFound)
}

func TestMutationsRefreshUpdatedAt(t *testing.T) {
	t.Parallel()

	book, _ := newTestBook()
	bill := book.CreateBill("Steamboat")
	last := bill.UpdatedAt

	advanced := func(step string) {
		t.Helper()
		b, ok := book.Bill(bill.ID)
		require.True(t, ok)
		require.True(t, b.UpdatedAt.After(last), "%s did not refresh updatedAt", step)
		last = b.UpdatedAt
	}

	item, err := book.AddItem(bill.ID, "Broth", dec("20"), 1)
	require.NoError(t, err)
	advanced("AddItem")

	p, err := book.AddPerson(bill.ID, "Mei")
	require.NoError(t, err)
	advanced("AddPerson")

	split, err := book.AssignWhole(item.ID, p.ID)
	require.NoError(t, err)
	advanced("AssignWhole")

	_, err = book.EditItem(item.ID, func(i *models.BillItem) { i.Notes = "spicy" })
	require.NoError(t, err)
	advanced("EditItem")

	_, err = book.EditPerson(p.ID, func(p *models.Person) { p.Phone = "012" })
	require.NoError(t, err)
	advanced("EditPerson")

	_, err = book.SetPaid(p.ID, true, "cash")
	require.NoError(t, err)
	advanced("SetPaid")

	require.NoError(t, book.RemoveSplit(split.ID))
	advanced("RemoveSplit")

	_, err = book.SplitEqually(item.ID, []string{p.ID})
	require.NoError(t, err)
	advanced("SplitEqually")

	require.NoError(t, book.ClearAllSplits(item.ID))
	advanced("ClearAllSplits")

	_, err = book.CustomSplit(item.ID, p.ID, dec("5"))
	require.NoError(t, err)
	advanced("CustomSplit")

	require.NoError(t, book.RemovePerson(p.ID))
	advanced("RemovePerson")

	require.NoError(t, book.RemoveItem(item.ID))
	advanced("RemoveItem")
}

func TestRemoveItemCascades(t *testing.T) {
	t.Parallel()

	book, _ := newTestBook()
	bill := book.CreateBill("Claypot")
	a, _ := book.AddPerson(bill.ID, "A")
	b, _ := book.AddPerson(bill.ID, "B")
	item, _ := book.AddItem(bill.ID, "Chicken Rice", dec("30"), 1)
	other, _ := book.AddItem(bill.ID, "Soup", dec("10"), 1)

	_, err := book.SplitEqually(item.ID, []string{a.ID, b.ID})
	require.NoError(t, err)
	_, err = book.AssignWhole(other.ID, a.ID)
	require.NoError(t, err)

	require.NoError(t, book.RemoveItem(item.ID))
	require.NoError(t, book.CheckIntegrity())

	snap, err := book.Snapshot(bill.ID)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	require.Len(t, snap.Splits, 1)
	require.Len(t, snap.SplitsForPerson(a.ID), 1)
	require.Empty(t, snap.SplitsForPerson(b.ID))
	require.Empty(t, book.personSplits[b.ID])

	require.ErrorIs(t, book.RemoveItem(item.ID), ErrItemNotFound)
}

func TestRemovePersonCascades(t *testing.T) {
	t.Parallel()

	book, _ := newTestBook()
	bill := book.CreateBill("Banana Leaf")
	a, _ := book.AddPerson(bill.ID, "A")
	b, _ := book.AddPerson(bill.ID, "B")
	item, _ := book.AddItem(bill.ID, "Fish Head Curry", dec("40"), 1)
	_, err := book.SplitEqually(item.ID, []string{a.ID, b.ID})
	require.NoError(t, err)

	require.NoError(t, book.RemovePerson(a.ID))
	require.NoError(t, book.CheckIntegrity())

	snap, err := book.Snapshot(bill.ID)
	require.NoError(t, err)
	require.Len(t, snap.People, 1)
	splits := snap.SplitsForItem(item.ID)
	require.Len(t, splits, 1)
	require.Equal(t, b.ID, splits[0].PersonID)
	require.Len(t, book.itemSplits[item.ID], 1)
}

func TestDeleteBillCascades(t *testing.T) {
	t.Parallel()

	book, _ := newTestBook()
	keep := book.CreateBill("Keep")
	drop := book.CreateBill("Drop")
	for _, bill := range []models.Bill{keep, drop} {
		p, _ := book.AddPerson(bill.ID, "P")
		item, _ := book.AddItem(bill.ID, "I", dec("5"), 1)
		_, err := book.AssignWhole(item.ID, p.ID)
		require.NoError(t, err)
	}

	require.NoError(t, book.DeleteBill(drop.ID))
	require.NoError(t, book.CheckIntegrity())
	require.Len(t, book.Bills(), 1)
	require.Len(t, book.items, 1)
	require.Len(t, book.people, 1)
	require.Len(t, book.splits, 1)

	_, err := book.Snapshot(drop.ID)
	require.ErrorIs(t, err, ErrBillNotFound)
	require.ErrorIs(t, book.DeleteBill(drop.ID), ErrBillNotFound)
}

func TestDuplicateBill(t *testing.T) {
	t.Parallel()

	book, _ := newTestBook()
	src := book.CreateBill("Friday Mamak")
	_, err := book.EditBill(src.ID, func(b *models.Bill) {
		b.DiscountPercentage = dec("5")
		b.ServiceChargePercentage = dec("10")
		b.Currency = "SGD"
		b.PayeeName = "Raj"
		b.PayeeMethod = "PayNow"
		b.PayeeDetails = "9123 4567"
		b.Notes = "table 7"
		b.Archived = true
	})
	require.NoError(t, err)
	p, _ := book.AddPerson(src.ID, "Siti")
	_, err = book.EditPerson(p.ID, func(p *models.Person) { p.Phone = "0191234567" })
	require.NoError(t, err)
	_, err = book.SetPaid(p.ID, true, "cash")
	require.NoError(t, err)
	item, _ := book.AddItem(src.ID, "Maggi Goreng", dec("7"), 1)
	_, err = book.AssignWhole(item.ID, p.ID)
	require.NoError(t, err)

	dup, err := book.DuplicateBill(src.ID)
	require.NoError(t, err)
	require.NotEqual(t, src.ID, dup.ID)
	require.Equal(t, "Friday Mamak", dup.Name)
	require.True(t, dec("5").Equal(dup.DiscountPercentage))
	require.True(t, dec("10").Equal(dup.ServiceChargePercentage))
	require.Equal(t, "SGD", dup.Currency)
	require.Equal(t, "Raj", dup.PayeeName)
	require.Equal(t, "PayNow", dup.PayeeMethod)
	require.Equal(t, "9123 4567", dup.PayeeDetails)
	require.Empty(t, dup.Notes)
	require.False(t, dup.Archived)

	snap, err := book.Snapshot(dup.ID)
	require.NoError(t, err)
	require.Empty(t, snap.Items, "items are not duplicated")
	require.Empty(t, snap.Splits)
	require.Len(t, snap.People, 1)
	copied := snap.People[0]
	require.NotEqual(t, p.ID, copied.ID)
	require.Equal(t, "Siti", copied.Name)
	require.Equal(t, "0191234567", copied.Phone)
	require.False(t, copied.HasPaid)
	require.Nil(t, copied.PaidAt)
	require.Nil(t, copied.PaymentMethodUsed)

	_, err = book.DuplicateBill("missing")
	require.ErrorIs(t, err, ErrBillNotFound)
}

func TestSetPaidToggle(t *testing.T) {
	t.Parallel()

	book, _ := newTestBook()
	bill := book.CreateBill("Toggle")
	p, _ := book.AddPerson(bill.ID, "Farid")

	paid, err := book.SetPaid(p.ID, true, "DuitNow")
	require.NoError(t, err)
	require.True(t, paid.HasPaid)
	require.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.PaymentMethodUsed)
	require.Equal(t, "DuitNow", *paid.PaymentMethodUsed)

	again, err := book.SetPaid(p.ID, true, "")
	require.NoError(t, err)
	require.Equal(t, *paid.PaidAt, *again.PaidAt, "re-marking paid keeps the original time")

	unpaid, err := book.SetPaid(p.ID, false, "")
	require.NoError(t, err)
	require.False(t, unpaid.HasPaid)
	require.Nil(t, unpaid.PaidAt)
	require.Nil(t, unpaid.PaymentMethodUsed)
	require.NoError(t, book.CheckIntegrity())

	_, err = book.SetPaid("missing", true, "")
	require.ErrorIs(t, err, ErrPersonNotFound)
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	book, _ := newTestBook()
	bill := book.CreateBill("Copy")
	p, _ := book.AddPerson(bill.ID, "Lim")
	_, err := book.SetPaid(p.ID, true, "cash")
	require.NoError(t, err)

	snap, err := book.Snapshot(bill.ID)
	require.NoError(t, err)
	snap.People[0].Name = "changed"
	*snap.People[0].PaymentMethodUsed = "changed"
	snap.Bill.Name = "changed"

	again, err := book.Snapshot(bill.ID)
	require.NoError(t, err)
	require.Equal(t, "Lim", again.People[0].Name)
	require.Equal(t, "cash", *again.People[0].PaymentMethodUsed)
	require.Equal(t, "Copy", again.Bill.Name)
}

func TestSnapshotOrdersItemsBySortOrder(t *testing.T) {
	t.Parallel()

	book, _ := newTestBook()
	bill := book.CreateBill("Order")
	first, _ := book.AddItem(bill.ID, "first", dec("1"), 1)
	second, _ := book.AddItem(bill.ID, "second", dec("1"), 1)
	_, err := book.EditItem(first.ID, func(i *models.BillItem) { i.SortOrder = 5 })
	require.NoError(t, err)

	snap, err := book.Snapshot(bill.ID)
	require.NoError(t, err)
	require.Equal(t, second.ID, snap.Items[0].ID)
	require.Equal(t, first.ID, snap.Items[1].ID)
}

func TestLoadRoundTrip(t *testing.T) {
	t.Parallel()

	book, _ := newTestBook()
	bill := book.CreateBill("Persisted")
	a, _ := book.AddPerson(bill.ID, "A")
	b, _ := book.AddPerson(bill.ID, "B")
	item, _ := book.AddItem(bill.ID, "Durian", dec("60"), 1)
	_, err := book.SplitEqually(item.ID, []string{a.ID, b.ID})
	require.NoError(t, err)
	snap, err := book.Snapshot(bill.ID)
	require.NoError(t, err)

	restored := New()
	require.NoError(t, restored.Load(snap))
	require.NoError(t, restored.CheckIntegrity())
	again, err := restored.Snapshot(bill.ID)
	require.NoError(t, err)
	require.Equal(t, snap, again)

	require.ErrorIs(t, restored.Load(snap), ErrAlreadyExists)

	broken := &models.Snapshot{
		Bill:   models.Bill{ID: "broken"},
		Splits: []models.ItemSplit{{ID: "s", ItemID: "nope", PersonID: "nope"}},
	}
	err = New().Load(broken)
	require.True(t, errors.Is(err, ErrItemNotFound))
}

func TestCheckIntegrityDetectsDefects(t *testing.T) {
	t.Parallel()

	book, _ := newTestBook()
	bill := book.CreateBill("Broken")
	p, _ := book.AddPerson(bill.ID, "P")
	item, _ := book.AddItem(bill.ID, "I", dec("1"), 1)
	split, err := book.AssignWhole(item.ID, p.ID)
	require.NoError(t, err)
	require.NoError(t, book.CheckIntegrity())

	// Simulate a half-applied removal.
	book.personSplits[p.ID] = nil
	require.Error(t, book.CheckIntegrity())
	book.personSplits[p.ID] = []string{split.ID}

	now := time.Now()
	book.people[p.ID].PaidAt = &now
	require.Error(t, book.CheckIntegrity())
}
