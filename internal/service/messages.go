package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/currency"
	"github.com/mmynk/billsplit/internal/models"
)

// Wire messages for the BillService. Decimals travel as JSON strings.

type Bill struct {
	ID                      string          `json:"id"`
	Name                    string          `json:"name"`
	Date                    time.Time       `json:"date"`
	Notes                   string          `json:"notes,omitempty"`
	DiscountPercentage      decimal.Decimal `json:"discountPercentage"`
	ServiceChargePercentage decimal.Decimal `json:"serviceChargePercentage"`
	TaxPercentage           decimal.Decimal `json:"taxPercentage"`
	Currency                string          `json:"currency"`
	CurrencySymbol          string          `json:"currencySymbol"`
	PayeeName               string          `json:"payeeName,omitempty"`
	PayeeMethod             string          `json:"payeeMethod,omitempty"`
	PayeeDetails            string          `json:"payeeDetails,omitempty"`
	Archived                bool            `json:"archived"`
	CreatedAt               time.Time       `json:"createdAt"`
	UpdatedAt               time.Time       `json:"updatedAt"`
}

type Item struct {
	ID          string          `json:"id"`
	BillID      string          `json:"billId"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Notes       string          `json:"notes,omitempty"`
	SortOrder   int             `json:"sortOrder"`
}

type Person struct {
	ID                string     `json:"id"`
	BillID            string     `json:"billId,omitempty"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone,omitempty"`
	PaymentMethod     string     `json:"paymentMethod,omitempty"`
	PaymentDetails    string     `json:"paymentDetails,omitempty"`
	IsContact         bool       `json:"isContact"`
	HasPaid           bool       `json:"hasPaid"`
	PaidAt            *time.Time `json:"paidAt,omitempty"`
	PaymentMethodUsed string     `json:"paymentMethodUsed,omitempty"`
}

type Split struct {
	ID             string          `json:"id"`
	ItemID         string          `json:"itemId"`
	PersonID       string          `json:"personId"`
	Amount         decimal.Decimal `json:"amount"`
	Percentage     decimal.Decimal `json:"percentage"`
	IsManualAmount bool            `json:"isManualAmount"`
}

type PersonItem struct {
	SplitID     string          `json:"splitId"`
	ItemID      string          `json:"itemId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Percentage  decimal.Decimal `json:"percentage"`
	IsManual    bool            `json:"isManual"`
}

type PersonTotals struct {
	PersonID       string          `json:"personId"`
	Name           string          `json:"name"`
	HasPaid        bool            `json:"hasPaid"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	AfterDiscount  decimal.Decimal `json:"afterDiscount"`
	ServiceCharge  decimal.Decimal `json:"serviceCharge"`
	Tax            decimal.Decimal `json:"tax"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
	Display        string          `json:"display"`
	Items          []PersonItem    `json:"items"`
}

type Totals struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	DiscountAmount   decimal.Decimal `json:"discountAmount"`
	AfterDiscount    decimal.Decimal `json:"afterDiscount"`
	ServiceCharge    decimal.Decimal `json:"serviceCharge"`
	Tax              decimal.Decimal `json:"tax"`
	GrandTotal       decimal.Decimal `json:"grandTotal"`
	TotalFromPeople  decimal.Decimal `json:"totalFromPeople"`
	UnassignedAmount decimal.Decimal `json:"unassignedAmount"`
	Difference       decimal.Decimal `json:"difference"`
	IsReconciled     bool            `json:"isReconciled"`
	Display          string          `json:"display"`
	People           []PersonTotals  `json:"people"`
}

type Validation struct {
	IsComplete               bool     `json:"isComplete"`
	UnassignedItemIDs        []string `json:"unassignedItemIds"`
	PartiallyAssignedItemIDs []string `json:"partiallyAssignedItemIds"`
	OverAssignedItemIDs      []string `json:"overAssignedItemIds"`
}

type Collection struct {
	Collected       decimal.Decimal `json:"collected"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	Settled         bool            `json:"settled"`
	PaidPersonIDs   []string        `json:"paidPersonIds"`
	UnpaidPersonIDs []string        `json:"unpaidPersonIds"`
}

// BillDetail is the full read view of one bill, returned by every bill edit.
type BillDetail struct {
	Bill       Bill       `json:"bill"`
	Items      []Item     `json:"items"`
	People     []Person   `json:"people"`
	Splits     []Split    `json:"splits"`
	Totals     Totals     `json:"totals"`
	Validation Validation `json:"validation"`
	Collection Collection `json:"collection"`
}

type BillSummary struct {
	Bill         Bill            `json:"bill"`
	GrandTotal   decimal.Decimal `json:"grandTotal"`
	Display      string          `json:"display"`
	PeopleCount  int             `json:"peopleCount"`
	IsReconciled bool            `json:"isReconciled"`
}

// Requests and responses.

type Empty struct{}

type CreateBillRequest struct {
	Name string `json:"name"`
}

type BillRequest struct {
	BillID string `json:"billId"`
}

// UpdateBillRequest edits only the fields that are set.
type UpdateBillRequest struct {
	BillID                  string           `json:"billId"`
	Name                    *string          `json:"name,omitempty"`
	Date                    *time.Time       `json:"date,omitempty"`
	Notes                   *string          `json:"notes,omitempty"`
	DiscountPercentage      *decimal.Decimal `json:"discountPercentage,omitempty"`
	ServiceChargePercentage *decimal.Decimal `json:"serviceChargePercentage,omitempty"`
	TaxPercentage           *decimal.Decimal `json:"taxPercentage,omitempty"`
	Currency                *string          `json:"currency,omitempty"`
	PayeeName               *string          `json:"payeeName,omitempty"`
	PayeeMethod             *string          `json:"payeeMethod,omitempty"`
	PayeeDetails            *string          `json:"payeeDetails,omitempty"`
	Archived                *bool            `json:"archived,omitempty"`
}

type ListBillsRequest struct {
	Search string `json:"search,omitempty"`
	// Archival is "active" (default), "archived" or "all".
	Archival string `json:"archival,omitempty"`
	// SortBy is "date" (default), "name" or "grand_total".
	SortBy    string `json:"sortBy,omitempty"`
	Ascending bool   `json:"ascending,omitempty"`
}

type ListBillsResponse struct {
	Bills []BillSummary `json:"bills"`
}

type AddItemRequest struct {
	BillID string          `json:"billId"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	// Quantity defaults to 1 when zero.
	Quantity int `json:"quantity,omitempty"`
}

type EditItemRequest struct {
	ItemID   string           `json:"itemId"`
	Name     *string          `json:"name,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Quantity *int             `json:"quantity,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
}

type ItemRequest struct {
	ItemID string `json:"itemId"`
}

type AddPersonRequest struct {
	BillID string `json:"billId"`
	Name   string `json:"name"`
}

type AddPersonFromContactRequest struct {
	BillID    string `json:"billId"`
	ContactID string `json:"contactId"`
}

// EditPersonRequest edits a bill participant or, via EditContact, a contact.
type EditPersonRequest struct {
	PersonID       string  `json:"personId"`
	Name           *string `json:"name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	PaymentMethod  *string `json:"paymentMethod,omitempty"`
	PaymentDetails *string `json:"paymentDetails,omitempty"`
}

type PersonRequest struct {
	PersonID string `json:"personId"`
}

type SetPaidRequest struct {
	PersonID string `json:"personId"`
	Paid     bool   `json:"paid"`
	Method   string `json:"method,omitempty"`
}

type AssignWholeRequest struct {
	ItemID   string `json:"itemId"`
	PersonID string `json:"personId"`
}

type SplitEquallyRequest struct {
	ItemID    string   `json:"itemId"`
	PersonIDs []string `json:"personIds"`
}

type CustomSplitRequest struct {
	ItemID   string          `json:"itemId"`
	PersonID string          `json:"personId"`
	Amount   decimal.Decimal `json:"amount"`
}

type SplitRequest struct {
	SplitID string `json:"splitId"`
}

type ExportResponse struct {
	Filename string `json:"filename"`
	CSV      string `json:"csv"`
	Summary  string `json:"summary"`
}

type CreateContactRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone,omitempty"`
	PaymentMethod  string `json:"paymentMethod,omitempty"`
	PaymentDetails string `json:"paymentDetails,omitempty"`
}

type ContactRequest struct {
	ContactID string `json:"contactId"`
}

type ListContactsResponse struct {
	Contacts []Person `json:"contacts"`
}

// Conversions from the domain to wire messages.

func toBill(b models.Bill) Bill {
	return Bill{
		ID:                      b.ID,
		Name:                    b.Name,
		Date:                    b.Date,
		Notes:                   b.Notes,
		DiscountPercentage:      b.DiscountPercentage,
		ServiceChargePercentage: b.ServiceChargePercentage,
		TaxPercentage:           b.TaxPercentage,
		Currency:                b.Currency,
		CurrencySymbol:          currency.Symbol(b.Currency),
		PayeeName:               b.PayeeName,
		PayeeMethod:             b.PayeeMethod,
		PayeeDetails:            b.PayeeDetails,
		Archived:                b.Archived,
		CreatedAt:               b.CreatedAt,
		UpdatedAt:               b.UpdatedAt,
	}
}

func toItem(i models.BillItem) Item {
	return Item{
		ID:          i.ID,
		BillID:      i.BillID,
		Name:        i.Name,
		Amount:      i.Amount,
		Quantity:    i.Quantity,
		TotalAmount: i.TotalAmount(),
		Notes:       i.Notes,
		SortOrder:   i.SortOrder,
	}
}

func toPerson(p models.Person) Person {
	out := Person{
		ID:             p.ID,
		BillID:         p.BillID,
		Name:           p.Name,
		Phone:          p.Phone,
		PaymentMethod:  p.PaymentMethod,
		PaymentDetails: p.PaymentDetails,
		IsContact:      p.IsContact,
		HasPaid:        p.HasPaid,
		PaidAt:         p.PaidAt,
	}
	if p.PaymentMethodUsed != nil {
		out.PaymentMethodUsed = *p.PaymentMethodUsed
	}
	return out
}

func toSplit(s models.ItemSplit) Split {
	return Split{
		ID:             s.ID,
		ItemID:         s.ItemID,
		PersonID:       s.PersonID,
		Amount:         s.Amount,
		Percentage:     s.Percentage,
		IsManualAmount: s.IsManualAmount,
	}
}

func toPersonTotals(p calculator.PersonBreakdown, code string) PersonTotals {
	items := make([]PersonItem, len(p.Items))
	for i, item := range p.Items {
		items[i] = PersonItem{
			SplitID:     item.SplitID,
			ItemID:      item.ItemID,
			Description: item.Description,
			Amount:      item.Amount,
			Percentage:  item.Percentage,
			IsManual:    item.IsManual,
		}
	}
	return PersonTotals{
		PersonID:       p.PersonID,
		Name:           p.Name,
		HasPaid:        p.HasPaid,
		Subtotal:       p.Subtotal,
		DiscountAmount: p.DiscountAmount,
		AfterDiscount:  p.AfterDiscount,
		ServiceCharge:  p.ServiceCharge,
		Tax:            p.Tax,
		FinalAmount:    p.FinalAmount,
		Display:        currency.Format(p.FinalAmount, code),
		Items:          items,
	}
}

func toTotals(t calculator.BillTotals, code string) Totals {
	people := make([]PersonTotals, len(t.People))
	for i, p := range t.People {
		people[i] = toPersonTotals(p, code)
	}
	return Totals{
		Subtotal:         t.Subtotal,
		DiscountAmount:   t.DiscountAmount,
		AfterDiscount:    t.AfterDiscount,
		ServiceCharge:    t.ServiceCharge,
		Tax:              t.Tax,
		GrandTotal:       t.GrandTotal,
		TotalFromPeople:  t.TotalFromPeople,
		UnassignedAmount: t.UnassignedAmount,
		Difference:       t.Difference,
		IsReconciled:     t.IsReconciled(),
		Display:          currency.Format(t.GrandTotal, code),
		People:           people,
	}
}

func itemIDs(items []models.BillItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func personIDs(people []calculator.PersonBreakdown) []string {
	ids := make([]string, len(people))
	for i, p := range people {
		ids[i] = p.PersonID
	}
	return ids
}

// toDetail assembles the read view of a snapshot.
func toDetail(snap *models.Snapshot, totals calculator.BillTotals) *BillDetail {
	code := snap.Bill.Currency
	d := &BillDetail{
		Bill:   toBill(snap.Bill),
		Items:  make([]Item, len(snap.Items)),
		People: make([]Person, len(snap.People)),
		Splits: make([]Split, len(snap.Splits)),
		Totals: toTotals(totals, code),
	}
	for i, item := range snap.Items {
		d.Items[i] = toItem(item)
	}
	for i, p := range snap.People {
		d.People[i] = toPerson(p)
	}
	for i, s := range snap.Splits {
		d.Splits[i] = toSplit(s)
	}

	v := calculator.ValidateAssignments(snap)
	d.Validation = Validation{
		IsComplete:               v.IsComplete,
		UnassignedItemIDs:        itemIDs(v.UnassignedItems),
		PartiallyAssignedItemIDs: itemIDs(v.PartiallyAssignedItems),
		OverAssignedItemIDs:      itemIDs(v.OverAssignedItems),
	}

	c := calculator.CollectionStatus(totals)
	d.Collection = Collection{
		Collected:       c.Collected,
		Outstanding:     c.Outstanding,
		Settled:         c.Settled(),
		PaidPersonIDs:   personIDs(c.Paid),
		UnpaidPersonIDs: personIDs(c.Unpaid),
	}
	return d
}
