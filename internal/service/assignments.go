package service

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/billbook"
	"github.com/mmynk/billsplit/internal/models"
)

// AddItem appends an item to a bill.
func (s *BillService) AddItem(ctx context.Context, req *connect.Request[AddItemRequest]) (*connect.Response[BillDetail], error) {
	m := req.Msg
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return nil, invalidArgument("item name is required")
	}
	quantity := m.Quantity
	if quantity == 0 {
		quantity = 1
	}
	return s.editBill(ctx, m.BillID, func() error {
		_, err := s.book.AddItem(m.BillID, name, m.Amount, quantity)
		return err
	})
}

// EditItem edits the item fields present in the request. Existing splits
// keep their amounts; reassign to pick up a new price.
func (s *BillService) EditItem(ctx context.Context, req *connect.Request[EditItemRequest]) (*connect.Response[BillDetail], error) {
	m := req.Msg
	if m.Name != nil && strings.TrimSpace(*m.Name) == "" {
		return nil, invalidArgument("item name must not be empty")
	}
	return s.editOwned(ctx, m.ItemID, billbook.ErrItemNotFound, func() error {
		_, err := s.book.EditItem(m.ItemID, func(i *models.BillItem) {
			if m.Name != nil {
				i.Name = strings.TrimSpace(*m.Name)
			}
			if m.Amount != nil {
				i.Amount = *m.Amount
			}
			if m.Quantity != nil {
				i.Quantity = *m.Quantity
			}
			if m.Notes != nil {
				i.Notes = *m.Notes
			}
		})
		return err
	})
}

// RemoveItem deletes an item and its splits.
func (s *BillService) RemoveItem(ctx context.Context, req *connect.Request[ItemRequest]) (*connect.Response[BillDetail], error) {
	return s.editOwned(ctx, req.Msg.ItemID, billbook.ErrItemNotFound, func() error {
		return s.book.RemoveItem(req.Msg.ItemID)
	})
}

// AddPerson adds a new participant to a bill.
func (s *BillService) AddPerson(ctx context.Context, req *connect.Request[AddPersonRequest]) (*connect.Response[BillDetail], error) {
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("person name is required")
	}
	return s.editBill(ctx, req.Msg.BillID, func() error {
		_, err := s.book.AddPerson(req.Msg.BillID, name)
		return err
	})
}

// AddPersonFromContact adds a bill copy of a saved contact.
func (s *BillService) AddPersonFromContact(ctx context.Context, req *connect.Request[AddPersonFromContactRequest]) (*connect.Response[BillDetail], error) {
	return s.editBill(ctx, req.Msg.BillID, func() error {
		_, err := s.book.AddPersonFromContact(req.Msg.BillID, req.Msg.ContactID)
		return err
	})
}

// EditPerson edits a participant's name, phone or payment preferences.
func (s *BillService) EditPerson(ctx context.Context, req *connect.Request[EditPersonRequest]) (*connect.Response[BillDetail], error) {
	m := req.Msg
	if m.Name != nil && strings.TrimSpace(*m.Name) == "" {
		return nil, invalidArgument("person name must not be empty")
	}
	return s.editOwned(ctx, m.PersonID, billbook.ErrPersonNotFound, func() error {
		_, err := s.book.EditPerson(m.PersonID, func(p *models.Person) { applyPersonEdit(p, m) })
		return err
	})
}

// RemovePerson deletes a participant and everything they owe.
func (s *BillService) RemovePerson(ctx context.Context, req *connect.Request[PersonRequest]) (*connect.Response[BillDetail], error) {
	return s.editOwned(ctx, req.Msg.PersonID, billbook.ErrPersonNotFound, func() error {
		return s.book.RemovePerson(req.Msg.PersonID)
	})
}

// SetPaid marks a participant as paid or unpaid.
func (s *BillService) SetPaid(ctx context.Context, req *connect.Request[SetPaidRequest]) (*connect.Response[BillDetail], error) {
	m := req.Msg
	return s.editOwned(ctx, m.PersonID, billbook.ErrPersonNotFound, func() error {
		_, err := s.book.SetPaid(m.PersonID, m.Paid, strings.TrimSpace(m.Method))
		return err
	})
}

// AssignWhole gives an entire item to one person.
func (s *BillService) AssignWhole(ctx context.Context, req *connect.Request[AssignWholeRequest]) (*connect.Response[BillDetail], error) {
	return s.editOwned(ctx, req.Msg.ItemID, billbook.ErrItemNotFound, func() error {
		_, err := s.book.AssignWhole(req.Msg.ItemID, req.Msg.PersonID)
		return err
	})
}

// SplitEqually shares an item equally among people.
func (s *BillService) SplitEqually(ctx context.Context, req *connect.Request[SplitEquallyRequest]) (*connect.Response[BillDetail], error) {
	return s.editOwned(ctx, req.Msg.ItemID, billbook.ErrItemNotFound, func() error {
		_, err := s.book.SplitEqually(req.Msg.ItemID, req.Msg.PersonIDs)
		return err
	})
}

// CustomSplit records a typed amount one person owes for an item.
func (s *BillService) CustomSplit(ctx context.Context, req *connect.Request[CustomSplitRequest]) (*connect.Response[BillDetail], error) {
	m := req.Msg
	return s.editOwned(ctx, m.ItemID, billbook.ErrItemNotFound, func() error {
		_, err := s.book.CustomSplit(m.ItemID, m.PersonID, m.Amount)
		return err
	})
}

// RemoveSplit deletes one split.
func (s *BillService) RemoveSplit(ctx context.Context, req *connect.Request[SplitRequest]) (*connect.Response[BillDetail], error) {
	return s.editOwned(ctx, req.Msg.SplitID, billbook.ErrSplitNotFound, func() error {
		return s.book.RemoveSplit(req.Msg.SplitID)
	})
}

// ClearAllSplits removes every split of an item.
func (s *BillService) ClearAllSplits(ctx context.Context, req *connect.Request[ItemRequest]) (*connect.Response[BillDetail], error) {
	return s.editOwned(ctx, req.Msg.ItemID, billbook.ErrItemNotFound, func() error {
		return s.book.ClearAllSplits(req.Msg.ItemID)
	})
}

func applyPersonEdit(p *models.Person, m *EditPersonRequest) {
	if m.Name != nil {
		p.Name = strings.TrimSpace(*m.Name)
	}
	if m.Phone != nil {
		p.Phone = *m.Phone
	}
	if m.PaymentMethod != nil {
		p.PaymentMethod = *m.PaymentMethod
	}
	if m.PaymentDetails != nil {
		p.PaymentDetails = *m.PaymentDetails
	}
}
