package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/billbook"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// CreateContact saves a reusable person outside any bill.
func (s *BillService) CreateContact(ctx context.Context, req *connect.Request[CreateContactRequest]) (*connect.Response[Person], error) {
	m := req.Msg
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return nil, invalidArgument("contact name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contact := s.book.CreateContact(models.Person{
		Name:           name,
		Phone:          m.Phone,
		PaymentMethod:  m.PaymentMethod,
		PaymentDetails: m.PaymentDetails,
	})
	if err := s.store.SaveContact(ctx, contact); err != nil {
		slog.Error("CreateContact failed", "error", err)
		_ = s.book.DeleteContact(contact.ID)
		return nil, toConnectError(err)
	}
	slog.Info("Contact created", "contact_id", contact.ID)
	return connect.NewResponse(ptr(toPerson(contact))), nil
}

// ListContacts returns every contact in creation order.
func (s *BillService) ListContacts(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListContactsResponse], error) {
	s.mu.Lock()
	contacts := s.book.Contacts()
	s.mu.Unlock()

	resp := &ListContactsResponse{Contacts: make([]Person, len(contacts))}
	for i, c := range contacts {
		resp.Contacts[i] = toPerson(c)
	}
	return connect.NewResponse(resp), nil
}

// EditContact edits a contact. Bill copies made earlier keep their values.
func (s *BillService) EditContact(ctx context.Context, req *connect.Request[EditPersonRequest]) (*connect.Response[Person], error) {
	m := req.Msg
	if m.Name != nil && strings.TrimSpace(*m.Name) == "" {
		return nil, invalidArgument("contact name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.book.Contact(m.PersonID)
	edited, err := s.book.EditContact(m.PersonID, func(p *models.Person) { applyPersonEdit(p, m) })
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.SaveContact(ctx, edited); err != nil {
		slog.Error("EditContact failed", "contact_id", m.PersonID, "error", err)
		if ok {
			_, _ = s.book.EditContact(m.PersonID, func(p *models.Person) { *p = before })
		}
		return nil, toConnectError(err)
	}
	return connect.NewResponse(ptr(toPerson(edited))), nil
}

// DeleteContact removes a contact. Bill copies made earlier are untouched.
func (s *BillService) DeleteContact(ctx context.Context, req *connect.Request[ContactRequest]) (*connect.Response[Empty], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := req.Msg.ContactID
	if _, ok := s.book.Contact(id); !ok {
		return nil, toConnectError(fmt.Errorf("%w: %s", billbook.ErrContactNotFound, id))
	}
	if err := s.store.DeleteContact(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Error("DeleteContact failed", "contact_id", id, "error", err)
		return nil, toConnectError(err)
	}
	if err := s.book.DeleteContact(id); err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Contact deleted", "contact_id", id)
	return connect.NewResponse(&Empty{}), nil
}

func ptr[T any](v T) *T {
	return &v
}
