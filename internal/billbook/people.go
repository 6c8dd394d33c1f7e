package billbook

import (
	"fmt"
	"time"

	"github.com/mmynk/billsplit/internal/models"
)

// AddPerson adds a participant to a bill.
func (b *Book) AddPerson(billID, name string) (models.Person, error) {
	if _, ok := b.bills[billID]; !ok {
		return models.Person{}, fmt.Errorf("%w: %s", ErrBillNotFound, billID)
	}
	now := b.now()
	p := b.insertPerson(billID, models.Person{Name: name}, now)
	return clonePerson(p), nil
}

// AddPersonFromContact adds a bill-scoped copy of a contact: same name, phone
// and payment preferences, fresh ID, no payment state.
func (b *Book) AddPersonFromContact(billID, contactID string) (models.Person, error) {
	if _, ok := b.bills[billID]; !ok {
		return models.Person{}, fmt.Errorf("%w: %s", ErrBillNotFound, billID)
	}
	contact, ok := b.contacts[contactID]
	if !ok {
		if _, inBill := b.people[contactID]; inBill {
			return models.Person{}, ErrNotAContact
		}
		return models.Person{}, fmt.Errorf("%w: %s", ErrContactNotFound, contactID)
	}
	now := b.now()
	p := b.insertPerson(billID, copyOf(*contact), now)
	return clonePerson(p), nil
}

// EditPerson applies a direct field edit to a bill participant. Identity,
// bill membership and payment state are not editable here; use SetPaid.
func (b *Book) EditPerson(personID string, edit func(*models.Person)) (models.Person, error) {
	p, ok := b.people[personID]
	if !ok {
		return models.Person{}, fmt.Errorf("%w: %s", ErrPersonNotFound, personID)
	}
	edited := clonePerson(p)
	edit(&edited)
	p.Name = edited.Name
	p.Phone = edited.Phone
	p.PaymentMethod = edited.PaymentMethod
	p.PaymentDetails = edited.PaymentDetails
	b.touch(p.BillID, b.now())
	return clonePerson(p), nil
}

// RemovePerson deletes a participant and every split they owe, unlinking
// those splits from their items.
func (b *Book) RemovePerson(personID string) error {
	p, ok := b.people[personID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPersonNotFound, personID)
	}
	for _, splitID := range b.personSplits[personID] {
		split := b.splits[splitID]
		b.itemSplits[split.ItemID] = removeID(b.itemSplits[split.ItemID], splitID)
		delete(b.splits, splitID)
	}
	delete(b.personSplits, personID)
	delete(b.people, personID)
	b.billPeople[p.BillID] = removeID(b.billPeople[p.BillID], personID)
	b.touch(p.BillID, b.now())
	return nil
}

// SetPaid toggles a participant's payment state. Marking paid stamps PaidAt
// (kept if already paid) and records method when given; marking unpaid
// clears both.
func (b *Book) SetPaid(personID string, paid bool, method string) (models.Person, error) {
	p, ok := b.people[personID]
	if !ok {
		return models.Person{}, fmt.Errorf("%w: %s", ErrPersonNotFound, personID)
	}
	now := b.now()
	if paid {
		if !p.HasPaid {
			at := now
			p.PaidAt = &at
		}
		p.HasPaid = true
		if method != "" {
			m := method
			p.PaymentMethodUsed = &m
		}
	} else {
		p.HasPaid = false
		p.PaidAt = nil
		p.PaymentMethodUsed = nil
	}
	b.touch(p.BillID, now)
	return clonePerson(p), nil
}

// CreateContact stores a reusable person template outside any bill.
func (b *Book) CreateContact(c models.Person) models.Person {
	contact := &models.Person{
		ID:             newID(),
		Name:           c.Name,
		Phone:          c.Phone,
		PaymentMethod:  c.PaymentMethod,
		PaymentDetails: c.PaymentDetails,
		IsContact:      true,
		CreatedAt:      b.now(),
	}
	b.contacts[contact.ID] = contact
	b.contactOrder = append(b.contactOrder, contact.ID)
	return *contact
}

// LoadContact inserts a previously persisted contact as-is.
func (b *Book) LoadContact(c models.Person) error {
	if _, exists := b.contacts[c.ID]; exists {
		return fmt.Errorf("%w: contact %s", ErrAlreadyExists, c.ID)
	}
	if !c.IsContact || c.BillID != "" {
		return ErrNotAContact
	}
	contact := clonePerson(&c)
	b.contacts[c.ID] = &contact
	b.contactOrder = append(b.contactOrder, c.ID)
	return nil
}

// Contact returns one contact.
func (b *Book) Contact(id string) (models.Person, bool) {
	c, ok := b.contacts[id]
	if !ok {
		return models.Person{}, false
	}
	return *c, true
}

// Contacts returns all contacts in creation order.
func (b *Book) Contacts() []models.Person {
	out := make([]models.Person, 0, len(b.contactOrder))
	for _, id := range b.contactOrder {
		out = append(out, *b.contacts[id])
	}
	return out
}

// EditContact edits a contact's name, phone and payment preferences.
// Bill copies made earlier are unaffected.
func (b *Book) EditContact(id string, edit func(*models.Person)) (models.Person, error) {
	c, ok := b.contacts[id]
	if !ok {
		return models.Person{}, fmt.Errorf("%w: %s", ErrContactNotFound, id)
	}
	edited := *c
	edit(&edited)
	c.Name = edited.Name
	c.Phone = edited.Phone
	c.PaymentMethod = edited.PaymentMethod
	c.PaymentDetails = edited.PaymentDetails
	return *c, nil
}

// DeleteContact removes a contact. Bill copies made earlier are unaffected.
func (b *Book) DeleteContact(id string) error {
	if _, ok := b.contacts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrContactNotFound, id)
	}
	delete(b.contacts, id)
	b.contactOrder = removeID(b.contactOrder, id)
	return nil
}

func (b *Book) insertPerson(billID string, p models.Person, at time.Time) *models.Person {
	p.ID = newID()
	p.BillID = billID
	p.IsContact = false
	p.CreatedAt = at
	b.people[p.ID] = &p
	b.billPeople[billID] = append(b.billPeople[billID], p.ID)
	b.touch(billID, at)
	return &p
}

// copyOf keeps only the fields a bill copy inherits.
func copyOf(p models.Person) models.Person {
	return models.Person{
		Name:           p.Name,
		Phone:          p.Phone,
		PaymentMethod:  p.PaymentMethod,
		PaymentDetails: p.PaymentDetails,
	}
}

func clonePerson(p *models.Person) models.Person {
	out := *p
	if p.PaidAt != nil {
		at := *p.PaidAt
		out.PaidAt = &at
	}
	if p.PaymentMethodUsed != nil {
		m := *p.PaymentMethodUsed
		out.PaymentMethodUsed = &m
	}
	return out
}
