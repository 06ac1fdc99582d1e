package testutil

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/starford/rolodex/internal/apperr"
	"github.com/starford/rolodex/internal/dataservice"
	"github.com/starford/rolodex/internal/models"
)

// FakeService is an in-memory dataservice.Service. It validates like the
// fixture service and counts calls so tests can assert on round trips.
type FakeService struct {
	mu       sync.Mutex
	nextID   int
	contacts []models.Contact
	calls    map[string]int

	// ListErr, when set, is returned by List instead of the contacts.
	ListErr error
	// MutateErr, when set, is returned by Create, Update and Delete.
	MutateErr error
	// DeleteStarted receives a value when Delete begins, if non-nil.
	DeleteStarted chan struct{}
	// DeleteGate blocks Delete until it is closed or receives, if non-nil.
	DeleteGate chan struct{}
}

var _ dataservice.Service = (*FakeService)(nil)

// NewFakeService seeds a fake with contacts. Seeds without an id get one.
func NewFakeService(seed ...models.Contact) *FakeService {
	f := &FakeService{calls: make(map[string]int)}
	for _, c := range seed {
		if c.ID == "" {
			f.nextID++
			c.ID = models.ContactID(strconv.Itoa(f.nextID))
		}
		f.contacts = append(f.contacts, c.Clone())
	}
	return f
}

// Calls returns how many times the named method ran.
func (f *FakeService) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// SetContacts replaces the server-side data, simulating an out-of-band edit.
func (f *FakeService) SetContacts(cs ...models.Contact) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts = nil
	for _, c := range cs {
		f.contacts = append(f.contacts, c.Clone())
	}
}

func (f *FakeService) List(_ context.Context) ([]models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["List"]++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]models.Contact, len(f.contacts))
	for i, c := range f.contacts {
		out[i] = c.Clone()
	}
	return out, nil
}

func (f *FakeService) Create(_ context.Context, p dataservice.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Create"]++
	if f.MutateErr != nil {
		return f.MutateErr
	}
	if err := validatePayload("create contact", p); err != nil {
		return err
	}
	f.nextID++
	f.contacts = append(f.contacts, contactFromPayload(models.ContactID(strconv.Itoa(f.nextID)), p))
	return nil
}

func (f *FakeService) Update(_ context.Context, id models.ContactID, p dataservice.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Update"]++
	if f.MutateErr != nil {
		return f.MutateErr
	}
	if err := validatePayload("update contact", p); err != nil {
		return err
	}
	i := f.indexOf(id)
	if i < 0 {
		return apperr.FromStatus("update contact", http.StatusNotFound, "contact not found")
	}
	f.contacts[i] = contactFromPayload(id, p)
	return nil
}

func (f *FakeService) Delete(_ context.Context, id models.ContactID) error {
	if f.DeleteStarted != nil {
		f.DeleteStarted <- struct{}{}
	}
	if f.DeleteGate != nil {
		<-f.DeleteGate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Delete"]++
	if f.MutateErr != nil {
		return f.MutateErr
	}
	i := f.indexOf(id)
	if i < 0 {
		return apperr.FromStatus("delete contact", http.StatusNotFound, "contact not found")
	}
	f.contacts = slices.Delete(f.contacts, i, i+1)
	return nil
}

func (f *FakeService) indexOf(id models.ContactID) int {
	return slices.IndexFunc(f.contacts, func(c models.Contact) bool { return c.ID == id })
}

func validatePayload(op string, p dataservice.Payload) error {
	var missing []string
	for name, v := range map[string]string{
		models.FieldFullName:    p.FullName,
		models.FieldEmail:       p.Email,
		models.FieldPhoneNumber: p.PhoneNumber,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return apperr.FromStatus(op, http.StatusBadRequest, strings.Join(missing, ", ")+": cannot be blank")
	}
	return nil
}

func contactFromPayload(id models.ContactID, p dataservice.Payload) models.Contact {
	return models.Contact{
		ID:          id,
		FullName:    p.FullName,
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
		Tags:        models.ParseTags(p.Tags),
	}
}
