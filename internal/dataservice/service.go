// Package dataservice talks to the remote contacts data service.
package dataservice

import (
	"context"
	"encoding/json"

	"github.com/starford/rolodex/internal/models"
)

// Service is the data-service boundary consumed by the contact store.
type Service interface {
	// List returns every contact with tags already parsed.
	List(ctx context.Context) ([]models.Contact, error)
	// Create submits a new contact.
	Create(ctx context.Context, p Payload) error
	// Update replaces the contact identified by id.
	Update(ctx context.Context, id models.ContactID, p Payload) error
	// Delete removes the contact identified by id.
	Delete(ctx context.Context, id models.ContactID) error
}

// Payload is the JSON body for create and update requests.
type Payload struct {
	ID          models.ContactID `json:"id,omitempty"`
	FullName    string           `json:"full_name"`
	Email       string           `json:"email"`
	PhoneNumber string           `json:"phone_number"`
	Tags        string           `json:"tags"`
}

// PayloadFromFields normalizes a flattened form record. The tags field is
// split, trimmed and re-joined so the service never sees empty tags.
func PayloadFromFields(f models.Fields) Payload {
	return Payload{
		FullName:    f[models.FieldFullName],
		Email:       f[models.FieldEmail],
		PhoneNumber: f[models.FieldPhoneNumber],
		Tags:        models.JoinTags(models.ParseTags(f[models.FieldTags])),
	}
}

// Record is a contact as returned by GET /contacts. Tags travel as a
// comma-joined string and may be absent.
type Record struct {
	ID          models.ContactID `json:"id"`
	FullName    string           `json:"full_name"`
	Email       string           `json:"email"`
	PhoneNumber string           `json:"phone_number"`
	Tags        *string          `json:"tags,omitempty"`
}

// Contact converts the wire record into the domain type.
func (r Record) Contact() models.Contact {
	tags := []string{}
	if r.Tags != nil {
		tags = models.ParseTags(*r.Tags)
	}
	return models.Contact{
		ID:          r.ID,
		FullName:    r.FullName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Tags:        tags,
	}
}

// DecodeRecords parses a GET /contacts body into domain contacts.
func DecodeRecords(data []byte) ([]models.Contact, error) {
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, err
	}
	out := make([]models.Contact, len(recs))
	for i, r := range recs {
		out[i] = r.Contact()
	}
	return out, nil
}
