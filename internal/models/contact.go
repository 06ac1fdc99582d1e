// Package models defines the domain types for Rolodex.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ContactID is the opaque identifier assigned by the contacts data service.
// The zero value means the contact has not been created yet.
type ContactID string

// String returns the raw identifier.
func (id ContactID) String() string { return string(id) }

// UnmarshalJSON accepts both JSON strings and JSON numbers, since data
// services commonly hand out integer primary keys.
func (id *ContactID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ContactID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("contact id: %w", err)
	}
	*id = ContactID(n.String())
	return nil
}

// Contact is a single entry in the address book.
type Contact struct {
	ID          ContactID `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Tags        []string  `json:"tags"`
}

// Clone returns a deep copy of c so the tag slice is never shared.
func (c Contact) Clone() Contact {
	out := c
	out.Tags = append([]string{}, c.Tags...)
	return out
}

// HasTag reports whether c carries tag, compared case-sensitively.
func (c Contact) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Form field names used on the wire and in submitted forms.
const (
	FieldFullName    = "full_name"
	FieldEmail       = "email"
	FieldPhoneNumber = "phone_number"
	FieldTags        = "tags"
)

// RequiredFields lists the form fields that must be non-blank.
var RequiredFields = []string{FieldFullName, FieldEmail, FieldPhoneNumber}

// FormField is one name/value entry of a serialized form.
type FormField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Fields is a flattened form record keyed by field name.
type Fields map[string]string

// FieldsFromForm flattens a serialized form. Later entries win over earlier
// ones with the same name.
func FieldsFromForm(form []FormField) Fields {
	out := make(Fields, len(form))
	for _, f := range form {
		out[f.Name] = f.Value
	}
	return out
}

// FieldsFromContact produces the form record that would recreate c.
func FieldsFromContact(c Contact) Fields {
	return Fields{
		FieldFullName:    c.FullName,
		FieldEmail:       c.Email,
		FieldPhoneNumber: c.PhoneNumber,
		FieldTags:        JoinTags(c.Tags),
	}
}

// Blank returns the required fields that are missing or whitespace only,
// in RequiredFields order.
func (f Fields) Blank() []string {
	var out []string
	for _, name := range RequiredFields {
		if strings.TrimSpace(f[name]) == "" {
			out = append(out, name)
		}
	}
	return out
}
