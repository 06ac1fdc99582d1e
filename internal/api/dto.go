package api

import (
	"github.com/starford/rolodex/internal/models"
	"github.com/starford/rolodex/internal/presenter"
)

// ViewResponse is the rendered screen returned by view and mutation routes.
type ViewResponse = presenter.View

// ContactDetail is a single cached contact.
type ContactDetail = models.Contact

// TagsResponse wraps the tag vocabulary.
type TagsResponse struct {
	Tags []string `json:"tags" example:"work,home" validate:"required"`
}

// ContactRequest is the object form of a create/update body. The
// serialized-form array [{"name": ..., "value": ...}] is accepted too.
type ContactRequest struct {
	FullName    string `json:"full_name" example:"Amy Chen" validate:"required"`
	Email       string `json:"email" example:"amy@example.com" validate:"required"`
	PhoneNumber string `json:"phone_number" example:"555-0101" validate:"required"`
	Tags        string `json:"tags" example:"work, climbing"`
}

// ValidationErrorResponse lists the blank required fields.
type ValidationErrorResponse struct {
	Error  string            `json:"error" example:"validation failed" validate:"required"`
	Fields map[string]string `json:"fields" validate:"required"`
}
