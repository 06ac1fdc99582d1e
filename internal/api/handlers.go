package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/singleflight"

	"github.com/starford/rolodex/internal/contactstore"
	"github.com/starford/rolodex/internal/coordinator"
	"github.com/starford/rolodex/internal/models"
	"github.com/starford/rolodex/internal/presenter"
)

// Handler holds API route handlers. Each request drives its own
// coordinator over a recorder; refreshes are also pushed to broadcast.
type Handler struct {
	store     *contactstore.Store
	broadcast coordinator.Presenter
	flight    *singleflight.Group
	logger    *slog.Logger
}

// NewHandler creates a Handler. broadcast may be nil.
func NewHandler(store *contactstore.Store, broadcast coordinator.Presenter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:     store,
		broadcast: broadcast,
		flight:    &singleflight.Group{},
		logger:    logger,
	}
}

// query builds a coordinator whose renders only reach this request.
func (h *Handler) query() (*coordinator.Coordinator, *presenter.Recorder) {
	rec := presenter.NewRecorder()
	return coordinator.New(h.store, rec, h.logger, coordinator.WithFlightGroup(h.flight)), rec
}

// refreshing builds a coordinator whose refresh renders also go to every
// stream subscriber.
func (h *Handler) refreshing() (*coordinator.Coordinator, *presenter.Recorder) {
	rec := presenter.NewRecorder()
	var view coordinator.Presenter = rec
	if h.broadcast != nil {
		view = presenter.Fanout{rec, h.broadcast}
	}
	return coordinator.New(h.store, view, h.logger, coordinator.WithFlightGroup(h.flight)), rec
}

// ensureLoaded performs the initial fetch if nothing has been loaded yet.
func (h *Handler) ensureLoaded(r *http.Request) error {
	if h.store.Loaded() {
		return nil
	}
	c, _ := h.refreshing()
	return c.Load(r.Context())
}

// View handles GET /view.
//
//	@Summary		Render the contact list, a name search, or a tag filter
//	@Tags			contacts
//	@Produce		json
//	@Param			search	query		string	false	"Name substring (case-insensitive)"
//	@Param			tag		query		string	false	"Exact tag"
//	@Success		200		{object}	ViewResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/view [get]
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	if err := h.ensureLoaded(r); err != nil {
		writeError(w, h.logger, "load contacts", err)
		return
	}

	c, rec := h.query()
	q := r.URL.Query()
	switch {
	case q.Has("search"):
		c.SearchInput(q.Get("search"))
	case q.Has("tag"):
		c.TagSelected(q.Get("tag"))
	default:
		c.ResetRequested()
	}

	v := rec.View()
	v.Tags = h.store.TagVocabulary()
	writeJSON(w, http.StatusOK, v)
}

// Tags handles GET /tags.
//
//	@Summary		List the tag vocabulary
//	@Tags			contacts
//	@Produce		json
//	@Success		200	{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	if err := h.ensureLoaded(r); err != nil {
		writeError(w, h.logger, "load contacts", err)
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: h.store.TagVocabulary()})
}

// GetContact handles GET /contacts/{id}.
//
//	@Summary		Get a cached contact for editing
//	@Tags			contacts
//	@Produce		json
//	@Param			id	path		string	true	"Contact id"
//	@Success		200	{object}	ContactDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts/{id} [get]
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	if err := h.ensureLoaded(r); err != nil {
		writeError(w, h.logger, "load contacts", err)
		return
	}
	c, _ := h.query()
	contact, err := c.Lookup(models.ContactID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, h.logger, "get contact", err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// CreateContact handles POST /contacts.
//
//	@Summary		Create a contact and return the refreshed list
//	@Tags			contacts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ContactRequest	true	"Contact fields"
//	@Success		201		{object}	ViewResponse
//	@Failure		422		{object}	ValidationErrorResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts [post]
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, models.CreateSubmission(), http.StatusCreated)
}

// UpdateContact handles PUT /contacts/{id}.
//
//	@Summary		Update a contact and return the refreshed list
//	@Tags			contacts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Contact id"
//	@Param			body	body		ContactRequest	true	"Contact fields"
//	@Success		200		{object}	ViewResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	ValidationErrorResponse
//	@Security		BearerAuth
//	@Router			/contacts/{id} [put]
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id := models.ContactID(chi.URLParam(r, "id"))
	h.submit(w, r, models.UpdateSubmission(id), http.StatusOK)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, sub models.Submission, okStatus int) {
	fields, err := decodeFields(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if verr := validateFields(fields); verr != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: verr,
		})
		return
	}

	c, rec := h.refreshing()
	if err := c.FormSubmitted(r.Context(), fields, sub); err != nil {
		writeError(w, h.logger, sub.Kind.String()+" contact", err)
		return
	}
	writeJSON(w, okStatus, rec.View())
}

// DeleteContact handles DELETE /contacts/{id}.
//
//	@Summary		Delete a contact and return the refreshed list
//	@Tags			contacts
//	@Produce		json
//	@Param			id	path		string	true	"Contact id"
//	@Success		200	{object}	ViewResponse
//	@Failure		404	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts/{id} [delete]
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	c, rec := h.refreshing()
	if err := c.DeleteConfirmed(r.Context(), models.ContactID(chi.URLParam(r, "id"))); err != nil {
		writeError(w, h.logger, "delete contact", err)
		return
	}
	writeJSON(w, http.StatusOK, rec.View())
}

// Refresh handles POST /refresh.
//
//	@Summary		Re-fetch every contact from the data service
//	@Tags			contacts
//	@Produce		json
//	@Success		200	{object}	ViewResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	c, rec := h.refreshing()
	if err := c.Load(r.Context()); err != nil {
		writeError(w, h.logger, "refresh contacts", err)
		return
	}
	writeJSON(w, http.StatusOK, rec.View())
}

// decodeFields accepts either a JSON object of fields or a serialized form
// array of {name, value} pairs.
func decodeFields(w http.ResponseWriter, r *http.Request) (models.Fields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, errors.New("invalid JSON body")
	}

	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		var form []models.FormField
		if err := json.Unmarshal(trimmed, &form); err != nil {
			return nil, errors.New("invalid form array")
		}
		return models.FieldsFromForm(form), nil
	}

	var req ContactRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	return models.Fields{
		models.FieldFullName:    req.FullName,
		models.FieldEmail:       req.Email,
		models.FieldPhoneNumber: req.PhoneNumber,
		models.FieldTags:        req.Tags,
	}, nil
}

// validateFields checks that every required field is non-blank. It returns
// a field -> message map, or nil when the form is complete.
func validateFields(f models.Fields) map[string]string {
	trimmed := make(map[string]string, len(models.RequiredFields))
	keys := make([]*validation.KeyRules, 0, len(models.RequiredFields))
	for _, name := range models.RequiredFields {
		trimmed[name] = strings.TrimSpace(f[name])
		keys = append(keys, validation.Key(name, validation.Required.Error("cannot be blank")))
	}

	err := validation.Validate(trimmed, validation.Map(keys...))
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return map[string]string{"form": err.Error()}
	}
	out := make(map[string]string, len(errs))
	for k, e := range errs {
		out[k] = e.Error()
	}
	return out
}
