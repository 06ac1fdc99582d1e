package fixture

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/rolodex/internal/apperr"
	"github.com/starford/rolodex/internal/models"
)

// record is the wire shape of a stored contact. Empty tags are omitted.
type record struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Tags        string `json:"tags,omitempty"`
}

func recordOf(r Row) record {
	return record{ID: r.ID, FullName: r.FullName, Email: r.Email, PhoneNumber: r.PhoneNumber, Tags: r.Tags}
}

// contactBody is the create/update request body. A body id, if any, is
// ignored in favour of the path.
type contactBody struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Tags        string `json:"tags"`
}

func (b *contactBody) normalize() {
	b.FullName = strings.TrimSpace(b.FullName)
	b.Email = strings.TrimSpace(b.Email)
	b.PhoneNumber = strings.TrimSpace(b.PhoneNumber)
	b.Tags = models.JoinTags(models.ParseTags(b.Tags))
}

// Validate checks the required fields and the email format.
func (b *contactBody) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.FullName, validation.Required.Error("cannot be blank")),
		validation.Field(&b.Email, validation.Required.Error("cannot be blank"), is.EmailFormat),
		validation.Field(&b.PhoneNumber, validation.Required.Error("cannot be blank")),
	)
}

// Handler serves the contacts resource over a DB.
type Handler struct {
	db     *DB
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(db *DB, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{db: db, logger: logger}
}

// NewRouter mounts the contacts resource at /contacts. RequestID picks up
// the X-Request-Id header sent by the client so both sides log the same id.
func NewRouter(db *DB, logger *slog.Logger) chi.Router {
	h := NewHandler(db, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/contacts", h.List)
	r.Post("/contacts", h.Create)
	r.Put("/contacts/{id}", h.Update)
	r.Delete("/contacts/{id}", h.Delete)
	return r
}

// List handles GET /contacts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.List(r.Context())
	if err != nil {
		h.fail(w, r, "list", err)
		return
	}
	out := make([]record, len(rows))
	for i, row := range rows {
		out[i] = recordOf(row)
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /contacts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decode(w, r)
	if !ok {
		return
	}
	row := Row{FullName: body.FullName, Email: body.Email, PhoneNumber: body.PhoneNumber, Tags: body.Tags}
	id, err := h.db.Insert(r.Context(), row)
	if err != nil {
		h.fail(w, r, "create", err)
		return
	}
	row.ID = id
	h.logger.Info("fixture: contact created",
		slog.Int64("id", id),
		slog.String("request_id", middleware.GetReqID(r.Context())))
	writeJSON(w, http.StatusCreated, recordOf(row))
}

// Update handles PUT /contacts/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	body, ok := h.decode(w, r)
	if !ok {
		return
	}
	row := Row{ID: id, FullName: body.FullName, Email: body.Email, PhoneNumber: body.PhoneNumber, Tags: body.Tags}
	if err := h.db.Update(r.Context(), row); err != nil {
		h.fail(w, r, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, recordOf(row))
}

// Delete handles DELETE /contacts/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.db.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (contactBody, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var body contactBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return body, false
	}
	body.normalize()
	if err := body.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return body, false
	}
	return body, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("contact not found"))
		return
	}
	h.logger.Error("fixture: "+op+" failed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}

// pathID parses {id}. Ids that cannot exist are reported as not found.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusNotFound, errorBody("contact not found"))
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}
