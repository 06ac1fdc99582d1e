// Package contactstore owns the in-memory contact cache. Queries are
// answered from the cache alone; mutations go to the data service and leave
// the cache alone until the next FetchAll.
package contactstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/rolodex/internal/apperr"
	"github.com/starford/rolodex/internal/checksum"
	"github.com/starford/rolodex/internal/dataservice"
	"github.com/starford/rolodex/internal/models"
)

// Store is the single source of truth for contact data.
type Store struct {
	svc    dataservice.Service
	logger *slog.Logger

	mu       sync.RWMutex
	contacts []models.Contact
	revision string
	loaded   bool
}

// New creates an empty store backed by svc.
func New(svc dataservice.Service, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{svc: svc, logger: logger, contacts: []models.Contact{}}
}

// FetchAll replaces the cache with the service's current contact list and
// returns a copy of it. On error the cache is left as it was.
func (s *Store) FetchAll(ctx context.Context) ([]models.Contact, error) {
	fetched, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch contacts: %w", err)
	}

	next := make([]models.Contact, len(fetched))
	for i, c := range fetched {
		next[i] = normalize(c)
	}
	rev := revisionOf(next)

	s.mu.Lock()
	changed := rev != s.revision
	s.contacts = next
	s.revision = rev
	s.loaded = true
	s.mu.Unlock()

	s.logger.Debug("store: cache replaced",
		slog.Int("contacts", len(next)),
		slog.Bool("changed", changed),
		slog.String("revision", rev))

	return cloneAll(next), nil
}

// SearchByName returns the cached contacts whose full name contains query,
// ignoring case. An empty query matches every contact.
func (s *Store) SearchByName(query string) []models.Contact {
	needle := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Contact{}
	for _, c := range s.contacts {
		if strings.Contains(strings.ToLower(c.FullName), needle) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// FilterByTag returns the cached contacts carrying tag exactly.
func (s *Store) FilterByTag(tag string) []models.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Contact{}
	for _, c := range s.contacts {
		if c.HasTag(tag) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// TagVocabulary returns every distinct tag in the cache, first-seen order.
func (s *Store) TagVocabulary() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Vocabulary(s.contacts)
}

// Contacts returns a copy of the whole cache.
func (s *Store) Contacts() []models.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.contacts)
}

// Len returns the number of cached contacts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contacts)
}

// GetByID looks a contact up in the cache.
func (s *Store) GetByID(id models.ContactID) (models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.contacts {
		if c.ID == id {
			return c.Clone(), nil
		}
	}
	return models.Contact{}, fmt.Errorf("contact %q: %w", id, apperr.ErrNotFound)
}

// Revision identifies the content of the last successful fetch. It is empty
// until the first fetch succeeds.
func (s *Store) Revision() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Loaded reports whether any fetch has succeeded yet.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Create submits a new contact built from form fields. The cache is not
// touched; callers refresh with FetchAll.
func (s *Store) Create(ctx context.Context, f models.Fields) error {
	if err := s.svc.Create(ctx, dataservice.PayloadFromFields(f)); err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

// Update submits new field values for the contact with the given id.
func (s *Store) Update(ctx context.Context, f models.Fields, id models.ContactID) error {
	p := dataservice.PayloadFromFields(f)
	p.ID = id
	if err := s.svc.Update(ctx, id, p); err != nil {
		return fmt.Errorf("update contact %q: %w", id, err)
	}
	return nil
}

// Delete removes the contact with the given id on the service.
func (s *Store) Delete(ctx context.Context, id models.ContactID) error {
	if err := s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete contact %q: %w", id, err)
	}
	return nil
}

// normalize guarantees a cache entry owns a non-nil tag slice with no empty
// entries, whatever the service implementation handed back.
func normalize(c models.Contact) models.Contact {
	tags := make([]string, 0, len(c.Tags))
	for _, t := range c.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	c.Tags = tags
	return c
}

func cloneAll(cs []models.Contact) []models.Contact {
	out := make([]models.Contact, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}

func revisionOf(cs []models.Contact) string {
	rev, err := checksum.Of(cs)
	if err != nil {
		return ""
	}
	return rev
}
