// Package coordinator turns user intents into store calls and pushes the
// results to a Presenter. It keeps no contact data of its own.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/starford/rolodex/internal/checksum"
	"github.com/starford/rolodex/internal/contactstore"
	"github.com/starford/rolodex/internal/dataservice"
	"github.com/starford/rolodex/internal/models"
)

// Presenter renders what the coordinator hands it.
type Presenter interface {
	Render(contacts []models.Contact)
	RenderEmpty()
	RenderNoMatches(query string)
	RenderTags(tags []string)
}

// Coordinator sequences one intent into one store operation plus, for
// mutations, one refresh-and-render cycle.
type Coordinator struct {
	store  *contactstore.Store
	view   Presenter
	logger *slog.Logger
	flight *singleflight.Group
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithFlightGroup shares mutation deduplication across coordinators. Adapters
// that build one coordinator per request pass the same group to all of them.
func WithFlightGroup(g *singleflight.Group) Option {
	return func(c *Coordinator) {
		c.flight = g
	}
}

// New wires a coordinator to a store and a presenter.
func New(store *contactstore.Store, view Presenter, logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{store: store, view: view, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	if c.flight == nil {
		c.flight = &singleflight.Group{}
	}
	return c
}

// Load fetches the full list and presents it with the tag vocabulary.
func (c *Coordinator) Load(ctx context.Context) error {
	contacts, err := c.store.FetchAll(ctx)
	if err != nil {
		c.logger.Warn("coordinator: refresh failed", slog.String("error", err.Error()))
		return err
	}
	c.present(contacts)
	c.view.RenderTags(c.store.TagVocabulary())
	return nil
}

// SearchInput presents the contacts whose name contains value. When nothing
// matches the presenter gets an explicit no-match signal instead of an
// empty list, whatever the cache size.
func (c *Coordinator) SearchInput(value string) {
	results := c.store.SearchByName(value)
	if len(results) == 0 {
		c.view.RenderNoMatches(value)
		return
	}
	c.view.Render(results)
}

// TagSelected presents the contacts carrying tag, even when there are none.
func (c *Coordinator) TagSelected(tag string) {
	c.present(c.store.FilterByTag(tag))
}

// ResetRequested presents the whole cache, unfiltered.
func (c *Coordinator) ResetRequested() {
	c.present(c.store.Contacts())
}

// Lookup returns the cached contact for edit prefill.
func (c *Coordinator) Lookup(id models.ContactID) (models.Contact, error) {
	return c.store.GetByID(id)
}

// FormSubmitted dispatches a submitted form on its variant.
func (c *Coordinator) FormSubmitted(ctx context.Context, fields models.Fields, sub models.Submission) error {
	switch sub.Kind {
	case models.SubmitCreate:
		return c.CreateSubmitted(ctx, fields)
	case models.SubmitUpdate:
		return c.UpdateSubmitted(ctx, fields, sub.ID)
	default:
		return fmt.Errorf("coordinator: unknown submission kind %d", sub.Kind)
	}
}

// CreateSubmitted creates a contact, then refreshes.
func (c *Coordinator) CreateSubmitted(ctx context.Context, fields models.Fields) error {
	key, err := checksum.Of(dataservice.PayloadFromFields(fields))
	if err != nil {
		return fmt.Errorf("coordinator: fingerprint fields: %w", err)
	}
	return c.mutate(ctx, "create:"+key, func(ctx context.Context) error {
		return c.store.Create(ctx, fields)
	})
}

// UpdateSubmitted updates the contact with the given id, then refreshes.
func (c *Coordinator) UpdateSubmitted(ctx context.Context, fields models.Fields, id models.ContactID) error {
	return c.mutate(ctx, "update:"+id.String(), func(ctx context.Context) error {
		return c.store.Update(ctx, fields, id)
	})
}

// DeleteConfirmed deletes the contact with the given id, then refreshes.
func (c *Coordinator) DeleteConfirmed(ctx context.Context, id models.ContactID) error {
	return c.mutate(ctx, "delete:"+id.String(), func(ctx context.Context) error {
		return c.store.Delete(ctx, id)
	})
}

// mutate runs op, then Load. A failed op returns before any fetch or render.
// Identical intents already in flight share one round trip. The shared call
// is detached from the leader's cancellation; each caller stops waiting when
// its own ctx is done.
func (c *Coordinator) mutate(ctx context.Context, key string, op func(context.Context) error) error {
	ch := c.flight.DoChan(key, func() (any, error) {
		return nil, op(context.WithoutCancel(ctx))
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return ctx.Err()
	}
	if res.Shared {
		c.logger.Debug("coordinator: joined in-flight mutation", slog.String("key", key))
	}
	if res.Err != nil {
		c.logger.Warn("coordinator: mutation failed",
			slog.String("key", key),
			slog.String("error", res.Err.Error()))
		return res.Err
	}
	return c.Load(ctx)
}

func (c *Coordinator) present(contacts []models.Contact) {
	if len(contacts) == 0 {
		c.view.RenderEmpty()
		return
	}
	c.view.Render(contacts)
}
