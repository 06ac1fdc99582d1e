package internal

import (
	"context"
	"fmt"
	"os"

	"github.com/starford/rolodex/internal/contactstore"
	"github.com/starford/rolodex/internal/coordinator"
	"github.com/starford/rolodex/internal/models"
	"github.com/starford/rolodex/internal/termview"
)

// oneShot is a single terminal command: fetch, run one intent, print.
type oneShot struct {
	store *contactstore.Store
	coord *coordinator.Coordinator
	view  *termview.View
}

func newOneShot(opts []Option) (*oneShot, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	logger := newLogger(os.Stderr, app.config.App.LogLevel)
	store, err := newStore(app.config, logger)
	if err != nil {
		return nil, err
	}
	view := termview.New(app.output)
	return &oneShot{
		store: store,
		coord: coordinator.New(store, view, logger),
		view:  view,
	}, nil
}

// fetch fills the cache without rendering.
func (o *oneShot) fetch(ctx context.Context) error {
	if _, err := o.store.FetchAll(ctx); err != nil {
		return fmt.Errorf("load contacts: %w", err)
	}
	return nil
}

// RunList prints every contact, or only those carrying tag when it is set.
func RunList(ctx context.Context, tag string, opts ...Option) error {
	o, err := newOneShot(opts)
	if err != nil {
		return err
	}
	if tag == "" {
		return o.coord.Load(ctx)
	}
	if err := o.fetch(ctx); err != nil {
		return err
	}
	o.coord.TagSelected(tag)
	return nil
}

// RunSearch prints the contacts whose name contains query.
func RunSearch(ctx context.Context, query string, opts ...Option) error {
	o, err := newOneShot(opts)
	if err != nil {
		return err
	}
	if err := o.fetch(ctx); err != nil {
		return err
	}
	o.coord.SearchInput(query)
	return nil
}

// RunTags prints the tag vocabulary.
func RunTags(ctx context.Context, opts ...Option) error {
	o, err := newOneShot(opts)
	if err != nil {
		return err
	}
	if err := o.fetch(ctx); err != nil {
		return err
	}
	o.view.RenderTags(o.store.TagVocabulary())
	return nil
}

// RunAdd creates a contact and prints the refreshed list.
func RunAdd(ctx context.Context, fields models.Fields, opts ...Option) error {
	o, err := newOneShot(opts)
	if err != nil {
		return err
	}
	if blank := fields.Blank(); len(blank) > 0 {
		return fmt.Errorf("missing required fields: %v", blank)
	}
	return o.coord.FormSubmitted(ctx, fields, models.CreateSubmission())
}

// RunEdit overwrites the given fields of contact id, keeping the rest, and
// prints the refreshed list.
func RunEdit(ctx context.Context, id models.ContactID, overrides models.Fields, opts ...Option) error {
	o, err := newOneShot(opts)
	if err != nil {
		return err
	}
	if err := o.fetch(ctx); err != nil {
		return err
	}
	current, err := o.coord.Lookup(id)
	if err != nil {
		return err
	}
	fields := models.FieldsFromContact(current)
	for k, v := range overrides {
		fields[k] = v
	}
	if blank := fields.Blank(); len(blank) > 0 {
		return fmt.Errorf("missing required fields: %v", blank)
	}
	return o.coord.FormSubmitted(ctx, fields, models.UpdateSubmission(id))
}

// RunRemove deletes contact id and prints the refreshed list.
func RunRemove(ctx context.Context, id models.ContactID, opts ...Option) error {
	o, err := newOneShot(opts)
	if err != nil {
		return err
	}
	return o.coord.DeleteConfirmed(ctx, id)
}
