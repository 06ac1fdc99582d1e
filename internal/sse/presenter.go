package sse

import (
	"slices"

	"github.com/starford/rolodex/internal/models"
)

// Event types emitted by Presenter.
const (
	EventContactsRendered  = "contacts.rendered"
	EventContactsEmpty     = "contacts.empty"
	EventContactsNoMatches = "contacts.no_matches"
	EventTagsRendered      = "tags.rendered"
)

// Presenter broadcasts coordinator renders to every stream subscriber.
type Presenter struct {
	broker *Broker
}

// NewPresenter returns a presenter publishing on b.
func NewPresenter(b *Broker) *Presenter {
	return &Presenter{broker: b}
}

func (p *Presenter) Render(contacts []models.Contact) {
	out := make([]models.Contact, len(contacts))
	for i, c := range contacts {
		out[i] = c.Clone()
	}
	p.broker.Publish(Event{Type: EventContactsRendered, Data: map[string]any{"contacts": out}})
}

func (p *Presenter) RenderEmpty() {
	p.broker.Publish(Event{Type: EventContactsEmpty, Data: map[string]any{}})
}

func (p *Presenter) RenderNoMatches(query string) {
	p.broker.Publish(Event{Type: EventContactsNoMatches, Data: map[string]string{"query": query}})
}

func (p *Presenter) RenderTags(tags []string) {
	p.broker.Publish(Event{Type: EventTagsRendered, Data: map[string]any{"tags": slices.Clone(tags)}})
}
