// Package presenter holds coordinator presenters that do not depend on a
// particular transport.
package presenter

import (
	"slices"
	"sync"

	"github.com/starford/rolodex/internal/models"
)

// Kind names what the last render showed.
type Kind string

const (
	KindNone      Kind = ""
	KindContacts  Kind = "contacts"
	KindEmpty     Kind = "empty"
	KindNoMatches Kind = "no_matches"
)

// View is the JSON shape of a rendered screen.
type View struct {
	Kind     Kind             `json:"kind"`
	Contacts []models.Contact `json:"contacts"`
	Query    string           `json:"query,omitempty"`
	Tags     []string         `json:"tags,omitempty"`
}

// Recorder keeps the most recent view and the order of render calls.
type Recorder struct {
	mu     sync.Mutex
	view   View
	events []string
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{view: View{Contacts: []models.Contact{}}}
}

func (r *Recorder) Render(contacts []models.Contact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Kind = KindContacts
	r.view.Contacts = cloneContacts(contacts)
	r.view.Query = ""
	r.events = append(r.events, "render")
}

func (r *Recorder) RenderEmpty() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Kind = KindEmpty
	r.view.Contacts = []models.Contact{}
	r.view.Query = ""
	r.events = append(r.events, "empty")
}

func (r *Recorder) RenderNoMatches(query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Kind = KindNoMatches
	r.view.Contacts = []models.Contact{}
	r.view.Query = query
	r.events = append(r.events, "no_matches")
}

// RenderTags updates the tag list without touching the contact area.
func (r *Recorder) RenderTags(tags []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Tags = slices.Clone(tags)
	r.events = append(r.events, "tags")
}

// View returns a copy of the last recorded view.
func (r *Recorder) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.view
	v.Contacts = cloneContacts(r.view.Contacts)
	v.Tags = slices.Clone(r.view.Tags)
	return v
}

// Events lists render calls in the order they happened.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Rendered reports whether any render call has been made.
func (r *Recorder) Rendered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events) > 0
}

func cloneContacts(cs []models.Contact) []models.Contact {
	out := make([]models.Contact, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}
