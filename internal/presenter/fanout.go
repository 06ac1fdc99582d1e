package presenter

import "github.com/starford/rolodex/internal/models"

// Target is the render surface shared by every presenter. It mirrors
// coordinator.Presenter so this package does not import the coordinator.
type Target interface {
	Render(contacts []models.Contact)
	RenderEmpty()
	RenderNoMatches(query string)
	RenderTags(tags []string)
}

// Fanout forwards every render call to each target in order.
type Fanout []Target

func (f Fanout) Render(contacts []models.Contact) {
	for _, t := range f {
		t.Render(contacts)
	}
}

func (f Fanout) RenderEmpty() {
	for _, t := range f {
		t.RenderEmpty()
	}
}

func (f Fanout) RenderNoMatches(query string) {
	for _, t := range f {
		t.RenderNoMatches(query)
	}
}

func (f Fanout) RenderTags(tags []string) {
	for _, t := range f {
		t.RenderTags(tags)
	}
}
