// Package termview renders coordinator output for a terminal.
package termview

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/rolodex/internal/models"
)

const (
	colorName   lipgloss.Color = "#cba6f7"
	colorMuted  lipgloss.Color = "#a6adc8"
	colorTag    lipgloss.Color = "#94e2d5"
	colorBorder lipgloss.Color = "#585b70"
	colorNotice lipgloss.Color = "#f9e2af"
)

// View writes contact cards and notices to an io.Writer. Styles are bound
// to the writer, so output to a pipe or buffer carries no escape codes.
type View struct {
	mu  sync.Mutex
	out io.Writer

	card   lipgloss.Style
	name   lipgloss.Style
	detail lipgloss.Style
	chip   lipgloss.Style
	notice lipgloss.Style
	label  lipgloss.Style
}

// New returns a terminal view writing to out.
func New(out io.Writer) *View {
	r := lipgloss.NewRenderer(out)
	return &View{
		out: out,
		card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		name:   r.NewStyle().Bold(true).Foreground(colorName),
		detail: r.NewStyle().Foreground(colorMuted),
		chip:   r.NewStyle().Foreground(colorTag),
		notice: r.NewStyle().Italic(true).Foreground(colorNotice),
		label:  r.NewStyle().Bold(true),
	}
}

func (v *View) Render(contacts []models.Contact) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, c := range contacts {
		fmt.Fprintln(v.out, v.cardFor(c))
	}
}

func (v *View) RenderEmpty() {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, v.notice.Render("No contacts yet."))
}

func (v *View) RenderNoMatches(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, v.notice.Render(fmt.Sprintf("No contacts match %q.", query)))
}

func (v *View) RenderTags(tags []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(tags) == 0 {
		return
	}
	fmt.Fprintln(v.out, v.label.Render("Tags:")+" "+v.chips(tags))
}

func (v *View) cardFor(c models.Contact) string {
	lines := []string{
		v.name.Render(c.FullName) + v.detail.Render("  #"+c.ID.String()),
		v.detail.Render(c.Email),
		v.detail.Render(c.PhoneNumber),
	}
	if len(c.Tags) > 0 {
		lines = append(lines, v.chips(c.Tags))
	}
	return v.card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *View) chips(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = v.chip.Render("[" + t + "]")
	}
	return strings.Join(out, " ")
}
