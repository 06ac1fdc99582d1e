package termview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/starford/rolodex/internal/models"
)

func TestRender_Cards(t *testing.T) {
	var buf bytes.Buffer
	v := New(&buf)

	v.Render([]models.Contact{
		{ID: "1", FullName: "Amy Chen", Email: "amy@example.com", PhoneNumber: "555-0101", Tags: []string{"work"}},
		{ID: "2", FullName: "Ben Cole", Email: "ben@example.com", PhoneNumber: "555-0102"},
	})

	out := buf.String()
	for _, want := range []string{"Amy Chen", "#1", "amy@example.com", "555-0101", "[work]", "Ben Cole", "#2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("buffer output should not carry escape codes:\n%q", out)
	}
}

func TestRenderNotices(t *testing.T) {
	var buf bytes.Buffer
	v := New(&buf)

	v.RenderEmpty()
	v.RenderNoMatches("zed")

	out := buf.String()
	if !strings.Contains(out, "No contacts yet.") {
		t.Errorf("missing empty notice:\n%s", out)
	}
	if !strings.Contains(out, `No contacts match "zed".`) {
		t.Errorf("missing no-match notice:\n%s", out)
	}
}

func TestRenderTags(t *testing.T) {
	var buf bytes.Buffer
	v := New(&buf)

	v.RenderTags(nil)
	if buf.Len() != 0 {
		t.Errorf("empty vocabulary should print nothing, got %q", buf.String())
	}

	v.RenderTags([]string{"work", "home"})
	if out := buf.String(); !strings.Contains(out, "Tags:") || !strings.Contains(out, "[work] [home]") {
		t.Errorf("tags line = %q", out)
	}
}
