package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseTags_TrimsAndDropsEmpty(t *testing.T) {
	got := ParseTags(" work, home ,,friends,")
	want := []string{"work", "home", "friends"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
}

func TestParseTags_EmptyString(t *testing.T) {
	got := ParseTags("")
	if got == nil || len(got) != 0 {
		t.Errorf("tags = %#v, want empty non-nil slice", got)
	}
}

func TestParseTags_KeepsDuplicatesWithinContact(t *testing.T) {
	got := ParseTags("a,a,b")
	if len(got) != 3 {
		t.Errorf("tags = %v, want 3 entries", got)
	}
}

func TestJoinTags_RoundTrip(t *testing.T) {
	got := ParseTags(JoinTags([]string{"a", "b", "c"}))
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("round trip = %v", got)
	}
}

func TestVocabulary_FirstSeenOrder(t *testing.T) {
	contacts := []Contact{
		{FullName: "Amy", Tags: []string{"work", "gym"}},
		{FullName: "Ben", Tags: []string{"home", "work", ""}},
		{FullName: "Cat", Tags: []string{"gym", "home", "book-club"}},
	}
	got := Vocabulary(contacts)
	want := []string{"work", "gym", "home", "book-club"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("vocabulary = %v, want %v", got, want)
	}
}

func TestVocabulary_Empty(t *testing.T) {
	if got := Vocabulary(nil); len(got) != 0 {
		t.Errorf("vocabulary = %v, want empty", got)
	}
}

func TestContactID_UnmarshalNumberAndString(t *testing.T) {
	var c Contact
	if err := json.Unmarshal([]byte(`{"id": 42, "full_name": "Amy"}`), &c); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if c.ID != "42" {
		t.Errorf("id = %q, want 42", c.ID)
	}
	if err := json.Unmarshal([]byte(`{"id": "abc"}`), &c); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if c.ID != "abc" {
		t.Errorf("id = %q, want abc", c.ID)
	}
}

func TestContactID_UnmarshalRejectsObject(t *testing.T) {
	var id ContactID
	if err := json.Unmarshal([]byte(`{}`), &id); err == nil {
		t.Error("expected error for object id")
	}
}

func TestClone_DoesNotShareTags(t *testing.T) {
	orig := Contact{Tags: []string{"a"}}
	cp := orig.Clone()
	cp.Tags[0] = "changed"
	if orig.Tags[0] != "a" {
		t.Error("clone shares tag storage with original")
	}
}

func TestFieldsFromForm_LastWins(t *testing.T) {
	f := FieldsFromForm([]FormField{
		{Name: "full_name", Value: "Old"},
		{Name: "email", Value: "a@b.c"},
		{Name: "full_name", Value: "New"},
	})
	if f[FieldFullName] != "New" {
		t.Errorf("full_name = %q, want New", f[FieldFullName])
	}
	if f[FieldEmail] != "a@b.c" {
		t.Errorf("email = %q", f[FieldEmail])
	}
}

func TestFields_Blank(t *testing.T) {
	f := Fields{FieldFullName: "  ", FieldEmail: "a@b.c"}
	got := f.Blank()
	want := []string{FieldFullName, FieldPhoneNumber}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("blank = %v, want %v", got, want)
	}
}

func TestSubmission_Variants(t *testing.T) {
	if s := CreateSubmission(); s.Kind != SubmitCreate || s.ID != "" {
		t.Errorf("create submission = %+v", s)
	}
	s := UpdateSubmission("7")
	if s.Kind != SubmitUpdate || s.ID != "7" {
		t.Errorf("update submission = %+v", s)
	}
	if s.Kind.String() != "update" {
		t.Errorf("kind string = %q", s.Kind.String())
	}
}
