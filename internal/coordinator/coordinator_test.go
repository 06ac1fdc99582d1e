package coordinator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/starford/rolodex/internal/apperr"
	"github.com/starford/rolodex/internal/contactstore"
	"github.com/starford/rolodex/internal/models"
	"github.com/starford/rolodex/internal/presenter"
	"github.com/starford/rolodex/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seed() []models.Contact {
	return []models.Contact{
		{FullName: "Amy Chen", Email: "amy@example.com", PhoneNumber: "555-0101", Tags: []string{"work", "climbing"}},
		{FullName: "Ben Cole", Email: "ben@example.com", PhoneNumber: "555-0102", Tags: []string{"home"}},
	}
}

func setup(t *testing.T, contacts ...models.Contact) (*Coordinator, *presenter.Recorder, *testutil.FakeService) {
	t.Helper()
	svc := testutil.NewFakeService(contacts...)
	rec := presenter.NewRecorder()
	c := New(contactstore.New(svc, quietLogger()), rec, quietLogger())
	if err := c.Load(t.Context()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c, rec, svc
}

func names(cs []models.Contact) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.FullName
	}
	return out
}

func validFields(name string) models.Fields {
	return models.Fields{
		models.FieldFullName:    name,
		models.FieldEmail:       "x@example.com",
		models.FieldPhoneNumber: "555-0199",
		models.FieldTags:        "a, b",
	}
}

func TestLoad_RendersListThenTags(t *testing.T) {
	_, rec, _ := setup(t, seed()...)

	if got, want := rec.Events(), []string{"render", "tags"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	v := rec.View()
	if got := names(v.Contacts); !reflect.DeepEqual(got, []string{"Amy Chen", "Ben Cole"}) {
		t.Errorf("contacts = %v", got)
	}
	if !reflect.DeepEqual(v.Tags, []string{"work", "climbing", "home"}) {
		t.Errorf("tags = %v", v.Tags)
	}
}

func TestLoad_EmptyServiceRendersEmpty(t *testing.T) {
	_, rec, _ := setup(t)
	if got, want := rec.Events(), []string{"empty", "tags"}; !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestLoad_FailureRendersNothing(t *testing.T) {
	svc := testutil.NewFakeService(seed()...)
	svc.ListErr = apperr.ErrTransport
	rec := presenter.NewRecorder()
	c := New(contactstore.New(svc, quietLogger()), rec, quietLogger())

	if err := c.Load(t.Context()); !errors.Is(err, apperr.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if rec.Rendered() {
		t.Errorf("failed load should not render, got %v", rec.Events())
	}
}

func TestSearchInput_Hits(t *testing.T) {
	c, rec, _ := setup(t, seed()...)

	c.SearchInput("am")
	v := rec.View()
	if v.Kind != presenter.KindContacts {
		t.Fatalf("kind = %q", v.Kind)
	}
	if got := names(v.Contacts); !reflect.DeepEqual(got, []string{"Amy Chen"}) {
		t.Errorf("contacts = %v", got)
	}
}

func TestSearchInput_NoMatchesOnNonEmptyCache(t *testing.T) {
	c, rec, _ := setup(t, seed()...)

	c.SearchInput("zed")
	v := rec.View()
	if v.Kind != presenter.KindNoMatches {
		t.Fatalf("kind = %q, want no_matches", v.Kind)
	}
	if v.Query != "zed" {
		t.Errorf("query = %q", v.Query)
	}
}

func TestSearchInput_EmptyCacheRendersNoMatches(t *testing.T) {
	c, rec, _ := setup(t)

	c.SearchInput("zed")
	v := rec.View()
	if v.Kind != presenter.KindNoMatches {
		t.Fatalf("kind = %q, want no_matches", v.Kind)
	}
	if v.Query != "zed" {
		t.Errorf("query = %q", v.Query)
	}
}

func TestSearchInput_EmptyQueryShowsAll(t *testing.T) {
	c, rec, _ := setup(t, seed()...)

	c.SearchInput("")
	if got := names(rec.View().Contacts); len(got) != 2 {
		t.Errorf("contacts = %v, want both", got)
	}
}

func TestTagSelected_Verbatim(t *testing.T) {
	c, rec, svc := setup(t, seed()...)
	lists := svc.Calls("List")

	c.TagSelected("home")
	if got := names(rec.View().Contacts); !reflect.DeepEqual(got, []string{"Ben Cole"}) {
		t.Errorf("contacts = %v", got)
	}

	c.TagSelected("Home")
	if v := rec.View(); v.Kind != presenter.KindEmpty {
		t.Errorf("tag match should be case-sensitive, kind = %q", v.Kind)
	}
	if svc.Calls("List") != lists {
		t.Error("tag filter must not hit the service")
	}
}

func TestResetRequested_ShowsFullCache(t *testing.T) {
	c, rec, _ := setup(t, seed()...)

	c.TagSelected("home")
	c.ResetRequested()
	if got := names(rec.View().Contacts); !reflect.DeepEqual(got, []string{"Amy Chen", "Ben Cole"}) {
		t.Errorf("contacts = %v", got)
	}
}

func TestResetRequested_ServesStaleCache(t *testing.T) {
	c, rec, svc := setup(t, seed()...)

	svc.SetContacts()
	c.ResetRequested()
	if got := names(rec.View().Contacts); len(got) != 2 {
		t.Errorf("reset should not refetch, got %v", got)
	}
}

func TestCreateSubmitted_RefreshesAndRenders(t *testing.T) {
	c, rec, svc := setup(t, seed()...)
	lists := svc.Calls("List")

	if err := c.CreateSubmitted(t.Context(), validFields("Cal Dunn")); err != nil {
		t.Fatalf("CreateSubmitted: %v", err)
	}
	if svc.Calls("List") != lists+1 {
		t.Errorf("List calls = %d, want %d", svc.Calls("List"), lists+1)
	}
	v := rec.View()
	if got := names(v.Contacts); !reflect.DeepEqual(got, []string{"Amy Chen", "Ben Cole", "Cal Dunn"}) {
		t.Errorf("contacts = %v", got)
	}
	if !reflect.DeepEqual(v.Tags, []string{"work", "climbing", "home", "a", "b"}) {
		t.Errorf("tags = %v", v.Tags)
	}
}

func TestCreateSubmitted_ValidationFailureDoesNotRefresh(t *testing.T) {
	c, rec, svc := setup(t, seed()...)
	lists := svc.Calls("List")
	events := len(rec.Events())

	fields := validFields("")
	err := c.CreateSubmitted(t.Context(), fields)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if svc.Calls("List") != lists {
		t.Error("failed mutation must not refetch")
	}
	if len(rec.Events()) != events {
		t.Errorf("failed mutation must not render, got %v", rec.Events()[events:])
	}
}

func TestUpdateSubmitted(t *testing.T) {
	c, rec, _ := setup(t, seed()...)

	fields := models.FieldsFromContact(seed()[0])
	fields[models.FieldFullName] = "Amy Chen-Park"
	if err := c.UpdateSubmitted(t.Context(), fields, "1"); err != nil {
		t.Fatalf("UpdateSubmitted: %v", err)
	}
	if got := names(rec.View().Contacts); got[0] != "Amy Chen-Park" {
		t.Errorf("contacts = %v", got)
	}
}

func TestUpdateSubmitted_UnknownID(t *testing.T) {
	c, _, svc := setup(t, seed()...)
	lists := svc.Calls("List")

	err := c.UpdateSubmitted(t.Context(), validFields("Zed"), "99")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if svc.Calls("List") != lists {
		t.Error("failed update must not refetch")
	}
}

func TestDeleteConfirmed_Success(t *testing.T) {
	c, rec, _ := setup(t, seed()...)

	if err := c.DeleteConfirmed(t.Context(), "1"); err != nil {
		t.Fatalf("DeleteConfirmed: %v", err)
	}
	if got := names(rec.View().Contacts); !reflect.DeepEqual(got, []string{"Ben Cole"}) {
		t.Errorf("contacts = %v", got)
	}
	if _, err := c.Lookup("1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("deleted contact still cached: %v", err)
	}
}

func TestDeleteConfirmed_FailureKeepsCache(t *testing.T) {
	c, rec, svc := setup(t, seed()...)
	svc.MutateErr = apperr.ErrTransport
	lists := svc.Calls("List")
	events := len(rec.Events())

	if err := c.DeleteConfirmed(t.Context(), "1"); !errors.Is(err, apperr.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if svc.Calls("List") != lists {
		t.Error("failed delete must not refetch")
	}
	if len(rec.Events()) != events {
		t.Error("failed delete must not render")
	}
	if _, err := c.Lookup("1"); err != nil {
		t.Errorf("contact should remain cached: %v", err)
	}
}

func TestDeleteConfirmed_LastContactRendersEmpty(t *testing.T) {
	c, rec, _ := setup(t, seed()[0])

	if err := c.DeleteConfirmed(t.Context(), "1"); err != nil {
		t.Fatalf("DeleteConfirmed: %v", err)
	}
	if v := rec.View(); v.Kind != presenter.KindEmpty {
		t.Errorf("kind = %q, want empty", v.Kind)
	}
}

func TestFormSubmitted_Dispatch(t *testing.T) {
	c, _, svc := setup(t, seed()...)

	if err := c.FormSubmitted(t.Context(), validFields("Cal Dunn"), models.CreateSubmission()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if svc.Calls("Create") != 1 || svc.Calls("Update") != 0 {
		t.Errorf("create dispatch: Create=%d Update=%d", svc.Calls("Create"), svc.Calls("Update"))
	}

	if err := c.FormSubmitted(t.Context(), validFields("Ben Cole"), models.UpdateSubmission("2")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if svc.Calls("Update") != 1 {
		t.Errorf("update dispatch: Update=%d", svc.Calls("Update"))
	}
}

func TestFormSubmitted_UnknownKind(t *testing.T) {
	c, _, _ := setup(t, seed()...)
	if err := c.FormSubmitted(t.Context(), validFields("x"), models.Submission{Kind: 42}); err == nil {
		t.Error("expected error for unknown submission kind")
	}
}

func TestLookup(t *testing.T) {
	c, _, _ := setup(t, seed()...)

	got, err := c.Lookup("2")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.FullName != "Ben Cole" {
		t.Errorf("FullName = %q", got.FullName)
	}
}

func TestRefreshPicksUpOutOfBandChanges(t *testing.T) {
	c, rec, svc := setup(t, seed()...)

	svc.SetContacts(models.Contact{ID: "7", FullName: "Dee Fox", Email: "d@example.com", PhoneNumber: "1"})
	if err := c.Load(t.Context()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := names(rec.View().Contacts); !reflect.DeepEqual(got, []string{"Dee Fox"}) {
		t.Errorf("contacts = %v", got)
	}
}

func TestDeleteConfirmed_ConcurrentDuplicatesShareOneCall(t *testing.T) {
	svc := testutil.NewFakeService(seed()...)
	svc.DeleteStarted = make(chan struct{}, 4)
	svc.DeleteGate = make(chan struct{})
	store := contactstore.New(svc, quietLogger())
	if _, err := store.FetchAll(t.Context()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	first := New(store, presenter.NewRecorder(), quietLogger())
	second := New(store, presenter.NewRecorder(), quietLogger(), WithFlightGroup(first.flight))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = first.DeleteConfirmed(t.Context(), "1")
	}()
	<-svc.DeleteStarted

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[1] = second.DeleteConfirmed(t.Context(), "1")
	}()
	// Give the second intent time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(svc.DeleteGate)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	if got := svc.Calls("Delete"); got != 1 {
		t.Errorf("Delete calls = %d, want 1", got)
	}
}

func TestDeleteConfirmed_LeaderCancelDoesNotFailFollower(t *testing.T) {
	svc := testutil.NewFakeService(seed()...)
	svc.DeleteStarted = make(chan struct{}, 4)
	svc.DeleteGate = make(chan struct{})
	store := contactstore.New(svc, quietLogger())
	if _, err := store.FetchAll(t.Context()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	leader := New(store, presenter.NewRecorder(), quietLogger())
	followerView := presenter.NewRecorder()
	follower := New(store, followerView, quietLogger(), WithFlightGroup(leader.flight))

	leaderCtx, cancel := context.WithCancel(t.Context())
	leaderErr := make(chan error, 1)
	go func() {
		leaderErr <- leader.DeleteConfirmed(leaderCtx, "1")
	}()
	<-svc.DeleteStarted

	followerErr := make(chan error, 1)
	go func() {
		followerErr <- follower.DeleteConfirmed(t.Context(), "1")
	}()
	// Give the follower time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)

	cancel()
	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Errorf("leader err = %v, want context.Canceled", err)
	}

	close(svc.DeleteGate)
	if err := <-followerErr; err != nil {
		t.Fatalf("follower err = %v", err)
	}
	if got := svc.Calls("Delete"); got != 1 {
		t.Errorf("Delete calls = %d, want 1", got)
	}
	if got := names(followerView.View().Contacts); !reflect.DeepEqual(got, []string{"Ben Cole"}) {
		t.Errorf("follower view = %v, want the post-delete list", got)
	}
}
