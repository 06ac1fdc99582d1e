// Package testutil provides shared test helpers: an in-memory data service
// and a fixture-backed HTTP data service.
package testutil

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/starford/rolodex/internal/dataservice"
	"github.com/starford/rolodex/internal/fixture"
)

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary fixture database that is automatically cleaned up.
func TestDB(t *testing.T) *fixture.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "rolodex-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := fixture.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// FixtureServer starts the fixture data service over a fresh database.
func FixtureServer(t *testing.T) (*httptest.Server, *fixture.DB) {
	t.Helper()
	db := TestDB(t)
	srv := httptest.NewServer(fixture.NewRouter(db, QuietLogger()))
	t.Cleanup(srv.Close)
	return srv, db
}

// FixtureClient returns a data-service client talking to a fresh fixture
// server, seeded with rows.
func FixtureClient(t *testing.T, rows ...fixture.Row) (*dataservice.Client, *fixture.DB) {
	t.Helper()
	srv, db := FixtureServer(t)
	for _, r := range rows {
		if _, err := db.Insert(t.Context(), r); err != nil {
			t.Fatalf("seed fixture: %v", err)
		}
	}
	client, err := dataservice.NewClient(dataservice.ClientOptions{
		BaseURL: srv.URL,
		Logger:  QuietLogger(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, db
}
