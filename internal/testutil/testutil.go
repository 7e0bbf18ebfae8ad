package testutil

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"bookListings/internal/db"
	"bookListings/internal/live"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The database is named after the test so parallel packages never share one.
// It is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// NewLogger returns a logger whose entries are captured by the returned hook
// instead of being written anywhere.
func NewLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

// NewHub returns a live hub logging to a null logger.
func NewHub() *live.Hub {
	l, _ := NewLogger()
	return live.NewHub(l)
}
