package corpus

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/CTAG07/markovdot/pkg/markov"
)

// setupMessageDB creates an SQLite database at a temporary path with a
// messages table holding rows.
func setupMessageDB(t *testing.T, rows []any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.db")

	db, err := openDB(path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err = db.Exec(`CREATE TABLE messages (id INTEGER PRIMARY KEY, author TEXT, text TEXT)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	for _, text := range rows {
		if _, err = db.Exec(`INSERT INTO messages (author, text) VALUES ('bot', ?)`, text); err != nil {
			t.Fatalf("failed to insert row: %v", err)
		}
	}
	return path
}

func TestLoadSQLite(t *testing.T) {
	ctx := context.Background()
	path := setupMessageDB(t, []any{
		"the quick brown fox jumps",
		nil,
		"short",
		"over the lazy dog again",
	})

	t.Run("Default query", func(t *testing.T) {
		m := markov.NewModel()
		n, err := NewLoader(nil).LoadFile(ctx, path, m)
		if err != nil {
			t.Fatalf("LoadFile failed: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 chains, got %d", n)
		}
		if stats := m.Stats(); stats.Chains != 2 || stats.Nodes != 9 {
			t.Errorf("unexpected stats %+v", stats)
		}
	})

	t.Run("Custom query", func(t *testing.T) {
		sink := &recordingSink{}
		loader := NewLoader(nil,
			WithSQLQuery(`SELECT author || ' says ' || text FROM messages WHERE text IS NOT NULL ORDER BY id`),
			WithMinTokens(3),
		)
		n, err := loader.LoadFile(ctx, path, sink)
		if err != nil {
			t.Fatalf("LoadFile failed: %v", err)
		}
		if n != 3 {
			t.Fatalf("expected 3 chains, got %d", n)
		}
		if got := sink.chains[1]; len(got) != 3 || got[2] != "short" {
			t.Errorf("unexpected second chain %q", got)
		}
	})

	t.Run("Bad query", func(t *testing.T) {
		_, err := NewLoader(nil, WithSQLQuery("SELECT nope FROM nowhere")).LoadFile(ctx, path, &recordingSink{})
		if err == nil {
			t.Error("expected an error for an invalid query")
		}
	})
}
