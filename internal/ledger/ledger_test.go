package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLedgerRecordAndList(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	defer l.Close()

	ctx := context.Background()
	id, err := l.Record(ctx, Entry{
		Title:   "insert greeting",
		Author:  "reviewer",
		Success: true,
		Files:   []string{"notes.txt"},
	})
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	_, err = l.Record(ctx, Entry{
		Title:   "broken patch",
		Success: false,
		Files:   []string{"a.txt"},
		Errors:  []string{"b.txt: failed to read"},
	})
	require.NoError(t, err)

	entries, err := l.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	require.Equal(t, "broken patch", entries[0].Title)
	require.False(t, entries[0].Success)
	require.Equal(t, []string{"b.txt: failed to read"}, entries[0].Errors)

	require.Equal(t, "insert greeting", entries[1].Title)
	require.True(t, entries[1].Success)
	require.Equal(t, []string{"notes.txt"}, entries[1].Files)
	require.False(t, entries[1].AppliedAt.IsZero())
}

func TestLedgerReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	l, err := Open(path)
	require.NoError(t, err)
	_, err = l.Record(context.Background(), Entry{Title: "first", Success: true})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "first", entries[0].Title)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}
