package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "sub", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.Record(ctx, Entry{CreatedAt: at, Wallet: "a", Verb: "send", Hash: "h1"}))
	require.NoError(t, j.Record(ctx, Entry{Wallet: "b", Verb: "trust", Hash: "h2"}))
	require.NoError(t, j.Record(ctx, Entry{Wallet: "a", Verb: "domain", Hash: "h3"}))

	all, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"h3", "h2", "h1"}, []string{all[0].Hash, all[1].Hash, all[2].Hash})
	assert.True(t, all[2].CreatedAt.Equal(at))
	assert.False(t, all[1].CreatedAt.IsZero())

	two, err := j.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, "trust", two[1].Verb)
}

func TestReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, Entry{Wallet: "a", Verb: "send", Hash: "h1"}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "h1", entries[0].Hash)
}
