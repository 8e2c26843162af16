package docstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, Document{ID: "a", Title: "A", Body: "body", CreatedAt: created, Metadata: map[string]string{"k": "v"}}))

	doc, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, Document{ID: "a", Title: "A", Body: "body", CreatedAt: created, Metadata: map[string]string{"k": "v"}}, doc)

	require.NoError(t, s.Put(ctx, Document{ID: "a", Title: "A2", Body: "new", CreatedAt: created}))
	doc, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A2", doc.Title)
	assert.Nil(t, doc.Metadata)
}

func TestGet_NotFound(t *testing.T) {
	_, err := openMemory(t).Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPut_RequiresID(t *testing.T) {
	require.Error(t, openMemory(t).Put(context.Background(), Document{Title: "x"}))
}

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	require.NoError(t, s.Seed(ctx))
	require.NoError(t, s.Seed(ctx))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	doc, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Document 1", doc.Title)
	assert.Equal(t, "docs", doc.Metadata["author"])
}

func TestFileDatabasePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "docs.db")
	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, Document{ID: "p", Title: "P", Body: "b"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	doc, err := s.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "P", doc.Title)
	assert.False(t, doc.CreatedAt.IsZero())
}
