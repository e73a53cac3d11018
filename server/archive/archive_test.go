package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveAndList(t *testing.T) {
	svc, err := New(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	defer svc.Close()

	ctx := context.Background()

	require.NoError(t, svc.Archive(ctx, &Entry{
		JobId:  "job-1",
		Title:  "First Video",
		Source: "https://example.com/1",
	}))
	require.NoError(t, svc.Archive(ctx, &Entry{
		JobId: "job-1",
		Title: "Second Video",
	}))

	entries, err := svc.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, e := range entries {
		assert.NotEmpty(t, e.Id)
		assert.Equal(t, "job-1", e.JobId)
		assert.False(t, e.CreatedAt.IsZero())
	}
}

func TestListEmpty(t *testing.T) {
	svc, err := New(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	defer svc.Close()

	entries, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
