package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyinsight/internal/types"
)

func TestDiskStoreArchiveAndLoad(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(filepath.Join(t.TempDir(), "reports"))
	require.NoError(t, err)

	doc := types.Document{DocumentType: types.DocumentBriefing, Title: "Brief", Sections: []types.DocumentSection{{Title: "Overview", Content: "body"}}}
	key, err := Archive(ctx, s, "abc", doc)
	require.NoError(t, err)
	assert.Equal(t, "briefing/abc.json", key)
	assert.FileExists(t, filepath.Join(s.Root(), "briefing", "abc.json"))

	got, err := Load(ctx, s, key)
	require.NoError(t, err)
	assert.Equal(t, "Brief", got.Title)

	keys, err := s.List(ctx, "briefing/")
	require.NoError(t, err)
	assert.Equal(t, []string{"briefing/abc.json"}, keys)

	_, err = s.Get(ctx, "briefing/missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	s, err := NewDiskStore(filepath.Join(root, "reports"))
	require.NoError(t, err)

	err = s.Put(context.Background(), "../escape.json", []byte("x"))
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(root, "escape.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewDiskStoreRequiresRoot(t *testing.T) {
	_, err := NewDiskStore("  ")
	require.Error(t, err)
}
