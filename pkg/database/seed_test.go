package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnhub/pkg/models"
)

func TestLoadBlogsFromJSON(t *testing.T) {
	dir := t.TempDir()

	arr := filepath.Join(dir, "arr.json")
	require.NoError(t, os.WriteFile(arr, []byte(`[{"id":"1","title":"A"}]`), 0644))
	list, err := LoadBlogsFromJSON(arr)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].Title)

	doc := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"blogs":[{"id":"1"},{"id":"2"}]}`), 0644))
	list, err = LoadBlogsFromJSON(doc)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`nope`), 0644))
	_, err = LoadBlogsFromJSON(bad)
	assert.Error(t, err)

	_, err = LoadBlogsFromJSON(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSeedBlogs(t *testing.T) {
	ctx := context.Background()
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	doc := NewDocument[models.BlogsDocument](b, "blogs", zap.NewNop())

	seed := []models.Blog{{ID: "1", Title: "A"}, {ID: "2", Title: "B", Category: "News"}}

	n, err := SeedBlogs(ctx, doc, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = SeedBlogs(ctx, doc, seed)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	blogs := doc.Read(ctx).Blogs
	require.Len(t, blogs, 2)
	assert.Equal(t, models.DefaultCategory, blogs[0].Category)
	assert.Equal(t, "News", blogs[1].Category)

	_, err = SeedBlogs(ctx, doc, []models.Blog{{Title: "no id"}})
	assert.Error(t, err)
}
