package blog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnhub/pkg/database"
	"learnhub/pkg/models"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	b, err := database.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return NewRepo(database.NewDocument[models.BlogsDocument](b, "blogs", zap.NewNop()))
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	b, err := r.Create(ctx, Input{Title: "T", Summary: "S", Content: "C", Author: "A", AuthorID: "1"})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.NotEmpty(t, b.CreatedAt)
	assert.Equal(t, models.DefaultCategory, b.Category)

	b2, err := r.Create(ctx, Input{Title: "T2", Category: "News", ImagePreview: "img.png"})
	require.NoError(t, err)
	assert.Equal(t, "News", b2.Category)
	assert.Equal(t, "img.png", b2.ImagePreview)
	assert.NotEqual(t, b.ID, b2.ID)

	blogs := r.List(ctx).Blogs
	require.Len(t, blogs, 2)
	assert.Equal(t, b.ID, blogs[0].ID)
	assert.Equal(t, b2.ID, blogs[1].ID)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	a, err := r.Create(ctx, Input{Title: "A"})
	require.NoError(t, err)
	b, err := r.Create(ctx, Input{Title: "B"})
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, a.ID))
	blogs := r.List(ctx).Blogs
	require.Len(t, blogs, 1)
	assert.Equal(t, b.ID, blogs[0].ID)

	assert.ErrorIs(t, r.Delete(ctx, a.ID), ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "missing"), ErrNotFound)
	assert.Len(t, r.List(ctx).Blogs, 1)
}
