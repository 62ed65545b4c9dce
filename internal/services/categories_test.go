package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librescript/backend/internal/apperr"
	"github.com/librescript/backend/internal/models"
)

func TestCategoryLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.categories.Create(ctx, models.CategoryRequest{})
	assert.True(t, apperr.Is(err, apperr.Invalid))

	c, err := f.categories.Create(ctx, models.CategoryRequest{Name: "Go", Description: "gophers"})
	require.NoError(t, err)

	err = f.categories.Update(ctx, c.ID, models.CategoryRequest{ID: c.ID + 1, Name: "Rust"})
	require.True(t, apperr.Is(err, apperr.Invalid))
	assert.Equal(t, "Category ID not matching.", apperr.Message(err))

	require.NoError(t, f.categories.Update(ctx, c.ID, models.CategoryRequest{ID: c.ID, Name: "Golang"}))
	got, err := f.categories.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Golang", got.Name)
	assert.Empty(t, got.Description)

	list, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.categories.Delete(ctx, c.ID))
	assert.True(t, apperr.Is(f.categories.Delete(ctx, c.ID), apperr.NotFound))
	assert.True(t, apperr.Is(f.categories.Update(ctx, c.ID, models.CategoryRequest{Name: "x"}), apperr.NotFound))
}
