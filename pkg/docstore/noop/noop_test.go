//go:build unit || !integration

package noop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/models"
)

func TestEveryOperationUnavailable(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	assert.False(t, store.Available())
	assert.True(t, docstore.IsUnavailable(store.Upsert(ctx, models.NewDocument("a1", nil))))
	matched, err := store.Update(ctx, "a1", models.Attributes{"age": 1})
	assert.True(t, docstore.IsUnavailable(err))
	assert.False(t, matched)
	_, err = store.FindOne(ctx, "a1")
	assert.True(t, docstore.IsUnavailable(err))
	_, err = store.FindAll(ctx)
	assert.True(t, docstore.IsUnavailable(err))
	assert.True(t, docstore.IsUnavailable(store.DeleteOne(ctx, "a1")))
	assert.True(t, docstore.IsUnavailable(store.DeleteAll(ctx)))
}
