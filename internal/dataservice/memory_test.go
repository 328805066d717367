package dataservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CreateAssignsID(t *testing.T) {
	svc := NewMemory()
	ctx := context.Background()

	created, err := CreateAs[widget](ctx, svc, "widgets", widget{Name: "lamp", Price: 5})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	fetched, err := GetAs[widget](ctx, svc, "widgets", created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *fetched)
}

func TestMemory_CreateDuplicateID(t *testing.T) {
	svc := NewMemory()
	ctx := context.Background()

	_, err := svc.Create(ctx, "widgets", widget{ID: "w1"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "widgets", widget{ID: "w1"})
	assert.Error(t, err)
}

func TestMemory_ListFilterAndOrder(t *testing.T) {
	svc := NewMemory()
	ctx := context.Background()

	for _, doc := range []map[string]any{
		{"id": "a", "userId": "u1", "qty": 1},
		{"id": "b", "userId": "u2", "qty": 2},
		{"id": "c", "userId": "u1", "qty": 3, "active": true},
	} {
		_, err := svc.Create(ctx, "carts", doc)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, "carts", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	type row struct {
		ID string `json:"id"`
	}
	mine, err := ListAs[row](ctx, svc, "carts", Filter{"userId": "u1"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "a", mine[0].ID)
	assert.Equal(t, "c", mine[1].ID)

	byNumber, err := ListAs[row](ctx, svc, "carts", Filter{"qty": "2"})
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, "b", byNumber[0].ID)

	byBool, err := ListAs[row](ctx, svc, "carts", Filter{"active": "true"})
	require.NoError(t, err)
	require.Len(t, byBool, 1)
	assert.Equal(t, "c", byBool[0].ID)
}

func TestMemory_PatchKeepsOtherFields(t *testing.T) {
	svc := NewMemory()
	ctx := context.Background()

	_, err := svc.Create(ctx, "widgets", widget{ID: "w1", Name: "lamp", Price: 5})
	require.NoError(t, err)

	patched, err := PatchAs[widget](ctx, svc, "widgets", "w1", map[string]any{"price": 8, "id": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, widget{ID: "w1", Name: "lamp", Price: 8}, *patched)
}

func TestMemory_ReplaceAndDelete(t *testing.T) {
	svc := NewMemory()
	ctx := context.Background()

	_, err := svc.Replace(ctx, "widgets", "nope", widget{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, "widgets", widget{ID: "w1", Name: "lamp"})
	require.NoError(t, err)

	replaced, err := ReplaceAs[widget](ctx, svc, "widgets", "w1", widget{Name: "desk"})
	require.NoError(t, err)
	assert.Equal(t, "w1", replaced.ID)
	assert.Equal(t, "desk", replaced.Name)

	require.NoError(t, svc.Delete(ctx, "widgets", "w1"))
	assert.ErrorIs(t, svc.Delete(ctx, "widgets", "w1"), ErrNotFound)

	_, err = svc.Get(ctx, "widgets", "w1")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := svc.List(ctx, "widgets", nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}
