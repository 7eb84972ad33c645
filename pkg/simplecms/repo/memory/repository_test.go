package memory_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
)

type Product struct {
	ID    uuid.UUID `json:"id" cms:"id"`
	Name  string    `json:"name"`
	Price int       `json:"price"`
	Tags  []string  `json:"tags"`
}

func productSchema(t *testing.T) *simplecms.Schema {
	t.Helper()
	sc, err := simplecms.ParseSchema(Product{})
	require.NoError(t, err)
	return sc
}

func TestMemoryRepository_EntityOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	sc := productSchema(t)

	t.Run("Create", func(t *testing.T) {
		p := &Product{ID: uuid.New(), Name: "Lamp", Price: 30}
		assert.NoError(t, repo.Create(ctx, sc, p))
	})

	t.Run("Create_Duplicate", func(t *testing.T) {
		p := &Product{ID: uuid.New(), Name: "Chair", Price: 80}
		require.NoError(t, repo.Create(ctx, sc, p))
		err := repo.Create(ctx, sc, p)
		assert.ErrorIs(t, err, simplecms.ErrDuplicateEntity)
	})

	t.Run("Get", func(t *testing.T) {
		p := &Product{ID: uuid.New(), Name: "Desk", Price: 120, Tags: []string{"wood"}}
		require.NoError(t, repo.Create(ctx, sc, p))

		got, err := repo.Get(ctx, sc, p.ID.String())
		require.NoError(t, err)
		retrieved := got.(*Product)
		assert.Equal(t, p.ID, retrieved.ID)
		assert.Equal(t, "Desk", retrieved.Name)
		assert.Equal(t, []string{"wood"}, retrieved.Tags)

		// stored state must not alias the caller's value
		retrieved.Name = "Changed"
		again, err := repo.Get(ctx, sc, p.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "Desk", again.(*Product).Name)
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		got, err := repo.Get(ctx, sc, uuid.NewString())
		assert.ErrorIs(t, err, simplecms.ErrNotFound)
		assert.Nil(t, got)
	})

	t.Run("Update", func(t *testing.T) {
		p := &Product{ID: uuid.New(), Name: "Original", Price: 10}
		require.NoError(t, repo.Create(ctx, sc, p))

		p.Name = "Updated"
		require.NoError(t, repo.Update(ctx, sc, p))

		got, err := repo.Get(ctx, sc, p.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "Updated", got.(*Product).Name)
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		err := repo.Update(ctx, sc, &Product{ID: uuid.New(), Name: "Ghost"})
		assert.ErrorIs(t, err, simplecms.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		p := &Product{ID: uuid.New(), Name: "Shortlived", Price: 5}
		require.NoError(t, repo.Create(ctx, sc, p))

		deleted, err := repo.Delete(ctx, sc, p.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "Shortlived", deleted.(*Product).Name)

		_, err = repo.Get(ctx, sc, p.ID.String())
		assert.ErrorIs(t, err, simplecms.ErrNotFound)

		_, err = repo.Delete(ctx, sc, p.ID.String())
		assert.ErrorIs(t, err, simplecms.ErrNotFound)
	})
}

func TestMemoryRepository_List(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	sc := productSchema(t)
	require.NoError(t, repo.Migrate(ctx, []*simplecms.Schema{sc}))

	for i := 0; i < 3; i++ {
		p := &Product{ID: uuid.New(), Name: fmt.Sprintf("item-%d", i), Price: i}
		require.NoError(t, repo.Create(ctx, sc, p))
	}

	list, err := repo.List(ctx, sc, nil)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, e := range list {
		assert.Equal(t, fmt.Sprintf("item-%d", i), e.(*Product).Name, "creation order is preserved")
	}

	name, ok := sc.Field("name")
	require.True(t, ok)
	filtered, err := repo.List(ctx, sc, []simplecms.Filter{{Field: name, Value: "item-1"}})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "item-1", filtered[0].(*Product).Name)

	filtered, err = repo.List(ctx, sc, []simplecms.Filter{{Field: name, Value: "absent"}})
	require.NoError(t, err)
	assert.Empty(t, filtered)

	// deleting keeps the remaining order intact
	second := list[1].(*Product)
	_, err = repo.Delete(ctx, sc, second.ID.String())
	require.NoError(t, err)

	list, err = repo.List(ctx, sc, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "item-0", list[0].(*Product).Name)
	assert.Equal(t, "item-2", list[1].(*Product).Name)
}
