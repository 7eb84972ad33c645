package orm_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/orm"
)

type Book struct {
	ID     uuid.UUID `json:"id" cms:"id" gorm:"primaryKey;type:text"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	Pages  int       `json:"pages"`
	Tags   []string  `json:"tags" gorm:"serializer:json"`
}

func setupORM(t *testing.T) (*orm.Repository, *simplecms.Schema) {
	t.Helper()
	repo, err := orm.NewSQLite(filepath.Join(t.TempDir(), "cms.db"))
	require.NoError(t, err)

	sc, err := simplecms.ParseSchema(Book{})
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(context.Background(), []*simplecms.Schema{sc}))
	return repo, sc
}

func TestORMRepository_CRUD(t *testing.T) {
	repo, sc := setupORM(t)
	ctx := context.Background()

	book := &Book{ID: uuid.New(), Title: "Leviathan Wakes", Author: "Corey", Pages: 561, Tags: []string{"sf"}}
	require.NoError(t, repo.Create(ctx, sc, book))

	err := repo.Create(ctx, sc, book)
	assert.ErrorIs(t, err, simplecms.ErrDuplicateEntity)

	got, err := repo.Get(ctx, sc, book.ID.String())
	require.NoError(t, err)
	stored := got.(*Book)
	assert.Equal(t, "Leviathan Wakes", stored.Title)
	assert.Equal(t, []string{"sf"}, stored.Tags)

	_, err = repo.Get(ctx, sc, uuid.NewString())
	assert.ErrorIs(t, err, simplecms.ErrNotFound)

	// updates replace the whole row, zero values included
	book.Pages = 0
	book.Title = "Caliban's War"
	require.NoError(t, repo.Update(ctx, sc, book))

	got, err = repo.Get(ctx, sc, book.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Caliban's War", got.(*Book).Title)
	assert.Equal(t, 0, got.(*Book).Pages)

	err = repo.Update(ctx, sc, &Book{ID: uuid.New(), Title: "Ghost"})
	assert.ErrorIs(t, err, simplecms.ErrNotFound)

	deleted, err := repo.Delete(ctx, sc, book.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Caliban's War", deleted.(*Book).Title)

	_, err = repo.Get(ctx, sc, book.ID.String())
	assert.ErrorIs(t, err, simplecms.ErrNotFound)
}

func TestORMRepository_ListFilters(t *testing.T) {
	repo, sc := setupORM(t)
	ctx := context.Background()

	for _, b := range []*Book{
		{ID: uuid.New(), Title: "Dune", Author: "Herbert"},
		{ID: uuid.New(), Title: "Dune Messiah", Author: "Herbert"},
		{ID: uuid.New(), Title: "Hyperion", Author: "Simmons"},
	} {
		require.NoError(t, repo.Create(ctx, sc, b))
	}

	all, err := repo.List(ctx, sc, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	author, ok := sc.Field("author")
	require.True(t, ok)
	title, ok := sc.Field("title")
	require.True(t, ok)

	filtered, err := repo.List(ctx, sc, []simplecms.Filter{{Field: author, Value: "Herbert"}})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	filtered, err = repo.List(ctx, sc, []simplecms.Filter{
		{Field: author, Value: "Herbert"},
		{Field: title, Value: "Dune"},
	})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Dune", filtered[0].(*Book).Title)

	filtered, err = repo.List(ctx, sc, []simplecms.Filter{{Field: author, Value: "Banks"}})
	require.NoError(t, err)
	assert.Empty(t, filtered)
}
