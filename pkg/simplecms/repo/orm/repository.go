// Package orm implements simplecms.Repository on top of GORM, with
// constructors for Postgres and SQLite.
//
// Tables are named by the entity schema (snake_case plural), columns by
// GORM's own snake_case convention, which matches the schema's column
// names. Entity structs may carry gorm tags alongside cms tags; slices of
// structs and other document-shaped fields want `gorm:"serializer:json"`.
package orm

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Repository implements simplecms.Repository using a gorm.DB.
type Repository struct {
	db *gorm.DB
}

// New wraps an existing gorm.DB. The DB should be opened with
// TranslateError so duplicate keys surface as such.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NewPostgres opens a Postgres-backed repository from a DSN or URL.
func NewPostgres(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return New(db), nil
}

// NewSQLite opens a SQLite-backed repository. Use ":memory:" for an
// in-memory database.
func NewSQLite(path string) (*Repository, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return New(db), nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
}

// DB exposes the underlying handle for callers that need raw queries.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

func (r *Repository) List(ctx context.Context, schema *simplecms.Schema, filters []simplecms.Filter) ([]any, error) {
	slice := reflect.New(reflect.SliceOf(reflect.PointerTo(schema.Type)))

	tx := r.db.WithContext(ctx).Table(schema.Table())
	for _, f := range filters {
		tx = tx.Where(map[string]any{f.Field.Column: f.Value})
	}
	if err := tx.Find(slice.Interface()).Error; err != nil {
		return nil, err
	}

	sv := slice.Elem()
	out := make([]any, sv.Len())
	for i := range out {
		out[i] = sv.Index(i).Interface()
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, schema *simplecms.Schema, id string) (any, error) {
	entity := schema.New()
	err := r.db.WithContext(ctx).
		Table(schema.Table()).
		Where(map[string]any{schema.IDField().Column: id}).
		Take(entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, simplecms.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *Repository) Create(ctx context.Context, schema *simplecms.Schema, entity any) error {
	err := r.db.WithContext(ctx).Table(schema.Table()).Create(entity).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return simplecms.ErrDuplicateEntity
	}
	return err
}

func (r *Repository) Update(ctx context.Context, schema *simplecms.Schema, entity any) error {
	id, err := schema.ID(entity)
	if err != nil {
		return err
	}
	// Select("*") forces a full replace; a struct alone would skip zero
	// values.
	tx := r.db.WithContext(ctx).
		Table(schema.Table()).
		Where(map[string]any{schema.IDField().Column: id}).
		Select("*").
		Updates(entity)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return simplecms.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, schema *simplecms.Schema, id string) (any, error) {
	entity, err := r.Get(ctx, schema, id)
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).
		Table(schema.Table()).
		Where(map[string]any{schema.IDField().Column: id}).
		Delete(schema.New()).Error
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *Repository) Migrate(ctx context.Context, schemas []*simplecms.Schema) error {
	for _, sc := range schemas {
		if err := r.db.WithContext(ctx).Table(sc.Table()).AutoMigrate(sc.New()); err != nil {
			return fmt.Errorf("migrate %s: %w", sc.Name, err)
		}
	}
	return nil
}
