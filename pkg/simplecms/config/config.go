// Package config builds a runnable CMS from declarative settings: a
// repository from a database URL, a blob store from a storage URL, and the
// assembled app. Settings come from options, typically WithEnv.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/app"
	memoryrepo "github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/orm"
	fsstorage "github.com/tendant/simple-cms/pkg/simplecms/storage/fs"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
	s3storage "github.com/tendant/simple-cms/pkg/simplecms/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	editor := simplecms.DefaultEditorConfig()
	return ServerConfig{
		Port:             "8080",
		Environment:      "development",
		DatabaseType:     "memory",
		StorageType:      "memory",
		EnableUploads:    editor.EnableUploads,
		MaxUploadSize:    editor.MaxUploadSize,
		AllowedFileTypes: editor.AllowedFileTypes,
	}
}

// ServerConfig represents server configuration for the simple-cms service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string // postgres://… or sqlite://path, empty for memory
	DatabaseType string // "memory", "postgres", "sqlite"
	DBSchema     string // Postgres schema to use (optional)

	// Blob storage configuration
	StorageURL  string // file://dir or s3://bucket, empty for memory
	StorageType string // "memory", "fs", "s3"
	S3          S3Config

	// Upload configuration
	EnableUploads    bool
	MaxUploadSize    int64
	AllowedFileTypes []string

	// JWTSecret enables the bearer-token guard on the JSON API when set.
	JWTSecret string
}

// S3Config carries the knobs of the s3 blob store backend.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	CreateBucket    bool
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using postgres")
		}
	case "sqlite":
		if strings.TrimPrefix(c.DatabaseURL, "sqlite://") == "" {
			return errors.New("database_url must name the sqlite file")
		}
	default:
		return fmt.Errorf("database type must be 'memory', 'postgres' or 'sqlite', got: %s", c.DatabaseType)
	}

	switch c.StorageType {
	case "memory":
	case "fs":
		if strings.TrimPrefix(c.StorageURL, "file://") == "" {
			return errors.New("storage_url must name the upload directory")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required")
		}
	default:
		return fmt.Errorf("storage type must be 'memory', 'fs' or 's3', got: %s", c.StorageType)
	}

	if c.EnableUploads {
		if c.MaxUploadSize <= 0 {
			return errors.New("max upload size must be positive")
		}
		if len(c.AllowedFileTypes) == 0 {
			return errors.New("at least one allowed file type is required")
		}
	}
	return nil
}

// EditorConfig returns the markdown editor configuration derived from the
// upload settings.
func (c *ServerConfig) EditorConfig() simplecms.EditorConfig {
	return simplecms.EditorConfig{
		EnableUploads:    c.EnableUploads,
		MaxUploadSize:    c.MaxUploadSize,
		AllowedFileTypes: c.AllowedFileTypes,
	}
}

// BuildRepository creates the Repository the configuration names.
func (c *ServerConfig) BuildRepository() (simplecms.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memoryrepo.New(), nil
	case "postgres":
		return orm.NewPostgres(c.postgresDSN())
	case "sqlite":
		return orm.NewSQLite(strings.TrimPrefix(c.DatabaseURL, "sqlite://"))
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// postgresDSN returns the database URL with the configured schema applied
// as search_path, unless the URL already names one.
func (c *ServerConfig) postgresDSN() string {
	if c.DBSchema == "" {
		return c.DatabaseURL
	}
	u, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return c.DatabaseURL
	}
	q := u.Query()
	if q.Get("search_path") != "" {
		return c.DatabaseURL
	}
	q.Set("search_path", c.DBSchema)
	u.RawQuery = q.Encode()
	return u.String()
}

// BuildBlobStore creates the BlobStore the configuration names.
func (c *ServerConfig) BuildBlobStore() (simplecms.BlobStore, error) {
	switch c.StorageType {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir: strings.TrimPrefix(c.StorageURL, "file://"),
		})
	case "s3":
		return s3storage.New(s3storage.Config{
			Bucket:                 c.S3.Bucket,
			Region:                 c.S3.Region,
			Endpoint:               c.S3.Endpoint,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			UsePathStyle:           c.S3.UsePathStyle,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}
}

// BuildApp assembles the CMS app for the given entity types. Callers that
// need hooks or API middleware compose app.New themselves from
// BuildRepository and BuildBlobStore.
func (c *ServerConfig) BuildApp(entities ...any) (*app.App, error) {
	repo, err := c.BuildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	store, err := c.BuildBlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build blob store: %w", err)
	}
	return app.New(
		app.WithRepository(repo),
		app.WithEntities(entities...),
		app.WithBlobStore(store),
		app.WithEditorConfig(c.EditorConfig()),
	)
}

// PingPostgres verifies connectivity to Postgres and optionally sets
// search_path for the session. It fails if the schema (when provided) does
// not exist.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
