package config

import "errors"

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return errors.New("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		c.Environment = env
		return nil
	}
}

// WithDatabaseURL configures the database from a URL; the scheme picks the
// backend ("memory://", "postgres://...", "sqlite://path").
func WithDatabaseURL(url string) Option {
	return func(c *ServerConfig) error {
		return applyDatabaseURL(c, url)
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithStorageURL configures the blob store from a URL; the scheme picks the
// backend ("memory://", "file://dir", "s3://bucket").
func WithStorageURL(url string) Option {
	return func(c *ServerConfig) error {
		return applyStorageURL(c, url)
	}
}

// WithS3Credentials sets static S3 credentials, overriding the AWS
// environment.
func WithS3Credentials(accessKeyID, secretAccessKey string) Option {
	return func(c *ServerConfig) error {
		c.S3.AccessKeyID = accessKeyID
		c.S3.SecretAccessKey = secretAccessKey
		return nil
	}
}

// WithS3Endpoint points the s3 backend at a custom endpoint (MinIO,
// LocalStack, etc.).
func WithS3Endpoint(endpoint string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		c.S3.Endpoint = endpoint
		c.S3.UsePathStyle = usePathStyle
		return nil
	}
}

// WithS3CreateBucket creates the bucket on startup when it does not exist.
func WithS3CreateBucket(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.S3.CreateBucket = enabled
		return nil
	}
}

// WithUploads enables or disables editor image uploads
func WithUploads(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableUploads = enabled
		return nil
	}
}

// WithMaxUploadSize sets the upload size limit in bytes
func WithMaxUploadSize(bytes int64) Option {
	return func(c *ServerConfig) error {
		if bytes <= 0 {
			return errors.New("max upload size must be positive")
		}
		c.MaxUploadSize = bytes
		return nil
	}
}

// WithAllowedFileTypes sets the content types accepted for upload
func WithAllowedFileTypes(types ...string) Option {
	return func(c *ServerConfig) error {
		if len(types) == 0 {
			return errors.New("at least one file type is required")
		}
		c.AllowedFileTypes = types
		return nil
	}
}

// WithJWTSecret enables the bearer-token guard on the JSON API
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}
