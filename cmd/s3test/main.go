// Command s3test exercises the S3 blob store backend against a real bucket.
// It uploads, stats, downloads and deletes blobs the same way the CMS upload
// endpoint does, which makes it handy for verifying MinIO or AWS credentials
// before pointing a server at them.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
	s3storage "github.com/tendant/simple-cms/pkg/simplecms/storage/s3"
)

func main() {
	// Define command-line flags
	region := flag.String("region", "us-east-1", "AWS region")
	bucket := flag.String("bucket", "", "S3 bucket name")
	accessKey := flag.String("access-key", "", "AWS access key ID")
	secretKey := flag.String("secret-key", "", "AWS secret access key")
	endpoint := flag.String("endpoint", "", "Custom S3 endpoint (for MinIO, etc.)")
	usePathStyle := flag.Bool("use-path-style", false, "Use path-style addressing")
	keyPrefix := flag.String("key-prefix", "", "Key prefix for all blobs")
	createBucket := flag.Bool("create-bucket", false, "Create bucket if it doesn't exist")

	// Define commands
	command := flag.String("command", "help", "Command to execute: upload, download, meta, delete, roundtrip, help")
	blobID := flag.String("id", "", "Blob id for operations")
	filePath := flag.String("file", "", "File path for upload/download")

	// MinIO shortcut
	useMinio := flag.Bool("use-minio", false, "Use MinIO defaults (sets endpoint, path-style, etc.)")
	minioEndpoint := flag.String("minio-endpoint", "http://localhost:9000", "MinIO server endpoint")

	flag.Parse()

	// Apply MinIO defaults if requested
	if *useMinio {
		*endpoint = *minioEndpoint
		*usePathStyle = true
		*createBucket = true
		if *accessKey == "" {
			*accessKey = "minioadmin"
		}
		if *secretKey == "" {
			*secretKey = "minioadmin"
		}
	}

	if *bucket == "" && *command != "help" && *command != "" {
		log.Fatal("Bucket name is required")
	}

	// Fall back to environment variables for credentials
	if *accessKey == "" {
		*accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if *secretKey == "" {
		*secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}

	config := s3storage.Config{
		Region:                 *region,
		Bucket:                 *bucket,
		AccessKeyID:            *accessKey,
		SecretAccessKey:        *secretKey,
		Endpoint:               *endpoint,
		UsePathStyle:           *usePathStyle,
		KeyPrefix:              *keyPrefix,
		CreateBucketIfNotExist: *createBucket,
	}

	var store simplecms.BlobStore
	ctx := context.Background()

	if *command != "help" && *command != "" {
		fmt.Println("Initializing S3 blob store with the following configuration:")
		fmt.Printf("  Region: %s\n", config.Region)
		fmt.Printf("  Bucket: %s\n", config.Bucket)
		fmt.Printf("  Endpoint: %s\n", config.Endpoint)
		fmt.Printf("  Use Path Style: %v\n", config.UsePathStyle)
		fmt.Printf("  Create Bucket If Not Exist: %v\n", config.CreateBucketIfNotExist)
		fmt.Println()

		var err error
		store, err = s3storage.New(config)
		if err != nil {
			log.Fatalf("Failed to initialize S3 blob store: %v", err)
		}
	}

	switch strings.ToLower(*command) {
	case "upload":
		if *filePath == "" {
			log.Fatal("File path is required for upload")
		}
		id := *blobID
		if id == "" {
			id = uuid.NewString()
		}

		meta, err := uploadFile(ctx, store, id, *filePath)
		if err != nil {
			log.Fatalf("Upload failed: %v", err)
		}
		fmt.Printf("Upload successful: id %s (%d bytes, %s)\n", id, meta.Size, meta.ContentType)

	case "download":
		if *blobID == "" || *filePath == "" {
			log.Fatal("Blob id and file path are required for download")
		}

		fmt.Printf("Downloading %s to %s...\n", *blobID, *filePath)
		startTime := time.Now()
		reader, err := store.Download(ctx, *blobID)
		if err != nil {
			log.Fatalf("Download failed: %v", err)
		}
		defer reader.Close()

		file, err := os.Create(*filePath)
		if err != nil {
			log.Fatalf("Failed to create file: %v", err)
		}
		defer file.Close()

		bytesWritten, err := io.Copy(file, reader)
		duration := time.Since(startTime)
		if err != nil {
			log.Fatalf("Failed to write file: %v", err)
		}
		fmt.Printf("Download successful: %d bytes (took %v)\n", bytesWritten, duration)

	case "meta":
		if *blobID == "" {
			log.Fatal("Blob id is required for meta")
		}

		meta, err := store.Meta(ctx, *blobID)
		if err != nil {
			log.Fatalf("Meta failed: %v", err)
		}
		fmt.Printf("Blob %s:\n", *blobID)
		fmt.Printf("  Content type: %s\n", meta.ContentType)
		fmt.Printf("  File name:    %s\n", meta.FileName)
		fmt.Printf("  Size:         %d bytes\n", meta.Size)
		fmt.Printf("  Updated at:   %s\n", meta.UpdatedAt.Format(time.RFC3339))

	case "delete":
		if *blobID == "" {
			log.Fatal("Blob id is required for delete")
		}

		fmt.Printf("Deleting %s...\n", *blobID)
		if err := store.Delete(ctx, *blobID); err != nil {
			log.Fatalf("Delete failed: %v", err)
		}
		fmt.Println("Delete successful")

	case "roundtrip":
		// Upload, stat, download and delete a small probe blob. Leaves the
		// bucket as it was found.
		id := uuid.NewString()
		payload := fmt.Sprintf("simple-cms probe %s", time.Now().Format(time.RFC3339))

		fmt.Printf("Uploading probe blob %s...\n", id)
		err := store.Upload(ctx, id, strings.NewReader(payload), simplecms.BlobMeta{
			ContentType: "text/plain",
			FileName:    "probe.txt",
			Size:        int64(len(payload)),
		})
		if err != nil {
			log.Fatalf("Probe upload failed: %v", err)
		}

		meta, err := store.Meta(ctx, id)
		if err != nil {
			log.Fatalf("Probe meta failed: %v", err)
		}
		fmt.Printf("Probe meta: %s, %d bytes\n", meta.ContentType, meta.Size)

		reader, err := store.Download(ctx, id)
		if err != nil {
			log.Fatalf("Probe download failed: %v", err)
		}
		got, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			log.Fatalf("Probe read failed: %v", err)
		}
		if string(got) != payload {
			log.Fatalf("Probe payload mismatch: got %q", got)
		}

		if err := store.Delete(ctx, id); err != nil {
			log.Fatalf("Probe delete failed: %v", err)
		}
		fmt.Println("Roundtrip successful")

	case "help", "":
		fmt.Println("S3 Blob Store Test Application")
		fmt.Println("\nCommands:")
		fmt.Println("  upload     Upload a file as a blob")
		fmt.Println("  download   Download a blob to a file")
		fmt.Println("  meta       Show a blob's stored metadata")
		fmt.Println("  delete     Delete a blob")
		fmt.Println("  roundtrip  Upload, stat, download and delete a probe blob")
		fmt.Println("  help       Show this help message")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  Verify a MinIO setup end to end:")
		fmt.Println("    s3test -use-minio -bucket cms-uploads -command roundtrip")
		fmt.Println("\n  Upload a file to AWS S3:")
		fmt.Println("    s3test -bucket my-bucket -command upload -file ./photo.png")
		fmt.Println("\n  Inspect the stored metadata:")
		fmt.Println("    s3test -bucket my-bucket -command meta -id <blob-id>")

	default:
		log.Fatalf("Unknown command: %s", *command)
	}
}

func uploadFile(ctx context.Context, store simplecms.BlobStore, id, path string) (simplecms.BlobMeta, error) {
	file, err := os.Open(path)
	if err != nil {
		return simplecms.BlobMeta{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return simplecms.BlobMeta{}, fmt.Errorf("failed to stat file: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	meta := simplecms.BlobMeta{
		ContentType: contentType,
		FileName:    filepath.Base(path),
		Size:        info.Size(),
	}

	fmt.Printf("Uploading %s as blob %s...\n", path, id)
	if err := store.Upload(ctx, id, file, meta); err != nil {
		return simplecms.BlobMeta{}, err
	}
	return meta, nil
}
