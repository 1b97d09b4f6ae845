// Package pipeline implements the image processing pipeline: a validation
// gate, thumbnail derivation, metadata extraction, result persistence, and
// a status read path, all operating on a shared accumulating State.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	b "imagepipeline-api/pkg/bucket"
	"imagepipeline-api/pkg/labels"
	"imagepipeline-api/pkg/store"
)

// Service runs the pipeline stages. Each stage is an independent,
// stateless operation; the only shared state is the read-only Config and
// the configured clients.
type Service struct {
	Config     Config
	Uploads    b.BucketReader      // Source images
	Thumbnails b.BucketReadWriter  // Derived thumbnails
	Table      store.TableReadWriter
	Detector   labels.Detector // Optional; consulted only when Config.UseRekognition is set
}

// NewUploadsBucket instantiates the S3 bucket holding original uploads.
func NewUploadsBucket(s3Client *s3.Client, cfg Config) b.Bucket {
	return b.Bucket{
		Client:     s3Client,
		EntityType: "Upload",
		BucketName: cfg.UploadsBucket,
	}
}

// NewThumbnailsBucket instantiates the S3 bucket holding derived thumbnails.
func NewThumbnailsBucket(s3Client *s3.Client, cfg Config) b.Bucket {
	return b.Bucket{
		Client:     s3Client,
		EntityType: "Thumbnail",
		BucketName: cfg.ThumbnailsBucket,
	}
}

// NewRecordTable instantiates the DynamoDB table holding pipeline records.
func NewRecordTable(dbClient *dynamodb.Client, cfg Config) store.Table {
	return store.Table{
		Client:     dbClient,
		EntityType: "ImageRecord",
		TableName:  cfg.TableName,
	}
}

// NewService instantiates a pipeline service backed by S3, DynamoDB, and
// (when enabled) Rekognition.
func NewService(cfg Config, s3Client *s3.Client, dbClient *dynamodb.Client, rekClient *rekognition.Client) Service {
	s := Service{
		Config:     cfg,
		Uploads:    NewUploadsBucket(s3Client, cfg),
		Thumbnails: NewThumbnailsBucket(s3Client, cfg),
		Table:      NewRecordTable(dbClient, cfg),
	}
	if cfg.UseRekognition {
		s.Detector = labels.NewRekognitionDetector(rekClient)
	}
	return s
}

// NewMockService instantiates a pipeline service with in-memory storage
// for testing purposes.
func NewMockService(cfg Config) Service {
	cfg.setDefaults()
	s := Service{
		Config:     cfg,
		Uploads:    b.NewMemBucket(NewUploadsBucket(nil, cfg)),
		Thumbnails: b.NewMemBucket(NewThumbnailsBucket(nil, cfg)),
		Table:      store.NewMemTable(NewRecordTable(nil, cfg)),
	}
	if cfg.UseRekognition && s.Detector == nil {
		s.Detector = labels.MemDetector{}
	}
	return s
}

// fetchSource fetches the source image bytes from the uploads bucket.
// Stages call this once per invocation, never once per derived output.
func (s Service) fetchSource(ctx context.Context, st State) ([]byte, error) {
	_, rc, err := s.Uploads.DownloadFile(ctx, st.S3Key)
	if err != nil {
		return nil, fmt.Errorf("fetch source %s: %w", st, err)
	}
	defer func(rc io.ReadCloser) { _ = rc.Close() }(rc)
	buf := new(bytes.Buffer)
	if _, err = buf.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("fetch source %s: %w", st, err)
	}
	return buf.Bytes(), nil
}
