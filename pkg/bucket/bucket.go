package bucket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrBucketNotConfigured is returned when the bucket is not configured.
var ErrBucketNotConfigured = errors.New("bucket not configured")

// ErrFileNotFound is returned when the file is not found.
var ErrFileNotFound = errors.New("file not found")

// ErrTooManyFiles is returned when there are too many files in the request.
var ErrTooManyFiles = errors.New("too many files")

// BucketWriter is the interface for making changes to the contents of an S3 bucket.
type BucketWriter interface {
	UploadFile(ctx context.Context, info FileInfo, file io.Reader) (FileInfo, error)
	DeleteFile(ctx context.Context, fileName string) error
	DeleteFiles(ctx context.Context, fileNames []string) error
}

// BucketReader is the interface for reading the contents of an S3 bucket.
type BucketReader interface {
	IsValid() bool
	ObjectURI(fileName string) string
	FileExists(ctx context.Context, fileName string) (bool, error)
	FileInfo(ctx context.Context, fileName string) (FileInfo, error)
	DownloadFile(ctx context.Context, fileName string) (FileInfo, io.ReadCloser, error)
	ListAllFiles(ctx context.Context) ([]FileInfo, error)
}

// BucketReadWriter is the interface for reading and writing the contents of an S3 bucket.
type BucketReadWriter interface {
	BucketReader
	BucketWriter
}

// FileInfo provides basic information about a file in a bucket.
type FileInfo struct {
	BucketName    string    `json:"bucketName"`
	FileName      string    `json:"fileName"`
	ContentType   string    `json:"contentType,omitempty"`
	ContentLength int64     `json:"contentLength,omitempty"`
	ETag          string    `json:"etag,omitempty"`
	LastModified  time.Time `json:"lastModified,omitempty"`
}

// Bucket is a struct for interacting with S3 buckets.
type Bucket struct {
	Client     *s3.Client
	EntityType string // Entity stored in the bucket (e.g. "Upload" or "Thumbnail").
	BucketName string // Bucket name, including environment suffix.
}

// IsValid returns true if the bucket is configured properly.
func (b Bucket) IsValid() bool {
	return b.Client != nil && b.EntityType != "" && b.BucketName != ""
}

// ObjectURI returns the canonical s3:// URI for a file in the bucket.
func (b Bucket) ObjectURI(fileName string) string {
	return "s3://" + b.BucketName + "/" + fileName
}

// BucketExists returns true if the bucket exists and the client has permission to access it.
func (b Bucket) BucketExists(ctx context.Context) (bool, error) {
	if b.Client == nil || b.BucketName == "" {
		return false, ErrBucketNotConfigured
	}
	output, err := b.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: &b.BucketName,
	})
	if err != nil {
		// Not Found is an expected error.
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("bucket %s exists: %w", b.BucketName, err)
	}
	return output != nil, nil
}

// CreateBucket creates the bucket if it does not already exist.
func (b Bucket) CreateBucket(ctx context.Context) error {
	startTime := time.Now()
	if b.Client == nil || b.BucketName == "" {
		return ErrBucketNotConfigured
	}
	// Check if the bucket already exists
	exists, err := b.BucketExists(ctx)
	if err != nil {
		return fmt.Errorf("create bucket %s: %w", b.BucketName, err)
	}
	if exists {
		log.Println("bucket", b.BucketName, "EXISTS", time.Since(startTime))
		return nil
	}
	// Create the bucket
	req := s3.CreateBucketInput{
		Bucket: &b.BucketName,
		ACL:    types.BucketCannedACLPrivate,
		CreateBucketConfiguration: &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraintUsWest2,
		},
	}
	_, err = b.Client.CreateBucket(ctx, &req)
	if err != nil {
		return fmt.Errorf("create bucket %s: %w", b.BucketName, err)
	}
	// Wait for the bucket to be available
	waiter := s3.NewBucketExistsWaiter(b.Client, func(options *s3.BucketExistsWaiterOptions) {
		options.MinDelay = 3 * time.Second
		options.MaxDelay = 120 * time.Second
	})
	err = waiter.Wait(ctx, &s3.HeadBucketInput{Bucket: &b.BucketName}, 120*time.Second)
	if err != nil {
		return fmt.Errorf("create bucket %s: %w", b.BucketName, err)
	}
	log.Println("bucket", b.BucketName, "CREATED", time.Since(startTime))
	return nil
}

// FileExists returns true if the file exists in the bucket.
func (b Bucket) FileExists(ctx context.Context, fileName string) (bool, error) {
	if b.Client == nil || b.BucketName == "" {
		return false, ErrBucketNotConfigured
	}
	output, err := b.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &b.BucketName,
		Key:    &fileName,
	})
	if err != nil {
		// Not Found is an expected error.
		if strings.Contains(err.Error(), "NotFound") {
			return false, nil
		}
		return false, fmt.Errorf("file %s exists: %w", fileName, err)
	}
	return output != nil, nil
}

// FileInfo returns information about the file in the bucket.
func (b Bucket) FileInfo(ctx context.Context, fileName string) (FileInfo, error) {
	info := FileInfo{
		BucketName: b.BucketName,
		FileName:   fileName,
	}
	if b.Client == nil || b.BucketName == "" {
		return info, ErrBucketNotConfigured
	}
	output, err := b.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &b.BucketName,
		Key:    &fileName,
	})
	if err != nil {
		if strings.Contains(err.Error(), "NotFound") {
			return info, ErrFileNotFound
		}
		return info, fmt.Errorf("file %s info in %s: %w", fileName, b.BucketName, err)
	}
	info.ETag = strings.ReplaceAll(*output.ETag, "\"", "") // remove quotes
	info.ContentType = *output.ContentType
	info.ContentLength = output.ContentLength
	info.LastModified = *output.LastModified
	return info, nil
}

// UploadFile uploads a file to the bucket.
func (b Bucket) UploadFile(ctx context.Context, info FileInfo, file io.Reader) (FileInfo, error) {
	if b.Client == nil || b.BucketName == "" {
		return info, ErrBucketNotConfigured
	}
	// Generate a request with optional fields for additional validation
	info.BucketName = b.BucketName
	req := s3.PutObjectInput{
		Bucket: &b.BucketName,
		Key:    &info.FileName,
		Body:   file,
	}
	if info.ContentType != "" {
		req.ContentType = &info.ContentType
	}
	if info.ContentLength != 0 {
		req.ContentLength = info.ContentLength
	}
	// Upload the file
	res, err := b.Client.PutObject(ctx, &req)
	if err != nil {
		return info, fmt.Errorf("upload %s to %s: %w", info.FileName, b.BucketName, err)
	}
	info.ETag = strings.ReplaceAll(*res.ETag, "\"", "") // remove quotes
	// Return complete file info, on a best-effort basis
	f, err := b.FileInfo(ctx, info.FileName)
	if err != nil {
		return info, nil
	}
	return f, nil
}

// DownloadFile downloads a file from the bucket.
func (b Bucket) DownloadFile(ctx context.Context, fileName string) (FileInfo, io.ReadCloser, error) {
	info := FileInfo{
		BucketName: b.BucketName,
		FileName:   fileName,
	}
	if b.Client == nil || b.BucketName == "" {
		return info, nil, ErrBucketNotConfigured
	}
	// Download the file
	res, err := b.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &b.BucketName,
		Key:    &fileName,
	})
	if err != nil {
		var nf *types.NoSuchKey
		if errors.As(err, &nf) {
			return info, nil, ErrFileNotFound
		}
		return info, nil, fmt.Errorf("download %s from %s: %w", fileName, b.BucketName, err)
	}
	// Return complete file info, as available
	info.ContentLength = res.ContentLength
	if res.ETag != nil {
		info.ETag = strings.ReplaceAll(*res.ETag, "\"", "") // remove unnecessary quotes
	}
	if res.ContentType != nil {
		info.ContentType = *res.ContentType
	}
	if res.LastModified != nil {
		info.LastModified = *res.LastModified
	}
	return info, res.Body, nil
}

// DeleteFile deletes a file from the bucket.
func (b Bucket) DeleteFile(ctx context.Context, fileName string) error {
	if b.Client == nil || b.BucketName == "" {
		return ErrBucketNotConfigured
	}
	// Delete the file
	_, err := b.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &b.BucketName,
		Key:    &fileName,
	})
	// No error occurs if the file does not exist
	if err != nil {
		return fmt.Errorf("delete file %s from %s: %w", fileName, b.BucketName, err)
	}
	return nil
}

// DeleteFiles deletes multiple (maximum 1000) files from the bucket.
func (b Bucket) DeleteFiles(ctx context.Context, fileNames []string) error {
	if b.Client == nil || b.BucketName == "" {
		return ErrBucketNotConfigured
	}
	// Maximum 1000 files can be deleted at once
	if len(fileNames) > 1000 {
		return ErrTooManyFiles
	}
	// Generate list of Object Identifiers
	objects := make([]types.ObjectIdentifier, len(fileNames))
	for i, fileName := range fileNames {
		objects[i] = types.ObjectIdentifier{
			Key:       aws.String(fileName),
			VersionId: nil,
		}
	}
	// Delete the files
	req := s3.DeleteObjectsInput{
		Bucket: &b.BucketName,
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   true,
		},
	}
	res, err := b.Client.DeleteObjects(ctx, &req)
	if err != nil {
		// Note that no error occurs if the file does not exist
		return fmt.Errorf("delete files from %s: %w", b.BucketName, err)
	}
	if len(res.Errors) > 0 {
		var errs []string
		for _, err := range res.Errors {
			errs = append(errs, errorString(err))
		}
		return fmt.Errorf("delete files from %s:\n%s", b.BucketName, strings.Join(errs, "\n"))
	}
	return nil
}

// errorString provides a string representation of an S3 Error.
func errorString(err types.Error) string {
	var msg string
	if err.Code != nil {
		msg += *err.Code + ": "
	}
	if err.Key != nil {
		msg += *err.Key + ": "
	}
	if err.Message != nil {
		msg += *err.Message
	}
	if err.VersionId != nil {
		msg += " (version " + *err.VersionId + ")"
	}
	return msg
}

// ListAllFiles returns a list of files in the bucket. This may be a large list!
func (b Bucket) ListAllFiles(ctx context.Context) ([]FileInfo, error) {
	if b.Client == nil || b.BucketName == "" {
		return nil, ErrBucketNotConfigured
	}
	// List the files using a paginator
	var files []FileInfo
	p := s3.NewListObjectsV2Paginator(b.Client, &s3.ListObjectsV2Input{Bucket: &b.BucketName})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return files, fmt.Errorf("list files in %s: %w", b.BucketName, err)
		}
		for _, f := range page.Contents {
			files = append(files, FileInfo{
				BucketName:    b.BucketName,
				FileName:      *f.Key,
				ContentLength: f.Size,
				ETag:          strings.ReplaceAll(*f.ETag, "\"", ""), // remove unnecessary quotes
				LastModified:  *f.LastModified,
			})
		}
	}
	return files, nil
}
