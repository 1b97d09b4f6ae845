package bucket

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"time"
)

// MemBucket is an in-memory bucket implementation used for managing a collection of files.
// It implements the BucketReader and BucketWriter interfaces, and is intended to be used
// for testing purposes only.
type MemBucket struct {
	FileSet    *MemFileSet
	EntityType string
	BucketName string
}

// NewMemBucket returns a new MemBucket.
func NewMemBucket(b Bucket) MemBucket {
	return MemBucket{
		FileSet:    &MemFileSet{},
		EntityType: b.EntityType,
		BucketName: b.BucketName,
	}
}

// IsValid returns true if the bucket is configured properly.
func (mb MemBucket) IsValid() bool {
	return mb.FileSet != nil && mb.EntityType != "" && mb.BucketName != ""
}

// ObjectURI returns the canonical s3:// URI for a file in the bucket.
func (mb MemBucket) ObjectURI(fileName string) string {
	return "s3://" + mb.BucketName + "/" + fileName
}

// FileExists returns true if the file exists in the bucket.
func (mb MemBucket) FileExists(ctx context.Context, fileName string) (bool, error) {
	return mb.FileSet.FileExists(fileName), nil
}

// FileInfo returns information about a file in the bucket.
func (mb MemBucket) FileInfo(ctx context.Context, fileName string) (FileInfo, error) {
	mf, ok := mb.FileSet.GetFile(fileName)
	if !ok {
		return FileInfo{}, ErrFileNotFound
	}
	return mf.FileInfo(mb.BucketName), nil
}

// UploadFile uploads a file to the bucket.
func (mb MemBucket) UploadFile(ctx context.Context, info FileInfo, file io.Reader) (FileInfo, error) {
	blob, err := io.ReadAll(file)
	if err != nil {
		return info, fmt.Errorf("upload %s to %s: %w", info.FileName, mb.BucketName, err)
	}
	mf := MemFile{
		FileName:      info.FileName,
		ContentType:   info.ContentType,
		ContentLength: int64(len(blob)),
		ETag:          fmt.Sprintf("%x", md5.Sum(blob)),
		LastModified:  time.Now(),
		Blob:          blob,
	}
	mb.FileSet.AddFile(mf)
	return mf.FileInfo(mb.BucketName), nil
}

// DownloadFile downloads a file from the bucket.
func (mb MemBucket) DownloadFile(ctx context.Context, fileName string) (FileInfo, io.ReadCloser, error) {
	mf, ok := mb.FileSet.GetFile(fileName)
	if !ok {
		return FileInfo{BucketName: mb.BucketName, FileName: fileName}, nil, ErrFileNotFound
	}
	info := mf.FileInfo(mb.BucketName)
	rc := io.NopCloser(bytes.NewReader(mf.Blob))
	return info, rc, nil
}

// DeleteFile deletes a file from the bucket.
func (mb MemBucket) DeleteFile(ctx context.Context, fileName string) error {
	mb.FileSet.DeleteFile(fileName)
	return nil
}

// DeleteFiles deletes the specified files from the bucket.
func (mb MemBucket) DeleteFiles(ctx context.Context, fileNames []string) error {
	// Maximum 1000 files can be deleted at once
	if len(fileNames) > 1000 {
		return ErrTooManyFiles
	}
	// Delete files
	for _, fileName := range fileNames {
		mb.FileSet.DeleteFile(fileName)
	}
	return nil
}

// ListAllFiles returns a list of files in the bucket. This may be a large list!
func (mb MemBucket) ListAllFiles(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo
	for _, mf := range mb.FileSet.ListFiles() {
		files = append(files, mf.FileInfo(mb.BucketName))
	}
	return files, nil
}
