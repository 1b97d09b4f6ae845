package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	b "imagepipeline-api/pkg/bucket"
	"imagepipeline-api/pkg/pipeline"
)

// initBucketCmd initializes the "bucket" command.
func initBucketCmd(root *cobra.Command) {
	bucketCmd := &cobra.Command{
		Use:   "bucket",
		Short: "Ensure that the S3 bucket(s) exist",
		Long:  "Check the uploads and thumbnails buckets, creating them if they do not exist.",
		RunE:  checkBuckets,
	}
	bucketCmd.Flags().StringP("env", "e", "", "Operating environment: dev | test | staging | prod")
	_ = bucketCmd.MarkFlagRequired("env")
	root.AddCommand(bucketCmd)
}

// checkBuckets checks each bucket in the specified environment.
func checkBuckets(cmd *cobra.Command, args []string) error {
	err := ops.Init(cmd.Flag("env").Value.String())
	if err != nil {
		return fmt.Errorf("error initializing application: %w", err)
	}
	ctx := context.Background()
	fmt.Printf("Checking buckets %s and %s in %s\n",
		ops.Config.UploadsBucket, ops.Config.ThumbnailsBucket, ops.Environment)
	checkBucket(ctx, pipeline.NewUploadsBucket(ops.S3Client, ops.Config))
	checkBucket(ctx, pipeline.NewThumbnailsBucket(ops.S3Client, ops.Config))
	return nil
}

// checkBucket creates an S3 bucket if it does not already exist.
func checkBucket(ctx context.Context, bucket b.Bucket) {
	if !bucket.IsValid() {
		log.Println("bucket", bucket.BucketName, "INVALID bucket definition - skipping")
		return
	}
	exists, err := bucket.BucketExists(ctx)
	if err != nil {
		log.Println("bucket", bucket.BucketName, "ERROR checking bucket:", err)
		return
	}
	if !exists {
		if err := bucket.CreateBucket(ctx); err != nil {
			log.Println("bucket", bucket.BucketName, "ERROR creating bucket:", err)
		}
	}
}
