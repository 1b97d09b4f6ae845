package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	b "imagepipeline-api/pkg/bucket"
	"imagepipeline-api/pkg/pipeline"
)

// initImageCmd initializes the "image" commands.
func initImageCmd(root *cobra.Command) {
	imageCmd := &cobra.Command{
		Use:   "image",
		Short: "Manage pipeline images",
	}
	root.AddCommand(imageCmd)

	// Upload Command
	uploadCmd := &cobra.Command{
		Use:   "upload [file...]",
		Short: "Upload local image file(s) to the uploads bucket",
		Long: `Upload the specified image file(s) to the uploads bucket, under the
configured ingestion prefix. Uploading triggers the deployed pipeline.`,
		Args: cobra.MinimumNArgs(1),
		RunE: uploadImages,
	}
	uploadCmd.Flags().StringP("env", "e", "", "Operating environment: dev | test | staging | prod")
	_ = uploadCmd.MarkFlagRequired("env")
	imageCmd.AddCommand(uploadCmd)

	// Process Command
	processCmd := &cobra.Command{
		Use:   "process [key...]",
		Short: "Run the pipeline stages for uploaded object key(s)",
		Long: `Run validation, thumbnail derivation, metadata extraction, and persistence
for each specified object key, printing the resulting record state.
With --file, the file is first uploaded; with --mock, everything runs
against in-memory storage (a local end-to-end dry run).`,
		RunE: processImages,
	}
	processCmd.Flags().StringP("env", "e", "", "Operating environment: dev | test | staging | prod")
	processCmd.Flags().StringP("file", "f", "", "Local image file to upload before processing")
	processCmd.Flags().BoolP("mock", "m", false, "Use in-memory storage instead of AWS")
	imageCmd.AddCommand(processCmd)

	// Status Command
	statusCmd := &cobra.Command{
		Use:   "status [filename...]",
		Short: "Print the stored processing record for image(s)",
		Args:  cobra.MinimumNArgs(1),
		RunE:  imageStatus,
	}
	statusCmd.Flags().StringP("env", "e", "", "Operating environment: dev | test | staging | prod")
	_ = statusCmd.MarkFlagRequired("env")
	imageCmd.AddCommand(statusCmd)
}

// uploadImages uploads the specified local files to the uploads bucket.
func uploadImages(cmd *cobra.Command, args []string) error {
	err := ops.Init(cmd.Flag("env").Value.String())
	if err != nil {
		return fmt.Errorf("error initializing application: %w", err)
	}
	ctx := context.Background()
	for _, name := range args {
		info, err := uploadImage(ctx, ops.Pipeline, name)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded %s to s3://%s/%s (%d bytes)\n",
			name, info.BucketName, info.FileName, info.ContentLength)
	}
	return nil
}

// processImages runs the pipeline stages for the specified object keys.
func processImages(cmd *cobra.Command, args []string) error {
	mock, _ := cmd.Flags().GetBool("mock")
	var err error
	if mock {
		err = ops.InitMock(cmd.Flag("env").Value.String())
	} else {
		err = ops.Init(cmd.Flag("env").Value.String())
	}
	if err != nil {
		return fmt.Errorf("error initializing application: %w", err)
	}
	ctx := context.Background()
	keys := args
	if name := cmd.Flag("file").Value.String(); name != "" {
		info, err := uploadImage(ctx, ops.Pipeline, name)
		if err != nil {
			return err
		}
		keys = append(keys, info.FileName)
	}
	if len(keys) == 0 {
		return fmt.Errorf("no object keys to process (specify keys or --file)")
	}
	for _, key := range keys {
		st, err := processImage(ctx, ops.Pipeline, key)
		if err != nil {
			return err
		}
		blob, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(blob))
	}
	return nil
}

// processImage runs every pipeline stage, in order, for one object key.
func processImage(ctx context.Context, service pipeline.Service, key string) (pipeline.State, error) {
	st, err := service.Validate(pipeline.Trigger{
		S3Bucket: service.Config.UploadsBucket,
		S3Key:    key,
	})
	if err != nil {
		return st, err
	}
	if st, err = service.DeriveThumbnails(ctx, st); err != nil {
		return st, err
	}
	if st, err = service.ExtractMetadata(ctx, st); err != nil {
		return st, err
	}
	return service.Persist(ctx, st)
}

// imageStatus prints the stored processing record for the specified filenames.
func imageStatus(cmd *cobra.Command, args []string) error {
	err := ops.Init(cmd.Flag("env").Value.String())
	if err != nil {
		return fmt.Errorf("error initializing application: %w", err)
	}
	ctx := context.Background()
	for _, filename := range args {
		item, found, err := ops.Pipeline.Status(ctx, filename)
		if err != nil {
			return err
		}
		if !found {
			fmt.Println(filename, "NOT FOUND")
			continue
		}
		blob, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(blob))
	}
	return nil
}

// uploadImage uploads one local file under the configured ingestion prefix.
func uploadImage(ctx context.Context, service pipeline.Service, name string) (b.FileInfo, error) {
	f, err := os.Open(filepath.Clean(name))
	if err != nil {
		return b.FileInfo{}, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()
	stat, err := f.Stat()
	if err != nil {
		return b.FileInfo{}, fmt.Errorf("stat %s: %w", name, err)
	}
	info := b.FileInfo{
		FileName:      service.Config.KeyPrefix + filepath.Base(name),
		ContentType:   mime.TypeByExtension(path.Ext(name)),
		ContentLength: stat.Size(),
	}
	uploads, ok := service.Uploads.(b.BucketReadWriter)
	if !ok {
		return b.FileInfo{}, fmt.Errorf("uploads bucket is not writable")
	}
	return uploads.UploadFile(ctx, info, f)
}
