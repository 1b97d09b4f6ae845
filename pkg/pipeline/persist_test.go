package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"imagepipeline-api/pkg/labels"
	"imagepipeline-api/pkg/store"
)

func TestPersistAndResolveRoundTrip(t *testing.T) {
	expect := assert.New(t)
	s := newTestService("128x128,256x256")
	uploadSource(t, s, "uploads/cat.jpg", "image/jpeg", testJPEG(t, 800, 600))

	// Run the full pipeline: validate, thumbnails, metadata, persist.
	st, err := s.Validate(Trigger{S3Bucket: s.Config.UploadsBucket, S3Key: "uploads/cat.jpg"})
	expect.NoError(err)
	st, err = s.DeriveThumbnails(ctx, st)
	expect.NoError(err)
	st, err = s.ExtractMetadata(ctx, st)
	expect.NoError(err)
	st, err = s.Persist(ctx, st)
	expect.NoError(err)
	expect.Equal(COMPLETED, st.OverallStatus)
	expect.NotZero(st.CreatedAt)
	expect.Equal(st.CreatedAt, st.UpdatedAt, "first persistence")

	// Resolve by the client-facing filename (ingestion prefix omitted).
	item, found, err := s.Status(ctx, "cat.jpg")
	expect.NoError(err)
	expect.True(found)
	expect.Equal("uploads/cat.jpg", item[store.KeyAttribute])
	expect.Equal("uploads/cat.jpg", item["s3_key_original"])
	expect.Equal(s.Config.UploadsBucket, item["s3_bucket_original"])
	expect.Equal(".jpg", item["image_type"])
	expect.Equal("SUCCESS", item["validation_status"])
	expect.Equal("SUCCESS", item["thumbnail_generation_status"])
	expect.Equal("SUCCESS", item["metadata_extraction_status"])
	expect.Equal("COMPLETED", item["overall_processing_status"])
	expect.Equal(st.CreatedAt, item["created_at"])
	expect.Equal(st.UpdatedAt, item["updated_at"])

	thumbs, ok := item["thumbnails"].(map[string]any)
	if expect.True(ok, "thumbnails is a map") {
		expect.Len(thumbs, 2)
		expect.Equal("s3://image-thumbnails-test/thumbnails/cat_128x128.jpeg", thumbs["128x128"])
		expect.Equal("s3://image-thumbnails-test/thumbnails/cat_256x256.jpeg", thumbs["256x256"])
	}

	// Numeric leaves come back through the store's exact-decimal form:
	// integral values as int64, fractional ones as float64.
	md, ok := item["extracted_metadata"].(map[string]any)
	if expect.True(ok, "extracted_metadata is a map") {
		expect.Equal("cat.jpg", md["filename"])
		expect.Equal("JPEG", md["format"])
		expect.Equal(int64(800), md["width_pixels"])
		expect.Equal(int64(600), md["height_pixels"])
		expect.Equal("RGB", md["mode"])
		if ratio, ok := md["aspect_ratio"].(float64); expect.True(ok, "aspect_ratio is fractional") {
			expect.InDelta(800.0/600.0, ratio, 1e-12)
		}
		expect.NotEmpty(md["md5_hash"])
	}
}

func TestPersistIsIdempotent(t *testing.T) {
	expect := assert.New(t)
	s := newTestService("128x128")
	st := State{
		S3Bucket:         "b",
		S3Key:            "uploads/cat.jpg",
		ImageType:        ".jpg",
		ValidationStatus: SUCCESS,
	}

	st1, err := s.Persist(ctx, st)
	expect.NoError(err)
	st2, err := s.Persist(ctx, st)
	expect.NoError(err)

	mt := s.Table.(store.MemTable)
	expect.Equal(1, mt.Count(), "re-running the pipeline upserts, never duplicates")
	expect.Equal(st1.CreatedAt, st2.CreatedAt, "created_at survives a re-run")
	expect.GreaterOrEqual(st2.UpdatedAt, st1.UpdatedAt)
}

func TestPersistPreservesCreatedAt(t *testing.T) {
	expect := assert.New(t)
	s := newTestService("128x128")
	expect.NoError(s.Table.PutRecord(ctx, "uploads/cat.jpg", store.Item{"created_at": int64(1000)}))

	st, err := s.Persist(ctx, State{S3Bucket: "b", S3Key: "uploads/cat.jpg", ImageType: ".jpg"})
	expect.NoError(err)
	expect.Equal(int64(1000), st.CreatedAt)
	expect.Greater(st.UpdatedAt, int64(1000))

	item, found, err := s.Status(ctx, "cat.jpg")
	expect.NoError(err)
	expect.True(found)
	expect.Equal(int64(1000), item["created_at"])
}

func TestPersistNonFiniteConfidence(t *testing.T) {
	expect := assert.New(t)
	s := newTestService("128x128")
	st := State{
		S3Bucket:  "b",
		S3Key:     "uploads/odd.jpg",
		ImageType: ".jpg",
		Metadata: &Metadata{
			Filename:      "odd.jpg",
			FilesizeBytes: 10,
			Format:        "JPEG",
			WidthPixels:   1,
			HeightPixels:  1,
			Mode:          "RGB",
			RekognitionLabels: []labels.Label{
				{Name: "Weird", Confidence: math.NaN()},
				{Name: "Stranger", Confidence: math.Inf(1)},
				{Name: "Plain", Confidence: 80.5},
			},
		},
	}

	_, err := s.Persist(ctx, st)
	expect.NoError(err, "non-finite numbers persist as sentinels, never fail the write")

	item, found, err := s.Status(ctx, "odd.jpg")
	expect.NoError(err)
	expect.True(found)
	md := item["extracted_metadata"].(map[string]any)
	found2, ok := md["rekognition_labels"].([]any)
	if !expect.True(ok, "labels survive as a list") {
		return
	}
	expect.Len(found2, 3)
	expect.Equal(store.NaN, found2[0].(map[string]any)["Confidence"])
	expect.Equal(store.PosInfinity, found2[1].(map[string]any)["Confidence"])
	expect.Equal(80.5, found2[2].(map[string]any)["Confidence"])
}

func TestPersistRequiresKey(t *testing.T) {
	expect := assert.New(t)
	s := newTestService("128x128")

	_, err := s.Persist(ctx, State{S3Bucket: "b"})
	expect.ErrorIs(err, ErrMissingIdentity)
}

func TestStatusNotFound(t *testing.T) {
	expect := assert.New(t)
	s := newTestService("128x128")

	item, found, err := s.Status(ctx, "missing.png")
	expect.NoError(err, "an absent record is a negative result, not an error")
	expect.False(found)
	expect.Nil(item)
}

func TestStatusTrimsLeadingSlash(t *testing.T) {
	expect := assert.New(t)
	s := newTestService("128x128")
	_, err := s.Persist(ctx, State{S3Bucket: "b", S3Key: "uploads/cat.jpg", ImageType: ".jpg"})
	expect.NoError(err)

	_, found, err := s.Status(ctx, "/cat.jpg")
	expect.NoError(err)
	expect.True(found)
}

func TestStatusRequiresFilename(t *testing.T) {
	expect := assert.New(t)
	s := newTestService("128x128")

	_, _, err := s.Status(ctx, "")
	expect.ErrorIs(err, ErrMissingIdentity)
}
