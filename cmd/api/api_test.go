package main

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"imagepipeline-api/pkg/app"
	"imagepipeline-api/pkg/labels"
	"imagepipeline-api/pkg/pipeline"
)

var r = gin.New()

func TestMain(m *testing.M) {
	// Initialize the application for testing
	err := api.InitMock("test")
	if err != nil {
		log.Fatal(err)
	}

	// Populate the record store with test data
	generateRecords()

	// Initialize the gin router
	r.Use(gin.Recovery())
	gin.SetMode(gin.TestMode)
	gin.DisableConsoleColor()
	registerRoutes(r)

	// Run the tests
	m.Run()
}

func generateRecords() {
	ctx := context.Background()
	// A fully processed image
	_, err := api.Pipeline.Persist(ctx, pipeline.State{
		S3Bucket:         api.Config.UploadsBucket,
		S3Key:            "uploads/cat.jpg",
		ImageType:        ".jpg",
		ValidationStatus: pipeline.SUCCESS,
		Thumbnails: map[string]string{
			"128x128": "s3://image-thumbnails-test/thumbnails/cat_128x128.jpeg",
		},
		ThumbnailStatus: pipeline.SUCCESS,
		Metadata: &pipeline.Metadata{
			Filename:      "cat.jpg",
			FilesizeBytes: 54321,
			Format:        "JPEG",
			WidthPixels:   800,
			HeightPixels:  600,
			Mode:          "RGB",
			AspectRatio:   800.0 / 600.0,
		},
		MetadataStatus: pipeline.SUCCESS,
	})
	if err != nil {
		log.Fatal(err)
	}
	// A record carrying a non-finite label confidence
	_, err = api.Pipeline.Persist(ctx, pipeline.State{
		S3Bucket:         api.Config.UploadsBucket,
		S3Key:            "uploads/odd.jpg",
		ImageType:        ".jpg",
		ValidationStatus: pipeline.SUCCESS,
		Metadata: &pipeline.Metadata{
			Filename:      "odd.jpg",
			FilesizeBytes: 10,
			Format:        "JPEG",
			WidthPixels:   1,
			HeightPixels:  1,
			Mode:          "RGB",
			RekognitionLabels: []labels.Label{
				{Name: "Weird", Confidence: math.NaN()},
			},
		},
		MetadataStatus: pipeline.SUCCESS,
	})
	if err != nil {
		log.Fatal(err)
	}
}

func TestAbout(t *testing.T) {
	expect := assert.New(t)
	w := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/", nil)
	if expect.NoError(err) {
		r.ServeHTTP(w, req)
		expect.Equal(http.StatusOK, w.Code, "HTTP Status Code")
		var about app.About
		if expect.NoError(json.NewDecoder(w.Body).Decode(&about), "Decode JSON About") {
			expect.Equal(api.About(), about, "About")
		}
	}
}

func TestNotFound(t *testing.T) {
	expect := assert.New(t)
	w := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/not_found", nil)
	if expect.NoError(err) {
		r.ServeHTTP(w, req)
		expect.Equal(http.StatusNotFound, w.Code, "HTTP Status Code")
		var body map[string]string
		if expect.NoError(json.NewDecoder(w.Body).Decode(&body), "Decode JSON Error") {
			expect.Equal("not found: API endpoint", body["error"])
		}
	}
}
