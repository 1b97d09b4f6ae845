package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetImageStatus(t *testing.T) {
	expect := assert.New(t)
	w := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/v1/images/cat.jpg/status", nil)
	if expect.NoError(err) {
		r.ServeHTTP(w, req)
		expect.Equal(http.StatusOK, w.Code, "HTTP Status Code")
		expect.Equal("*", w.Result().Header.Get("Access-Control-Allow-Origin"), "CORS header")
		var item map[string]any
		if expect.NoError(json.NewDecoder(w.Body).Decode(&item), "Decode JSON Record") {
			expect.Equal("uploads/cat.jpg", item["ImageKey"])
			expect.Equal("uploads/cat.jpg", item["s3_key_original"])
			expect.Equal("COMPLETED", item["overall_processing_status"])
			expect.Equal("SUCCESS", item["validation_status"])
			md, ok := item["extracted_metadata"].(map[string]any)
			if expect.True(ok, "extracted metadata present") {
				// JSON numbers decode as float64; integral values survive exactly
				expect.Equal(float64(800), md["width_pixels"])
				expect.InDelta(800.0/600.0, md["aspect_ratio"], 1e-12)
			}
			thumbs, ok := item["thumbnails"].(map[string]any)
			if expect.True(ok, "thumbnails present") {
				expect.Equal("s3://image-thumbnails-test/thumbnails/cat_128x128.jpeg", thumbs["128x128"])
			}
		}
	}
}

func TestGetImageStatusSentinels(t *testing.T) {
	expect := assert.New(t)
	w := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/v1/images/odd.jpg/status", nil)
	if expect.NoError(err) {
		r.ServeHTTP(w, req)
		expect.Equal(http.StatusOK, w.Code, "HTTP Status Code")
		var item map[string]any
		if expect.NoError(json.NewDecoder(w.Body).Decode(&item), "Decode JSON Record") {
			md := item["extracted_metadata"].(map[string]any)
			found, ok := md["rekognition_labels"].([]any)
			if expect.True(ok, "labels present") && expect.Len(found, 1) {
				// A non-finite confidence is stored and served as its sentinel string
				expect.Equal("NaN", found[0].(map[string]any)["Confidence"])
			}
		}
	}
}

func TestGetImageStatusNotFound(t *testing.T) {
	expect := assert.New(t)
	w := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/v1/images/missing.png/status", nil)
	if expect.NoError(err) {
		r.ServeHTTP(w, req)
		expect.Equal(http.StatusNotFound, w.Code, "HTTP Status Code")
		expect.Equal("*", w.Result().Header.Get("Access-Control-Allow-Origin"), "CORS header on errors too")
		var body map[string]string
		if expect.NoError(json.NewDecoder(w.Body).Decode(&body), "Decode JSON Error") {
			expect.Contains(body["error"], "not found")
			expect.Contains(body["error"], "missing.png")
		}
	}
}
