// Package labels provides the label-detection boundary for the image
// pipeline: a Detector interface, an Amazon Rekognition implementation,
// and an in-memory mock for testing.
package labels

import (
	"context"
)

// Label is a detected image label with its confidence score (0-100).
// The field names match the wire format of the stored record.
type Label struct {
	Name       string  `json:"Name"`
	Confidence float64 `json:"Confidence"`
}

// Detector is the interface for detecting labels in a stored image.
type Detector interface {
	DetectLabels(ctx context.Context, bucketName, fileName string, maxLabels int32, minConfidence float32) ([]Label, error)
}
