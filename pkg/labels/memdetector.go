package labels

import (
	"context"
)

// MemDetector is an in-memory Detector returning canned labels,
// intended for testing purposes only.
type MemDetector struct {
	Labels []Label
	Err    error
}

// DetectLabels returns the canned labels (or error), applying the same
// confidence threshold and limit a real detector would.
func (d MemDetector) DetectLabels(ctx context.Context, bucketName, fileName string, maxLabels int32, minConfidence float32) ([]Label, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	var found []Label
	for _, l := range d.Labels {
		if l.Confidence >= float64(minConfidence) {
			found = append(found, l)
		}
		if len(found) == int(maxLabels) {
			break
		}
	}
	return found, nil
}
