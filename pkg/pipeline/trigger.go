package pipeline

import (
	"fmt"
	"net/url"
)

// Trigger is the raw payload that starts a pipeline run. Two historical
// shapes appear in practice, depending on how the caller packages the S3
// event: the nested S3 notification shape
// {Records: [{s3: {bucket: {name}, object: {key}}}]} and the flat pair
// {s3_bucket, s3_key}. Both shapes are carried on one struct and resolved
// by Source.
type Trigger struct {
	S3Bucket string          `json:"s3_bucket,omitempty"`
	S3Key    string          `json:"s3_key,omitempty"`
	Records  []TriggerRecord `json:"Records,omitempty"`
}

// TriggerRecord is one record of the nested S3 notification shape.
type TriggerRecord struct {
	S3 struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key string `json:"key"`
		} `json:"object"`
	} `json:"s3"`
}

// Source resolves the trigger into a bucket name and a decoded object key.
// The nested shape is tried first, then the flat pair; if neither yields
// both values the trigger is malformed. Object keys arrive percent-encoded
// in S3 notifications (spaces become "+"), so the key is decoded here,
// exactly once, before anything downstream reads it.
func (t Trigger) Source() (string, string, error) {
	bucketName, objectKey := t.S3Bucket, t.S3Key
	if len(t.Records) > 0 {
		r := t.Records[0]
		if r.S3.Bucket.Name != "" && r.S3.Object.Key != "" {
			bucketName, objectKey = r.S3.Bucket.Name, r.S3.Object.Key
		}
	}
	if bucketName == "" || objectKey == "" {
		return "", "", fmt.Errorf("%w: bucket name or object key not found", ErrMalformedTrigger)
	}
	decoded, err := url.QueryUnescape(objectKey)
	if err != nil {
		return "", "", fmt.Errorf("%w: decode object key %q: %v", ErrMalformedTrigger, objectKey, err)
	}
	return bucketName, decoded, nil
}
