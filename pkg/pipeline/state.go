package pipeline

import (
	"fmt"
	"path"
	"strings"

	"imagepipeline-api/pkg/labels"
	"imagepipeline-api/pkg/store"
)

// State is the accumulating record threaded through every pipeline stage.
// Each stage consumes the state, adds its own contribution, and returns the
// extended state; downstream stages read only the fields they need and
// tolerate absent optional fields. The JSON field names are the wire format
// exchanged between stage invocations.
//
// S3Key always holds the decoded (un-percent-encoded) object key. It is
// decoded exactly once, when the trigger payload is parsed, and is the
// identity every stage, the persister, and the status resolver key on.
type State struct {
	S3Bucket         string            `json:"s3_bucket"`
	S3Key            string            `json:"s3_key"`
	ImageType        string            `json:"image_type,omitempty"`                  // Lower-cased file extension, set by validation
	ValidationStatus StageStatus       `json:"validation_status,omitempty"`           // Terminal once set
	Thumbnails       map[string]string `json:"thumbnails,omitempty"`                  // Size label (e.g. "128x128") to s3:// location
	ThumbnailStatus  StageStatus       `json:"thumbnail_generation_status,omitempty"` // SUCCESS only if every target box succeeded
	Metadata         *Metadata         `json:"extracted_metadata,omitempty"`
	MetadataStatus   StageStatus       `json:"metadata_extraction_status,omitempty"`
	OverallStatus    OverallStatus     `json:"overall_processing_status,omitempty"` // COMPLETED only after a successful upsert
	CreatedAt        int64             `json:"created_at,omitempty"`                // Unix epoch seconds, set on first persistence
	UpdatedAt        int64             `json:"updated_at,omitempty"`                // Unix epoch seconds, set on every persistence
}

// Metadata holds the attributes extracted from the source image. The
// intrinsic fields are required for a successful extraction; the
// Rekognition fields are best-effort.
type Metadata struct {
	Filename          string         `json:"filename"`
	FilesizeBytes     int64          `json:"filesize_bytes"`
	Format            string         `json:"format"` // e.g. "JPEG", "PNG"
	WidthPixels       int            `json:"width_pixels"`
	HeightPixels      int            `json:"height_pixels"`
	Mode              string         `json:"mode"` // Color mode, e.g. "RGB", "RGBA", "L"
	AspectRatio       float64        `json:"aspect_ratio,omitempty"`
	MD5Hash           string         `json:"md5_hash,omitempty"`
	PHash             string         `json:"phash,omitempty"`
	RekognitionLabels []labels.Label `json:"rekognition_labels,omitempty"`
	RekognitionError  string         `json:"rekognition_error,omitempty"`
}

// Type returns the entity type of the State.
func (s State) Type() string {
	return "ImageRecord"
}

// Label returns a text label for the State.
func (s State) Label() string {
	if s.S3Key != "" {
		return path.Base(s.S3Key)
	}
	return "(unknown image)"
}

// String returns a string representation of the State.
func (s State) String() string {
	return fmt.Sprintf("ImageRecord s3://%s/%s", s.S3Bucket, s.S3Key)
}

// HasSource returns true if the source image location is populated.
func (s State) HasSource() bool {
	return s.S3Bucket != "" && s.S3Key != ""
}

// Validate checks whether the State has all required fields and whether the
// supplied values are valid, returning a list of problems. If the list is
// empty, then the State is valid.
func (s State) Validate() []string {
	var problems []string
	if s.S3Bucket == "" {
		problems = append(problems, "S3Bucket is missing")
	}
	if s.S3Key == "" {
		problems = append(problems, "S3Key is missing")
	}
	if s.ImageType != "" && !SupportedImageTypes[strings.ToLower(s.ImageType)] {
		expected := strings.Join(SupportedImageTypeList(), ", ")
		problems = append(problems, "ImageType is unsupported. Expected: "+expected)
	}
	if s.ValidationStatus != "" && !s.ValidationStatus.IsValid() {
		problems = append(problems, "ValidationStatus is invalid")
	}
	if s.ThumbnailStatus != "" && !s.ThumbnailStatus.IsValid() {
		problems = append(problems, "ThumbnailStatus is invalid")
	}
	if s.MetadataStatus != "" && !s.MetadataStatus.IsValid() {
		problems = append(problems, "MetadataStatus is invalid")
	}
	return problems
}

// Item converts the State into a generic record for persistence. The field
// selection is explicit: only the documented record attributes are stored,
// regardless of what else may accumulate on the state.
func (s State) Item() store.Item {
	thumbnails := s.Thumbnails
	if thumbnails == nil {
		thumbnails = map[string]string{}
	}
	item := store.Item{
		"s3_bucket_original":          s.S3Bucket,
		"s3_key_original":             s.S3Key,
		"image_type":                  s.ImageType,
		"validation_status":           s.ValidationStatus.String(),
		"thumbnails":                  thumbnails,
		"thumbnail_generation_status": s.ThumbnailStatus.String(),
		"extracted_metadata":          s.Metadata.Item(),
		"metadata_extraction_status":  s.MetadataStatus.String(),
	}
	return item
}

// Item converts the Metadata into a generic record subtree. A nil Metadata
// converts to an empty map, matching the wire format for a run whose
// metadata stage never completed.
func (m *Metadata) Item() map[string]any {
	if m == nil {
		return map[string]any{}
	}
	item := map[string]any{
		"filename":       m.Filename,
		"filesize_bytes": m.FilesizeBytes,
		"format":         m.Format,
		"width_pixels":   m.WidthPixels,
		"height_pixels":  m.HeightPixels,
		"mode":           m.Mode,
	}
	if m.AspectRatio != 0 {
		item["aspect_ratio"] = m.AspectRatio
	}
	if m.MD5Hash != "" {
		item["md5_hash"] = m.MD5Hash
	}
	if m.PHash != "" {
		item["phash"] = m.PHash
	}
	if m.RekognitionLabels != nil {
		found := make([]any, len(m.RekognitionLabels))
		for i, l := range m.RekognitionLabels {
			found[i] = map[string]any{
				"Name":       l.Name,
				"Confidence": l.Confidence,
			}
		}
		item["rekognition_labels"] = found
	}
	if m.RekognitionError != "" {
		item["rekognition_error"] = m.RekognitionError
	}
	return item
}
