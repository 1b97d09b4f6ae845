package pipeline

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the process-wide, read-only pipeline configuration. It is
// built once at process start and passed into the service; stages never
// consult the environment directly.
type Config struct {
	Environment      string  `envconfig:"STAGE_NAME" default:"dev"`
	UploadsBucket    string  `envconfig:"UPLOADS_S3_BUCKET"`           // Defaults to image-uploads-{env}
	ThumbnailsBucket string  `envconfig:"THUMBNAILS_S3_BUCKET"`        // Defaults to image-thumbnails-{env}
	TableName        string  `envconfig:"DYNAMODB_TABLE_NAME"`         // Defaults to image-processing-results-{env}
	ThumbnailSizes   string  `envconfig:"THUMBNAIL_SIZES" default:"128x128,256x256"`
	UseRekognition   bool    `envconfig:"USE_REKOGNITION" default:"false"`
	MaxLabels        int32   `envconfig:"MAX_LABELS" default:"10"`
	MinConfidence    float32 `envconfig:"MIN_CONFIDENCE" default:"75"`
	KeyPrefix        string  `envconfig:"KEY_PREFIX" default:"uploads/"` // Ingestion prefix reconstructed by the status resolver
}

// LoadConfig reads the pipeline configuration from the environment and
// fills in environment-derived defaults for unset resource names.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("load pipeline config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// setDefaults fills in resource names derived from the environment name,
// along with the same fallbacks the envconfig tags declare, so that a
// Config built directly (e.g. for the mock service) behaves like one read
// from the environment.
func (c *Config) setDefaults() {
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.UploadsBucket == "" {
		c.UploadsBucket = "image-uploads-" + c.Environment
	}
	if c.ThumbnailsBucket == "" {
		c.ThumbnailsBucket = "image-thumbnails-" + c.Environment
	}
	if c.TableName == "" {
		c.TableName = "image-processing-results-" + c.Environment
	}
	if c.ThumbnailSizes == "" {
		c.ThumbnailSizes = "128x128,256x256"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "uploads/"
	}
	if c.MaxLabels == 0 {
		c.MaxLabels = 10
	}
	if c.MinConfidence == 0 {
		c.MinConfidence = 75
	}
}

// Size is one thumbnail target box. Derived thumbnails fit entirely within
// the box, preserving the source aspect ratio.
type Size struct {
	Width  int
	Height int
}

// Label returns the size label used as the thumbnails map key.
func (s Size) Label() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// String returns a string representation of the Size.
func (s Size) String() string {
	return s.Label()
}

// Sizes parses the configured thumbnail sizes. Invalid entries are skipped
// with a warning rather than failing the whole configuration.
func (c Config) Sizes() []Size {
	return ParseSizes(c.ThumbnailSizes)
}

// ParseSizes parses a comma-separated list of WxH pairs (e.g. "128x128,256x256").
func ParseSizes(s string) []Size {
	var sizes []Size
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		w, h, ok := strings.Cut(pair, "x")
		if !ok {
			log.Printf("warning: invalid size format %q, skipping", pair)
			continue
		}
		width, errW := strconv.Atoi(w)
		height, errH := strconv.Atoi(h)
		if errW != nil || errH != nil || width <= 0 || height <= 0 {
			log.Printf("warning: invalid size format %q, skipping", pair)
			continue
		}
		sizes = append(sizes, Size{Width: width, Height: height})
	}
	return sizes
}
