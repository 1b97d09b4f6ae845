package pipeline

import (
	"fmt"
	"path"
	"strings"
)

// SupportedImageTypes is the complete set of file extensions accepted by
// the validation gate. Extensions are matched case-insensitively against
// the lower-cased form.
var SupportedImageTypes = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// SupportedImageTypeList returns the supported extensions in a stable order.
func SupportedImageTypeList() []string {
	return []string{".jpg", ".jpeg", ".png"}
}

// Validate is the pipeline's gate stage. It resolves the trigger into a
// source location, decodes the object key, and accepts the image iff its
// extension is in the supported set. On acceptance it emits the initial
// State with the lower-cased extension recorded; on rejection it emits no
// state and the run is expected to stop.
func (s Service) Validate(t Trigger) (State, error) {
	bucketName, objectKey, err := t.Source()
	if err != nil {
		return State{}, err
	}
	ext := strings.ToLower(path.Ext(objectKey))
	if !SupportedImageTypes[ext] {
		supported := strings.Join(SupportedImageTypeList(), ", ")
		return State{}, fmt.Errorf("%w: %q (supported types: %s)", ErrUnsupportedFormat, ext, supported)
	}
	return State{
		S3Bucket:         bucketName,
		S3Key:            objectKey,
		ImageType:        ext,
		ValidationStatus: SUCCESS,
	}, nil
}
