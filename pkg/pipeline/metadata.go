package pipeline

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"image"
	"path"
	"strings"

	"github.com/corona10/goimagehash"
	"github.com/sirupsen/logrus"
)

// ExtractMetadata decodes the source image's intrinsic attributes (format,
// dimensions, color mode, byte size) into the state, along with an MD5 and
// a perceptual hash of the blob. When label detection is enabled, it also
// asks the detector for labels; a detection failure is recorded on the
// metadata rather than failing the stage, since the intrinsic attributes
// are the required result and labels are best-effort. Only a source that
// cannot be decoded at all fails the stage.
func (s Service) ExtractMetadata(ctx context.Context, st State) (State, error) {
	if !st.HasSource() {
		return st, fmt.Errorf("%w: extract metadata requires a source location", ErrMissingIdentity)
	}
	blob, err := s.fetchSource(ctx, st)
	if err != nil {
		return st, err
	}
	img, format, err := image.Decode(bytes.NewReader(blob))
	if err != nil {
		return st, fmt.Errorf("%w: %s: %v", ErrImageDecodeFailed, st, err)
	}
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	md := &Metadata{
		Filename:      path.Base(st.S3Key),
		FilesizeBytes: int64(len(blob)),
		Format:        strings.ToUpper(format),
		WidthPixels:   width,
		HeightPixels:  height,
		Mode:          colorMode(img),
		AspectRatio:   float64(width) / float64(height),
		MD5Hash:       fmt.Sprintf("%x", md5.Sum(blob)),
	}
	if h, err := goimagehash.PerceptionHash(img); err == nil {
		md.PHash = h.ToString()
	}
	if s.Config.UseRekognition && s.Detector != nil {
		found, err := s.Detector.DetectLabels(ctx, st.S3Bucket, st.S3Key, s.Config.MaxLabels, s.Config.MinConfidence)
		if err != nil {
			// Best-effort: record the failure as data and keep going.
			logrus.WithFields(logrus.Fields{
				"key": st.S3Key,
			}).WithError(err).Warn("label detection failed")
			md.RekognitionError = err.Error()
		} else {
			md.RekognitionLabels = found
		}
	}
	st.Metadata = md
	st.MetadataStatus = SUCCESS
	return st, nil
}

// colorMode names the decoded image's color mode, using the conventional
// short names ("RGB", "RGBA", "L", "P", "CMYK"). A truecolor image with a
// fully opaque alpha channel reports "RGB".
func colorMode(img image.Image) string {
	switch t := img.(type) {
	case *image.Gray, *image.Gray16:
		return "L"
	case *image.Paletted:
		return "P"
	case *image.CMYK:
		return "CMYK"
	case *image.YCbCr:
		return "RGB"
	case *image.NRGBA:
		if t.Opaque() {
			return "RGB"
		}
		return "RGBA"
	case *image.RGBA:
		if t.Opaque() {
			return "RGB"
		}
		return "RGBA"
	case *image.NRGBA64:
		if t.Opaque() {
			return "RGB"
		}
		return "RGBA"
	default:
		return "RGB"
	}
}
