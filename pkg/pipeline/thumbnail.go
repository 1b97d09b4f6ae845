package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"path"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	b "imagepipeline-api/pkg/bucket"
)

// webSafeFormats are the encodings thumbnails may be stored in. A source
// in any other format is re-encoded as JPEG; an un-normalized format must
// never reach the object store.
var webSafeFormats = map[string]imaging.Format{
	"jpeg": imaging.JPEG,
	"png":  imaging.PNG,
}

// fallbackFormat is the encoding used when the source format is not web-safe.
const fallbackFormat = "jpeg"

// maxDeriveWorkers bounds concurrent per-box derivation within one invocation.
const maxDeriveWorkers = 4

// DeriveThumbnails produces one thumbnail per configured target box. The
// source image is fetched and decoded once; each box is then resized,
// encoded, and uploaded independently (and concurrently). A thumbnail fits
// entirely within its box, preserving the source aspect ratio, and is
// never upscaled. Boxes that fail do not drop silently: successful boxes
// stay recorded on the state, failures are aggregated, and the stage
// reports SUCCESS only if every box succeeded.
func (s Service) DeriveThumbnails(ctx context.Context, st State) (State, error) {
	if !st.HasSource() {
		return st, fmt.Errorf("%w: derive thumbnails requires a source location", ErrMissingIdentity)
	}
	sizes := s.Config.Sizes()
	if len(sizes) == 0 {
		return st, fmt.Errorf("derive thumbnails for %s: no valid thumbnail sizes configured", st)
	}

	// One source fetch and decode per invocation, shared by all boxes.
	blob, err := s.fetchSource(ctx, st)
	if err != nil {
		return st, err
	}
	img, format, err := image.Decode(bytes.NewReader(blob))
	if err != nil {
		return st, fmt.Errorf("%w: %s: %v", ErrImageDecodeFailed, st, err)
	}
	outFormat := format
	if _, ok := webSafeFormats[outFormat]; !ok {
		logrus.WithFields(logrus.Fields{
			"key":    st.S3Key,
			"format": format,
		}).Warn("source format is not web-safe, converting thumbnails to jpeg")
		outFormat = fallbackFormat
	}
	baseName := strings.TrimSuffix(path.Base(st.S3Key), path.Ext(st.S3Key))

	if st.Thumbnails == nil {
		st.Thumbnails = make(map[string]string, len(sizes))
	}
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)
	sem := make(chan struct{}, maxDeriveWorkers)
	for _, size := range sizes {
		wg.Add(1)
		go func(size Size) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			location, err := s.deriveThumbnail(ctx, img, size, outFormat, baseName)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			st.Thumbnails[size.Label()] = location
		}(size)
	}
	wg.Wait()
	if len(errs) > 0 {
		st.ThumbnailStatus = FAILED
		return st, fmt.Errorf("derive thumbnails for %s: %w", st, errors.Join(errs...))
	}
	st.ThumbnailStatus = SUCCESS
	return st, nil
}

// deriveThumbnail resizes, encodes, and uploads the thumbnail for a single
// target box, returning the uploaded object's location.
func (s Service) deriveThumbnail(ctx context.Context, img image.Image, size Size, outFormat, baseName string) (string, error) {
	thumb := imaging.Fit(img, size.Width, size.Height, imaging.Lanczos)
	if outFormat == fallbackFormat && !thumb.Opaque() {
		// JPEG has no alpha channel. The alpha channel is dropped outright
		// rather than matted against a background color; partially
		// transparent pixels keep their stored color values.
		thumb = flattenAlpha(thumb)
	}
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, thumb, webSafeFormats[outFormat]); err != nil {
		return "", fmt.Errorf("%w: box %s: %v", ErrThumbnailEncodingFailed, size, err)
	}
	fileName := fmt.Sprintf("thumbnails/%s_%s.%s", baseName, size.Label(), outFormat)
	info := b.FileInfo{
		FileName:      fileName,
		ContentType:   "image/" + outFormat,
		ContentLength: int64(buf.Len()),
	}
	if _, err := s.Thumbnails.UploadFile(ctx, info, buf); err != nil {
		return "", fmt.Errorf("%w: box %s: %v", ErrObjectStoreWriteFailed, size, err)
	}
	return s.Thumbnails.ObjectURI(fileName), nil
}

// flattenAlpha returns a fully opaque copy of the image.
func flattenAlpha(img *image.NRGBA) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}
