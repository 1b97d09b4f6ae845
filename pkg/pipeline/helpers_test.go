package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	b "imagepipeline-api/pkg/bucket"
)

var ctx = context.Background()

// newTestService returns a pipeline service with in-memory storage.
func newTestService(sizes string) Service {
	return NewMockService(Config{
		Environment:    "test",
		ThumbnailSizes: sizes,
		KeyPrefix:      "uploads/",
		MaxLabels:      10,
		MinConfidence:  75,
	})
}

// uploadSource places a source image blob in the mock uploads bucket.
func uploadSource(t *testing.T, s Service, key, contentType string, blob []byte) {
	t.Helper()
	mb, ok := s.Uploads.(b.MemBucket)
	if !ok {
		t.Fatal("uploads bucket is not a MemBucket")
	}
	_, err := mb.UploadFile(ctx, b.FileInfo{FileName: key, ContentType: contentType}, bytes.NewReader(blob))
	if err != nil {
		t.Fatal(err)
	}
}

// testJPEG returns an opaque JPEG of the given dimensions.
func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// testPNG returns a PNG of the given dimensions; when translucent is true,
// half the image carries a partially transparent alpha channel.
func testPNG(t *testing.T, width, height int, translucent bool) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			a := uint8(255)
			if translucent && x < width/2 {
				a = 64
			}
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: a})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// testGIF returns a paletted GIF of the given dimensions.
func testGIF(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, width, height), color.Palette{
		color.RGBA{R: 0, G: 0, B: 0, A: 255},
		color.RGBA{R: 255, G: 255, B: 255, A: 255},
	})
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetColorIndex(x, y, uint8((x+y)%2))
		}
	}
	buf := new(bytes.Buffer)
	if err := gif.Encode(buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
