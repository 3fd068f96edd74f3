package imaging_test

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/shashiranjanraj/bazaar/pkg/imaging"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestThumbnail_ScalesDown(t *testing.T) {
	out, err := imaging.Thumbnail(encodePNG(t, 800, 600), "thumb.png", 200, 200)
	if err != nil {
		t.Fatal(err)
	}
	w, h := decodeSize(t, out)
	if w != 200 || h != 150 {
		t.Errorf("expected 200x150, got %dx%d", w, h)
	}
}

func TestThumbnail_PreservesAspectPortrait(t *testing.T) {
	out, err := imaging.Thumbnail(encodePNG(t, 300, 600), "thumb.png", 200, 200)
	if err != nil {
		t.Fatal(err)
	}
	w, h := decodeSize(t, out)
	if w != 100 || h != 200 {
		t.Errorf("expected 100x200, got %dx%d", w, h)
	}
}

func TestThumbnail_NeverUpscales(t *testing.T) {
	out, err := imaging.Thumbnail(encodePNG(t, 50, 40), "thumb.png", 200, 200)
	if err != nil {
		t.Fatal(err)
	}
	w, h := decodeSize(t, out)
	if w != 50 || h != 40 {
		t.Errorf("expected original 50x40, got %dx%d", w, h)
	}
}

func TestThumbnail_RejectsGarbage(t *testing.T) {
	if _, err := imaging.Thumbnail([]byte("definitely not an image"), "thumb.png", 200, 200); err == nil {
		t.Error("expected decode error")
	}
}
