// Package imaging resizes product images into bounded thumbnails.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// Thumbnail scales src down so it fits within maxW×maxH, preserving aspect
// ratio and never upscaling, and re-encodes it. The output format follows
// the destination file extension (jpg, png or gif; anything else falls back
// to the source format).
func Thumbnail(src []byte, dstPath string, maxW, maxH int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	tw, th := fit(w, h, maxW, maxH)
	if tw != w || th != h {
		dst := image.NewRGBA(image.Rect(0, 0, tw, th))
		draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	switch outputFormat(dstPath, format) {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: encode: %w", err)
	}

	return buf.Bytes(), nil
}

// fit returns the largest dimensions within maxW×maxH that preserve the
// w:h aspect ratio, never exceeding the original size.
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	tw := int(math.Round(float64(w) * scale))
	th := int(math.Round(float64(h) * scale))
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	return tw, th
}

func outputFormat(path, fallback string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	case ".jpg", ".jpeg":
		return "jpeg"
	default:
		return fallback
	}
}
