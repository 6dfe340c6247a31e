// Package imaging prepares profile photos on the client: it crops the
// selected rectangle and re-encodes it as JPEG before upload.
package imaging

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"io"

	// Registered decoders for the accepted source formats.
	_ "image/gif"
	_ "image/png"

	"wellmatch/internal/domain"
)

// Quality is the JPEG quality of cropped images.
const Quality = 95

// Rect is a crop rectangle in source pixels.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Crop decodes src, cuts out rect and writes the result to dst as JPEG. A
// nil rect keeps the whole image. The rectangle must lie inside the image.
func Crop(dst io.Writer, src io.Reader, rect *Rect) error {
	img, _, err := image.Decode(src)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if rect != nil {
		r := rect.bounds().Add(b.Min)
		if rect.W <= 0 || rect.H <= 0 || !r.In(b) {
			return &domain.ValidationError{Field: "crop", Code: domain.CodeImageCrop}
		}
		b = r
	}

	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	if err := jpeg.Encode(dst, out, &jpeg.Options{Quality: Quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}
