package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// thumbnailQuality is the JPEG quality of encoded thumbnails.
const thumbnailQuality = 85

// ImageService turns cover images into display thumbnails.
//
// Covers come as JPEG, PNG or WebP; thumbnails are always JPEG so every
// client can show them.
//
// Example usage:
//
//	svc := NewImageService()
//
//	// Fit within 600x600 and re-encode as JPEG
//	thumb, err := svc.Thumbnail(ctx, coverData, 600)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Thumbnail scales an image to fit within maxSize x maxSize and encodes it
// as JPEG. Smaller images keep their size. A non-positive maxSize only
// re-encodes.
//
// The Catmull-Rom kernel is used for scaling.
//
// Example:
//
//	thumb, err := svc.Thumbnail(ctx, data, 600)
//	// A 1200x800 cover becomes 600x400
//	// A 300x300 cover stays 300x300
func (s *ImageService) Thumbnail(ctx context.Context, data []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := FitWithin(bounds.Dx(), bounds.Dy(), maxSize)

	var out image.Image = img
	if width != bounds.Dx() || height != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// FitWithin returns the largest size with the same aspect ratio that fits
// in a maxSize square. Sizes already inside the square are returned as is.
func FitWithin(width, height, maxSize int) (int, int) {
	if maxSize <= 0 || width <= 0 || height <= 0 {
		return width, height
	}
	if width <= maxSize && height <= maxSize {
		return width, height
	}

	if width >= height {
		return maxSize, max(1, height*maxSize/width)
	}
	return max(1, width*maxSize/height), maxSize
}
