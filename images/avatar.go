package images

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"

	_ "image/gif"

	"github.com/gabriel-vasile/mimetype"
	xdraw "golang.org/x/image/draw"
)

// Thumbnails are bounded to this box and palettized before encoding.
const (
	ThumbnailMaxSize = 400
	thumbnailColors  = 256
)

// ProcessedAvatar is the result of decoding an uploaded avatar image.
type ProcessedAvatar struct {
	ContentType     string
	Width           int
	Height          int
	ThumbnailBase64 string
}

// DetectMime sniffs the actual content type of the uploaded bytes,
// regardless of what the client declared.
func DetectMime(data []byte) string {
	return mimetype.Detect(data).String()
}

// MatchesDeclaredType reports whether the sniffed content type matches the
// type the client declared for the upload. The legacy "image/jpg" spelling
// is accepted for JPEG data.
func MatchesDeclaredType(data []byte, declared string) bool {
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}
	return mimetype.Detect(data).Is(declared)
}

// ProcessAvatar decodes an uploaded avatar and produces a bounded,
// palettized PNG thumbnail encoded as base64.
func ProcessAvatar(data []byte) (*ProcessedAvatar, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no image data provided")
	}

	contentType := DetectMime(data)
	slog.Debug("Processing avatar upload", "data_size", len(data), "content_type", contentType)

	img, err := DecodeAvatar(data)
	if err != nil {
		slog.Warn("Failed to decode avatar image", "error", err)
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	slog.Debug("Avatar image decoded", "width", bounds.Dx(), "height", bounds.Dy())

	base64Str, err := convertImageToPNGBase64(img, ThumbnailMaxSize, ThumbnailMaxSize, thumbnailColors, png.BestCompression)
	if err != nil {
		slog.Warn("Failed to convert avatar to PNG", "error", err)
		return nil, fmt.Errorf("failed to convert to PNG: %w", err)
	}

	slog.Debug("Avatar thumbnail encoded", "base64_length", len(base64Str))
	return &ProcessedAvatar{
		ContentType:     contentType,
		Width:           bounds.Dx(),
		Height:          bounds.Dy(),
		ThumbnailBase64: base64Str,
	}, nil
}

// DecodeAvatar attempts to decode an image from bytes, trying multiple formats
func DecodeAvatar(data []byte) (image.Image, error) {
	// Try JPEG first (most common)
	if img, err := jpeg.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	// Try generic image decode (PNG, GIF)
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	return nil, fmt.Errorf("unsupported or invalid image format")
}

// convertImageToPNGBase64 encodes an image to base64 PNG with optional resize and quantization
//
// maxW/maxH: if >0, the image is downscaled to fit within this box (keeping aspect ratio)
// colors:    if >0, convert to a paletted image (≤256 colors is typical for PNG)
// level:     png.DefaultCompression, png.BestCompression, png.BestSpeed, etc.
func convertImageToPNGBase64(img image.Image, maxW, maxH, colors int, level png.CompressionLevel) (string, error) {
	// 1) Resize if requested
	if maxW > 0 || maxH > 0 {
		img = resizeToFit(img, maxW, maxH)
	}

	// 2) Optional quantization (palettize)
	var out = img
	if colors > 0 {
		// Choose a palette: Plan9 (256 colors) or WebSafe (~216 colors)
		pal := palette.Plan9
		if colors <= 216 {
			pal = palette.WebSafe
		}
		dst := image.NewPaletted(img.Bounds(), pal)
		// Floyd–Steinberg dithering
		draw.FloydSteinberg.Draw(dst, dst.Bounds(), img, image.Point{})
		out = dst
	}

	// 3) Encode with chosen compression
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: level}
	if err := enc.Encode(&buf, out); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// resizeToFit scales img to fit within maxW×maxH (keeping aspect ratio)
func resizeToFit(src image.Image, maxW, maxH int) image.Image {
	bw := src.Bounds().Dx()
	bh := src.Bounds().Dy()

	if maxW <= 0 && maxH <= 0 {
		return src
	}
	if maxW <= 0 {
		scale := float64(maxH) / float64(bh)
		maxW = int(math.Round(float64(bw) * scale))
	}
	if maxH <= 0 {
		scale := float64(maxW) / float64(bw)
		maxH = int(math.Round(float64(bh) * scale))
	}

	scale := math.Min(float64(maxW)/float64(bw), float64(maxH)/float64(bh))
	if scale >= 1.0 {
		return src // already small enough
	}
	w := int(math.Max(1, math.Round(float64(bw)*scale)))
	h := int(math.Max(1, math.Round(float64(bh)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// CatmullRom = high quality, good for photos/faces
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}
