package images

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func makePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func makeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}))
	return buf.Bytes()
}

func makeGIF(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, width, height), color.Palette{
		color.RGBA{A: 255},
		color.RGBA{R: 255, A: 255},
	})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestDetectMime(t *testing.T) {
	require.Equal(t, "image/png", DetectMime(makePNG(t, 4, 4)))
	require.Equal(t, "image/jpeg", DetectMime(makeJPEG(t, 4, 4)))
	require.Equal(t, "image/gif", DetectMime(makeGIF(t, 4, 4)))
	require.NotContains(t, DetectMime([]byte("just some text")), "image/")
}

func TestMatchesDeclaredType(t *testing.T) {
	pngData := makePNG(t, 4, 4)
	jpegData := makeJPEG(t, 4, 4)

	require.True(t, MatchesDeclaredType(pngData, "image/png"))
	require.True(t, MatchesDeclaredType(jpegData, "image/jpeg"))
	require.True(t, MatchesDeclaredType(jpegData, "image/jpg"), "legacy jpg spelling should match jpeg data")
	require.False(t, MatchesDeclaredType(pngData, "image/jpeg"))
	require.False(t, MatchesDeclaredType(jpegData, "image/png"))
}

func TestDecodeAvatar(t *testing.T) {
	t.Run("png", func(t *testing.T) {
		img, err := DecodeAvatar(makePNG(t, 12, 8))
		require.NoError(t, err)
		require.Equal(t, 12, img.Bounds().Dx())
		require.Equal(t, 8, img.Bounds().Dy())
	})

	t.Run("jpeg", func(t *testing.T) {
		img, err := DecodeAvatar(makeJPEG(t, 6, 6))
		require.NoError(t, err)
		require.Equal(t, 6, img.Bounds().Dx())
	})

	t.Run("gif", func(t *testing.T) {
		img, err := DecodeAvatar(makeGIF(t, 5, 5))
		require.NoError(t, err)
		require.Equal(t, 5, img.Bounds().Dx())
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := DecodeAvatar([]byte("definitely not an image"))
		require.Error(t, err)
	})
}

func TestProcessAvatar(t *testing.T) {
	result, err := ProcessAvatar(makePNG(t, 1000, 600))
	require.NoError(t, err)
	require.Equal(t, "image/png", result.ContentType)
	require.Equal(t, 1000, result.Width)
	require.Equal(t, 600, result.Height)

	decoded, err := base64.StdEncoding.DecodeString(result.ThumbnailBase64)
	require.NoError(t, err)

	thumb, err := png.Decode(bytes.NewReader(decoded))
	require.NoError(t, err)
	require.LessOrEqual(t, thumb.Bounds().Dx(), ThumbnailMaxSize)
	require.LessOrEqual(t, thumb.Bounds().Dy(), ThumbnailMaxSize)
}

func TestProcessAvatarKeepsSmallImages(t *testing.T) {
	result, err := ProcessAvatar(makePNG(t, 50, 40))
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(result.ThumbnailBase64)
	require.NoError(t, err)

	thumb, err := png.Decode(bytes.NewReader(decoded))
	require.NoError(t, err)
	require.Equal(t, 50, thumb.Bounds().Dx())
	require.Equal(t, 40, thumb.Bounds().Dy())
}

func TestProcessAvatarRejectsEmptyAndGarbage(t *testing.T) {
	_, err := ProcessAvatar(nil)
	require.Error(t, err)

	_, err = ProcessAvatar([]byte("not an image"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to decode image")
}
