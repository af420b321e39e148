package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "resources/a/original.png", "image/png", strings.NewReader("data")))

	rc, err := s.Get(ctx, "resources/a/original.png")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	require.NoError(t, s.Delete(ctx, "resources/a/original.png"))
	_, err = s.Get(ctx, "resources/a/original.png")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is fine.
	assert.NoError(t, s.Delete(ctx, "resources/a/original.png"))
}

func TestLocalStorageStaysInsideBase(t *testing.T) {
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(s.fullPath("../../etc/passwd"), base))
}

func TestThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 640, 320))
	for x := 0; x < 640; x++ {
		src.Set(x, 10, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := NewImageProcessor().Thumbnail(&buf, ThumbnailWidth, ThumbnailHeight)
	require.NoError(t, err)

	img, format, err := image.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, ThumbnailWidth, img.Bounds().Dx())
	assert.Equal(t, ThumbnailHeight, img.Bounds().Dy())
}

func TestThumbnailRejectsNonImage(t *testing.T) {
	_, err := NewImageProcessor().Thumbnail(strings.NewReader("not an image"), 10, 10)
	assert.Error(t, err)
}
