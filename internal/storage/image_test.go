package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"testing"

	"github.com/hugh/recipe-api/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateImage_AcceptsPNGAndJPEG(t *testing.T) {
	info, err := ValidateImage(bytes.NewReader(encodePNG(t, 12, 7)), 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", info.MIME)
	assert.Equal(t, ".png", info.Ext)
	assert.Equal(t, 12, info.Width)
	assert.Equal(t, 7, info.Height)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4)), nil))
	info, err = ValidateImage(bytes.NewReader(buf.Bytes()), 0)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", info.MIME)
}

func TestValidateImage_RewindsReader(t *testing.T) {
	data := encodePNG(t, 3, 3)
	r := bytes.NewReader(data)

	_, err := ValidateImage(r, 0)
	require.NoError(t, err)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, rest)
}

func TestValidateImage_Rejections(t *testing.T) {
	valid := encodePNG(t, 2, 2)
	truncated := append([]byte{}, valid[:20]...)

	tests := []struct {
		name string
		data []byte
		max  int64
	}{
		{"empty", nil, 0},
		{"text", []byte("notimage"), 0},
		{"truncated_png", truncated, 0},
		{"too_large", valid, int64(len(valid) - 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateImage(bytes.NewReader(tt.data), tt.max)
			ve, ok := apperr.AsValidation(err)
			require.True(t, ok, "got %v", err)
			assert.Contains(t, ve.Fields, "image")
		})
	}
}
