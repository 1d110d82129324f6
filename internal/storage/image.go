package storage

import (
	"fmt"
	"image"
	"io"

	// Decoders for the accepted upload formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hugh/recipe-api/internal/apperr"
)

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

// ImageInfo describes an upload that passed ValidateImage.
type ImageInfo struct {
	MIME   string
	Ext    string // with leading dot, from the detected type
	Size   int64
	Width  int
	Height int
}

// ValidateImage checks that r holds a decodable image no larger than
// maxBytes (0 means unlimited). r is rewound before returning so the
// caller can store it. Rejections are *apperr.ValidationError on "image".
func ValidateImage(r io.ReadSeeker, maxBytes int64) (*ImageInfo, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("measuring upload: %w", err)
	}
	if size == 0 {
		return nil, apperr.Invalid("image", "The submitted file is empty")
	}
	if maxBytes > 0 && size > maxBytes {
		return nil, apperr.Invalid("image", fmt.Sprintf("Image must be at most %d bytes", maxBytes))
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding upload: %w", err)
	}
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting upload type: %w", err)
	}
	if !allowedImageTypes[mtype.String()] {
		return nil, apperr.Invalid("image", fmt.Sprintf("Upload a valid image. Unsupported type %s", mtype.String()))
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding upload: %w", err)
	}
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return nil, apperr.Invalid("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image")
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding upload: %w", err)
	}

	return &ImageInfo{
		MIME:   mtype.String(),
		Ext:    mtype.Extension(),
		Size:   size,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
