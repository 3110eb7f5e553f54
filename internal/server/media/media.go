// Package media validates uploaded recipe images and keeps them in an object
// store: a local directory or an S3-compatible bucket.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Store keeps image objects by key.
type Store interface {
	Save(ctx context.Context, key, contentType string, data []byte) error
	// Delete removes the object; a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns a URL the client can fetch the object from.
	URL(ctx context.Context, key string) (string, error)
}

// ImageField is the multipart field and validation key of an upload.
const ImageField = "image"

var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// Image is a validated upload.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// DecodeImage checks that data is a JPEG, PNG or GIF no larger than
// maxBytes. Problems are reported as a *common.ValidationError on the image
// field.
func DecodeImage(data []byte, maxBytes int64) (*Image, error) {
	if len(data) == 0 {
		return nil, common.NewValidationError(ImageField, "no file was submitted")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, common.NewValidationError(ImageField,
			fmt.Sprintf("file is larger than %d bytes", maxBytes))
	}

	mt := mimetype.Detect(data)
	ext, ok := allowedTypes[mt.String()]
	if !ok {
		return nil, common.NewValidationError(ImageField,
			"upload a valid image; the file is not an image or is corrupted")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return nil, common.NewValidationError(ImageField,
			"upload a valid image; the file is not an image or is corrupted")
	}

	return &Image{
		Data:        data,
		ContentType: mt.String(),
		Ext:         ext,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// now is swapped in tests.
var now = time.Now

// NewKey returns a fresh key of the form recipes/<yyyy>/<mm>/<dd>/<uuid>.<ext>.
func NewKey(ext string) string {
	d := now().UTC()
	return fmt.Sprintf("recipes/%04d/%02d/%02d/%s.%s", d.Year(), int(d.Month()), d.Day(), uuid.New(), ext)
}
