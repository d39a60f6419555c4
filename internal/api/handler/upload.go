package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
)

// DefaultMaxUploadBytes limita cada arquivo enviado (10MB)
const DefaultMaxUploadBytes = 10 * 1024 * 1024

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
}

// upload is one file read from a multipart form
type upload struct {
	Name        string
	ContentType string
	Data        []byte
}

func (u *upload) isVideo() bool {
	return u != nil && strings.HasPrefix(u.ContentType, "video/")
}

// readUpload returns the named form file, or nil when the field is absent.
// Videos are accepted only when allowVideo is set.
func readUpload(c *fiber.Ctx, field string, maxBytes int64, allowVideo bool) (*upload, error) {
	file, err := c.FormFile(field)
	if err != nil {
		// missing field or not a multipart body
		return nil, nil
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if file.Size > maxBytes {
		return nil, domain.ErrPayloadTooLarge
	}
	if file.Size == 0 {
		return nil, domain.ErrInvalidDocument.WithError(errors.New(field + " is empty"))
	}

	contentType := strings.ToLower(strings.TrimSpace(strings.Split(file.Header.Get("Content-Type"), ";")[0]))
	if !validImageTypes[contentType] && !(allowVideo && strings.HasPrefix(contentType, "video/")) {
		return nil, domain.ErrUnsupportedMedia.WithError(errors.New(field + ": " + contentType))
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidDocument.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidDocument.WithError(err)
	}

	return &upload{Name: file.Filename, ContentType: contentType, Data: data}, nil
}
