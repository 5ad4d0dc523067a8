package api

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/media"
	"github.com/gofiber/fiber/v2"
)

const (
	fieldImage   = "image"
	fieldVideo   = "video"
	fieldGallery = "galleryImages"
	fieldAvatar  = "avatar"

	maxGalleryFiles = 10
)

// files holds the multipart uploads of one request, by form field.
type files map[string][]media.Upload

func (f files) one(field string) *media.Upload {
	if ups := f[field]; len(ups) > 0 {
		return &ups[0]
	}
	return nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

// readFiles loads the named file fields. limits caps the number of files
// per field; a request that is not multipart has no files.
func (h *Handlers) readFiles(c *fiber.Ctx, limits map[string]int) (files, error) {
	out := files{}
	if !isMultipart(c) {
		return out, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "Invalid multipart form", err)
	}
	for field, max := range limits {
		headers := form.File[field]
		if len(headers) > max {
			return nil, apperr.Validation(fmt.Sprintf("Too many files for %s (max %d)", field, max))
		}
		for _, fh := range headers {
			up, err := h.readFile(fh)
			if err != nil {
				return nil, err
			}
			out[field] = append(out[field], up)
		}
	}
	return out, nil
}

func (h *Handlers) readFile(fh *multipart.FileHeader) (media.Upload, error) {
	if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
		return media.Upload{}, apperr.Validation(fmt.Sprintf("File %s is too large", fh.Filename))
	}
	f, err := fh.Open()
	if err != nil {
		return media.Upload{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return media.Upload{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	ct := fh.Header.Get(fiber.HeaderContentType)
	if ct == "" || ct == fiber.MIMEOctetStream {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename))); byExt != "" {
			ct = byExt
		}
	}
	return media.Upload{Filename: fh.Filename, ContentType: ct, Data: data}, nil
}

// parseDate accepts RFC 3339 timestamps and plain dates. Anything else is ignored.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
