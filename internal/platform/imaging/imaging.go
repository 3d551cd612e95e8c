// Package imaging stores patient X-ray photos with a hosted media service.
// Uploads return a public HTTPS URL that is saved on the patient record and
// later embedded into PDF reports.
package imaging

import (
	"context"
	"errors"
	"io"
)

var (
	ErrImageNotFound   = errors.New("image not found")
	ErrFileTooLarge    = errors.New("image exceeds maximum allowed size")
	ErrInvalidFormat   = errors.New("image format is not allowed")
	ErrMissingFileName = errors.New("file name is required")
)

// MaxImageSize is the maximum allowed upload size in bytes (10 MB).
const MaxImageSize = 10 * 1024 * 1024

// AllowedContentTypes lists the accepted X-ray image MIME types.
var AllowedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// Image describes one hosted X-ray photo.
type Image struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// UploadParams names an upload. Folder groups the asset on the host
// (clinic/{email}/{file_id} for X-rays) and Tags aid later lookup.
type UploadParams struct {
	FileName    string
	ContentType string
	Folder      string
	Tags        []string
}

// Host is the contract for image hosting backends.
type Host interface {
	Upload(ctx context.Context, p UploadParams, content io.Reader) (*Image, error)
	Destroy(ctx context.Context, publicID string) error
	Fetch(ctx context.Context, url string) ([]byte, error)
}
