package imaging

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CloudHost uploads images to a Cloudinary-compatible media API using signed
// multipart requests.
type CloudHost struct {
	cloudName string
	apiKey    string
	apiSecret string
	client    *http.Client
	now       func() time.Time
}

// NewCloudHost creates a host for the given media cloud account.
func NewCloudHost(cloudName, apiKey, apiSecret string) *CloudHost {
	return &CloudHost{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client:    &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
	}
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (h *CloudHost) Upload(ctx context.Context, p UploadParams, content io.Reader) (*Image, error) {
	if p.FileName == "" {
		return nil, ErrMissingFileName
	}
	if !AllowedContentTypes[p.ContentType] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, p.ContentType)
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > MaxImageSize {
		return nil, ErrFileTooLarge
	}

	timestamp := strconv.FormatInt(h.now().Unix(), 10)
	tags := strings.Join(p.Tags, ",")

	// Signed params must appear in alphabetical order: folder, tags, timestamp.
	var signed []string
	if p.Folder != "" {
		signed = append(signed, "folder="+p.Folder)
	}
	if tags != "" {
		signed = append(signed, "tags="+tags)
	}
	signed = append(signed, "timestamp="+timestamp)
	signature := h.sign(strings.Join(signed, "&"))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", p.FileName)
	if err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if p.Folder != "" {
		mw.WriteField("folder", p.Folder)
	}
	if tags != "" {
		mw.WriteField("tags", tags)
	}
	mw.WriteField("api_key", h.apiKey)
	mw.WriteField("timestamp", timestamp)
	mw.WriteField("signature", signature)
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}

	url := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", h.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, out.Error.Message)
	}

	return &Image{
		PublicID: out.PublicID,
		URL:      out.SecureURL,
		Format:   out.Format,
		Size:     out.Bytes,
		Width:    out.Width,
		Height:   out.Height,
	}, nil
}

func (h *CloudHost) Destroy(ctx context.Context, publicID string) error {
	timestamp := strconv.FormatInt(h.now().Unix(), 10)
	signature := h.sign("public_id=" + publicID + "&timestamp=" + timestamp)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("public_id", publicID)
	mw.WriteField("api_key", h.apiKey)
	mw.WriteField("timestamp", timestamp)
	mw.WriteField("signature", signature)
	if err := mw.Close(); err != nil {
		return fmt.Errorf("building destroy form: %w", err)
	}

	url := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/destroy", h.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("destroy request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("destroy request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("destroy failed with status %d", resp.StatusCode)
	}
	return nil
}

// Fetch downloads a hosted image so it can be embedded into a report.
func (h *CloudHost) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, MaxImageSize))
}

// sign produces the hex SHA-1 signature over the sorted parameter string plus
// the account secret, the scheme the media API expects.
func (h *CloudHost) sign(params string) string {
	sum := sha1.Sum([]byte(params + h.apiSecret))
	return hex.EncodeToString(sum[:])
}
