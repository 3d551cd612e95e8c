package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-memory Host for tests and development. URLs use the
// memory:// scheme and resolve only through this instance's Fetch.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	tags  map[string][]string
}

func NewMemory() *Memory {
	return &Memory{
		blobs: make(map[string][]byte),
		tags:  make(map[string][]string),
	}
}

func (m *Memory) Upload(_ context.Context, p UploadParams, content io.Reader) (*Image, error) {
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

	publicID := uuid.NewString()
	if p.Folder != "" {
		publicID = strings.TrimSuffix(p.Folder, "/") + "/" + publicID
	}

	// Decode just the header for dimensions; undecodable content keeps 0x0.
	var width, height int
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		width, height = cfg.Width, cfg.Height
	}

	m.mu.Lock()
	m.blobs[publicID] = data
	m.tags[publicID] = append([]string(nil), p.Tags...)
	m.mu.Unlock()

	format := strings.TrimPrefix(p.ContentType, "image/")
	return &Image{
		PublicID: publicID,
		URL:      "memory://" + publicID,
		Format:   format,
		Size:     int64(len(data)),
		Width:    width,
		Height:   height,
	}, nil
}

func (m *Memory) Destroy(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[publicID]; !ok {
		return ErrImageNotFound
	}
	delete(m.blobs, publicID)
	delete(m.tags, publicID)
	return nil
}

func (m *Memory) Fetch(_ context.Context, url string) ([]byte, error) {
	publicID := strings.TrimPrefix(url, "memory://")
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[publicID]
	if !ok {
		return nil, ErrImageNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Tags returns the tags recorded for a stored image.
func (m *Memory) Tags(publicID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.tags[publicID]...)
}
