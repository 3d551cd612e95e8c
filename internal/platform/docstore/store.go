// Package docstore provides the path-addressed document gateway the clinic
// service persists through. Documents are schemaless JSON objects addressed
// by slash-separated paths such as doctors/{email}/patients/{file_id}; the
// final segment is the document id and everything before it names the
// collection. Two implementations exist: a Postgres JSONB store for
// production and an in-memory store for tests and development.
package docstore

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a document does not exist at the given path.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidPath is returned for paths without at least a collection and an id.
	ErrInvalidPath = errors.New("invalid document path")

	// ErrBatchLimit is returned when more writes are queued on a batch than
	// a single commit allows.
	ErrBatchLimit = errors.New("batch exceeds maximum queued writes")
)

// MaxBatchWrites is the maximum number of writes a single batch commit accepts.
const MaxBatchWrites = 500

// Document is one entry streamed out of a collection.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Store is the persistence gateway contract. All writes are full-document or
// field-level operations; there is no query language. Update applies a partial
// document to an existing one; a nil value deletes that field, mirroring the
// delete-field sentinel of hosted document databases.
type Store interface {
	Get(ctx context.Context, path string) (map[string]interface{}, error)
	Set(ctx context.Context, path string, data map[string]interface{}, merge bool) error
	Update(ctx context.Context, path string, partial map[string]interface{}) error
	Delete(ctx context.Context, path string) error
	Stream(ctx context.Context, collection string) ([]Document, error)
	Batch() Batch
}

// Batch queues up to MaxBatchWrites writes that are committed atomically.
type Batch interface {
	Set(path string, data map[string]interface{}, merge bool) error
	Delete(path string) error
	Len() int
	Commit(ctx context.Context) error
}

// SplitPath separates a document path into its collection and document id.
func SplitPath(path string) (collection, id string, err error) {
	trimmed := strings.Trim(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx <= 0 || idx == len(trimmed)-1 {
		return "", "", ErrInvalidPath
	}
	return trimmed[:idx], trimmed[idx+1:], nil
}
