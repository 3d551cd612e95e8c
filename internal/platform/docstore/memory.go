package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is a thread-safe in-memory Store for tests and development.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]map[string]interface{}
}

// NewMemory returns a ready-to-use in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string]interface{})}
}

func (s *Memory) Get(_ context.Context, path string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[normalize(path)]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDoc(doc), nil
}

func (s *Memory) Set(_ context.Context, path string, data map[string]interface{}, merge bool) error {
	if _, _, err := SplitPath(path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(normalize(path), data, merge)
	return nil
}

func (s *Memory) Update(_ context.Context, path string, partial map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[normalize(path)]
	if !ok {
		return ErrNotFound
	}
	applyPartial(doc, partial)
	return nil
}

func (s *Memory) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, normalize(path))
	return nil
}

func (s *Memory) Stream(_ context.Context, collection string) ([]Document, error) {
	prefix := normalize(collection) + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for path, doc := range s.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		id := strings.TrimPrefix(path, prefix)
		if strings.Contains(id, "/") {
			// Entry belongs to a nested subcollection, not this one.
			continue
		}
		out = append(out, Document{ID: id, Data: copyDoc(doc)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Memory) Batch() Batch {
	return &memoryBatch{store: s}
}

// set assumes the caller holds the write lock.
func (s *Memory) set(path string, data map[string]interface{}, merge bool) {
	if merge {
		if existing, ok := s.docs[path]; ok {
			merged := copyDoc(existing)
			applyPartial(merged, data)
			s.docs[path] = merged
			return
		}
	}
	s.docs[path] = copyDoc(data)
}

type queuedWrite struct {
	path   string
	data   map[string]interface{}
	merge  bool
	delete bool
}

type memoryBatch struct {
	store  *Memory
	writes []queuedWrite
}

func (b *memoryBatch) Set(path string, data map[string]interface{}, merge bool) error {
	if _, _, err := SplitPath(path); err != nil {
		return err
	}
	if len(b.writes) >= MaxBatchWrites {
		return ErrBatchLimit
	}
	b.writes = append(b.writes, queuedWrite{path: normalize(path), data: copyDoc(data), merge: merge})
	return nil
}

func (b *memoryBatch) Delete(path string) error {
	if len(b.writes) >= MaxBatchWrites {
		return ErrBatchLimit
	}
	b.writes = append(b.writes, queuedWrite{path: normalize(path), delete: true})
	return nil
}

func (b *memoryBatch) Len() int { return len(b.writes) }

func (b *memoryBatch) Commit(_ context.Context) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	for _, w := range b.writes {
		if w.delete {
			delete(b.store.docs, w.path)
			continue
		}
		b.store.set(w.path, w.data, w.merge)
	}
	b.writes = nil
	return nil
}

func normalize(path string) string {
	return strings.Trim(path, "/")
}

// applyPartial merges partial into doc in place; nil values delete fields.
func applyPartial(doc, partial map[string]interface{}) {
	for k, v := range partial {
		if v == nil {
			delete(doc, k)
			continue
		}
		doc[k] = v
	}
}

func copyDoc(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return copyDoc(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
