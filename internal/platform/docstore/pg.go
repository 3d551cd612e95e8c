package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG is the Postgres-backed Store. Every document is one row in the
// documents table, addressed by its full path with JSONB payload.
type PG struct {
	pool *pgxpool.Pool
}

// NewPG creates a Postgres-backed store over an existing pool.
func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

func (s *PG) Get(ctx context.Context, path string) (map[string]interface{}, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE path = $1`, normalize(path)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return doc, nil
}

func (s *PG) Set(ctx context.Context, path string, data map[string]interface{}, merge bool) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}

	query := `
		INSERT INTO documents (path, collection, doc_id, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	if merge {
		query = `
		INSERT INTO documents (path, collection, doc_id, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (path) DO UPDATE SET data = documents.data || EXCLUDED.data, updated_at = NOW()`
	}
	if _, err := s.pool.Exec(ctx, query, normalize(path), collection, id, raw); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

// Update applies a partial document to an existing row inside a transaction;
// nil values delete fields. The read-modify-write is acceptable under the
// single-writer session model: the last writer wins by design.
func (s *PG) Update(ctx context.Context, path string, partial map[string]interface{}) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx,
		`SELECT data FROM documents WHERE path = $1 FOR UPDATE`, normalize(path)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	applyPartial(doc, partial)

	updated, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE documents SET data = $2, updated_at = NOW() WHERE path = $1`,
		normalize(path), updated); err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	return tx.Commit(ctx)
}

func (s *PG) Delete(ctx context.Context, path string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE path = $1`, normalize(path)); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *PG) Stream(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc_id, data FROM documents WHERE collection = $1 ORDER BY doc_id`,
		normalize(collection))
	if err != nil {
		return nil, fmt.Errorf("stream %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("stream %s: %w", collection, err)
		}
		var doc map[string]interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("stream %s: %w", collection, err)
		}
		out = append(out, Document{ID: id, Data: doc})
	}
	return out, rows.Err()
}

func (s *PG) Batch() Batch {
	return &pgBatch{store: s}
}

type pgBatch struct {
	store  *PG
	writes []queuedWrite
}

func (b *pgBatch) Set(path string, data map[string]interface{}, merge bool) error {
	if _, _, err := SplitPath(path); err != nil {
		return err
	}
	if len(b.writes) >= MaxBatchWrites {
		return ErrBatchLimit
	}
	b.writes = append(b.writes, queuedWrite{path: normalize(path), data: data, merge: merge})
	return nil
}

func (b *pgBatch) Delete(path string) error {
	if len(b.writes) >= MaxBatchWrites {
		return ErrBatchLimit
	}
	b.writes = append(b.writes, queuedWrite{path: normalize(path), delete: true})
	return nil
}

func (b *pgBatch) Len() int { return len(b.writes) }

// Commit applies every queued write in one transaction so that compound
// operations, such as re-keying an inventory item, cannot leave orphans
// behind on partial failure.
func (b *pgBatch) Commit(ctx context.Context) error {
	tx, err := b.store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("batch commit: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, w := range b.writes {
		if w.delete {
			if _, err := tx.Exec(ctx, `DELETE FROM documents WHERE path = $1`, w.path); err != nil {
				return fmt.Errorf("batch delete %s: %w", w.path, err)
			}
			continue
		}
		collection, id, err := SplitPath(w.path)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(w.data)
		if err != nil {
			return fmt.Errorf("batch set %s: %w", w.path, err)
		}
		query := `
			INSERT INTO documents (path, collection, doc_id, data)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
		if w.merge {
			query = `
			INSERT INTO documents (path, collection, doc_id, data)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (path) DO UPDATE SET data = documents.data || EXCLUDED.data, updated_at = NOW()`
		}
		if _, err := tx.Exec(ctx, query, w.path, collection, id, raw); err != nil {
			return fmt.Errorf("batch set %s: %w", w.path, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("batch commit: %w", err)
	}
	b.writes = nil
	return nil
}
