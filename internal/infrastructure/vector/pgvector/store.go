package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
	"github.com/mahfuzr/krishi-assistant/internal/infrastructure/resilience"
)

// Store keeps passages and their embeddings in Postgres with the pgvector
// extension. Search orders by cosine distance and reports cosine
// similarity (1 - distance) as the score.
type Store struct {
	db       *sql.DB
	embedDim int
	exec     *resilience.Executor
}

func NewStore(db *sql.DB, embedDim int, exec *resilience.Executor) *Store {
	if embedDim <= 0 {
		embedDim = 1024
	}
	return &Store{db: db, embedDim: embedDim, exec: exec}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082002)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS chunks (
	chunk_id TEXT PRIMARY KEY,
	doc_id TEXT NOT NULL,
	source TEXT NOT NULL,
	language TEXT NOT NULL,
	section_path TEXT,
	text TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
CREATE INDEX IF NOT EXISTS idx_chunks_language ON chunks(language);

CREATE TABLE IF NOT EXISTS embeddings (
	chunk_id TEXT PRIMARY KEY REFERENCES chunks(chunk_id) ON DELETE CASCADE,
	embed vector(%d) NOT NULL
);
`, s.embedDim)
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (s *Store) IndexPassages(ctx context.Context, passages []domain.Passage, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("pgvector index: %d passages with %d vectors", len(passages), len(vectors))
	}
	if len(passages) == 0 {
		return nil
	}

	return s.exec.Run(ctx, "pgvector.index", classify, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin index tx: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()

		now := time.Now().UTC()
		for i, p := range passages {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO chunks (chunk_id, doc_id, source, language, section_path, text, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (chunk_id) DO UPDATE SET
	section_path = EXCLUDED.section_path,
	text = EXCLUDED.text
`, p.ChunkID, p.DocID, p.Source, p.Language, p.SectionPath, p.Text, now); err != nil {
				return fmt.Errorf("upsert chunk %s: %w", p.ChunkID, err)
			}

			if _, err := tx.ExecContext(ctx, `
INSERT INTO embeddings (chunk_id, embed)
VALUES ($1, $2::vector)
ON CONFLICT (chunk_id) DO UPDATE SET embed = EXCLUDED.embed
`, p.ChunkID, vectorLiteral(vectors[i])); err != nil {
				return fmt.Errorf("upsert embedding %s: %w", p.ChunkID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit index tx: %w", err)
		}
		return nil
	})
}

func (s *Store) Search(ctx context.Context, queryVector []float32, limit int, filter domain.SearchFilter) ([]domain.ScoredChunk, error) {
	if limit <= 0 {
		limit = 32
	}

	var where []string
	args := []any{vectorLiteral(queryVector)}
	if filter.Source != "" {
		args = append(args, filter.Source)
		where = append(where, fmt.Sprintf("c.source = $%d", len(args)))
	}
	if filter.Language != "" {
		args = append(args, filter.Language)
		where = append(where, fmt.Sprintf("c.language = $%d", len(args)))
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
SELECT c.chunk_id, c.doc_id, c.source, c.language, c.section_path, c.text,
       1 - (e.embed <=> $1::vector) AS cosine_sim
FROM embeddings e
JOIN chunks c ON c.chunk_id = e.chunk_id
%s
ORDER BY e.embed <=> $1::vector
LIMIT $%d
`, whereSQL, len(args))

	var out []domain.ScoredChunk
	err := s.exec.Run(ctx, "pgvector.search", classify, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("knn query: %w", err)
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var chunk domain.ScoredChunk
			var sectionPath sql.NullString
			if err := rows.Scan(&chunk.ChunkID, &chunk.DocID, &chunk.Source, &chunk.Language,
				&sectionPath, &chunk.Text, &chunk.Score); err != nil {
				return fmt.Errorf("scan hit: %w", err)
			}
			chunk.SectionPath = sectionPath.String
			out = append(out, chunk)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("pgvector search: %w", err)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// vectorLiteral renders a pgvector input literal: "[x1,x2,...]".
func vectorLiteral(vec []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func classify(err error) resilience.Verdict {
	return resilience.Verdict{Retry: false, CountsAsTrip: true}
}
