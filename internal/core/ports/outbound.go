package ports

import (
	"context"
	"io"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
)

// GraphQuerier executes a read-only pattern query against the crop
// knowledge graph and returns flat record mappings.
type GraphQuerier interface {
	ReadRecords(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

// Embedder builds L2-normalized vectors. Queries and passages use
// different instruction prefixes, so the two sides are separate methods.
type Embedder interface {
	EmbedPassages(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// PassageStore indexes embedded passages and performs cosine
// nearest-neighbor search.
type PassageStore interface {
	IndexPassages(ctx context.Context, passages []domain.Passage, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, limit int, filter domain.SearchFilter) ([]domain.ScoredChunk, error)
}

// AnswerGenerator creates free-text prose grounded in retrieved passages.
type AnswerGenerator interface {
	GenerateFromPassages(ctx context.Context, question string, passages []domain.ScoredChunk) (string, error)
}

// DocumentRepository persists and reads source document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
}

// ObjectStorage stores uploaded source files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes document upload events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// Chunker splits extracted text into indexable spans.
type Chunker interface {
	Split(text string) []string
}
