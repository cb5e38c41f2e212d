package ports

import (
	"context"
	"io"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
)

// QuestionAnswerer is the single entry point of the retrieval core.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question string, k int) (domain.Answer, error)
}

// DocumentIngestor is the inbound contract for source document upload.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType, source, language string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous passage indexing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentReader is the inbound read model for document state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}
