package usecase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
	"github.com/mahfuzr/krishi-assistant/internal/core/ports"
)

// ProcessDocumentUseCase runs the worker-side pipeline for one uploaded
// document: extract text, split into passages, embed, index.
type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	passages  ports.PassageStore

	indexed func(documentID string, passageCount int)
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	passages ports.PassageStore,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		passages:  passages,
	}
}

// WithIndexObserver registers a callback invoked after a document's
// passages land in the store, with the indexed passage count.
func (uc *ProcessDocumentUseCase) WithIndexObserver(fn func(documentID string, passageCount int)) *ProcessDocumentUseCase {
	uc.indexed = fn
	return uc
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.pipeline(ctx, documentID); err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) pipeline(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}

	chunks := uc.chunker.Split(text)
	if len(chunks) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "split document", errors.New("splitting produced zero passages"))
	}

	vectors, err := uc.embedder.EmbedPassages(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed passages: %w", err)
	}
	if len(vectors) != len(chunks) {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"embed passages",
			fmt.Errorf("vectors/passages mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}

	passages := make([]domain.Passage, 0, len(chunks))
	for i, chunk := range chunks {
		passages = append(passages, domain.Passage{
			ChunkID:     chunkID(doc.ID, i),
			DocID:       doc.ID,
			Source:      doc.Source,
			Language:    doc.Language,
			SectionPath: doc.Title,
			Text:        chunk,
		})
	}

	if err := uc.passages.IndexPassages(ctx, passages, vectors); err != nil {
		return fmt.Errorf("index passages: %w", err)
	}
	if uc.indexed != nil {
		uc.indexed(doc.ID, len(passages))
	}
	return nil
}

// chunkID derives a stable passage id from the parent document and chunk
// ordinal, so re-processing overwrites rather than duplicates.
func chunkID(docID string, ordinal int) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%d", docID, ordinal)))
	return "chunk_" + hex.EncodeToString(sum[:])[:12]
}
