package pgvector

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
	"github.com/mahfuzr/krishi-assistant/internal/infrastructure/resilience"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	exec := resilience.NewExecutor(resilience.Policy{MaxAttempts: 1, BreakerEnabled: false})
	return NewStore(db, 4, exec), mock, func() { _ = db.Close() }
}

func TestVectorLiteral(t *testing.T) {
	got := vectorLiteral([]float32{0.5, -1, 0})
	if got != "[0.5,-1,0]" {
		t.Fatalf("vectorLiteral = %q", got)
	}
	if got := vectorLiteral(nil); got != "[]" {
		t.Fatalf("empty vectorLiteral = %q", got)
	}
}

func TestSearchMapsRowsToScoredChunks(t *testing.T) {
	store, mock, done := newStoreWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{
		"chunk_id", "doc_id", "source", "language", "section_path", "text", "cosine_sim",
	}).
		AddRow("chunk_a", "doc1", "bari", "bn", "ধানের রোগ", "ব্লাস্ট রোগ দমন", 0.91).
		AddRow("chunk_b", "doc1", "bari", "bn", nil, "সার প্রয়োগ", 0.72)

	mock.ExpectQuery("SELECT c.chunk_id, c.doc_id, c.source").
		WithArgs("[1,0,0,0]", "bn", 8).
		WillReturnRows(rows)

	out, err := store.Search(context.Background(), []float32{1, 0, 0, 0}, 8, domain.SearchFilter{Language: "bn"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d hits, want 2", len(out))
	}
	if out[0].ChunkID != "chunk_a" || out[0].Score != 0.91 || out[0].SectionPath != "ধানের রোগ" {
		t.Fatalf("first hit = %+v", out[0])
	}
	if out[1].SectionPath != "" {
		t.Fatalf("NULL section_path must scan to empty string, got %q", out[1].SectionPath)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSearchAppliesSourceAndLanguageFilters(t *testing.T) {
	store, mock, done := newStoreWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT c.chunk_id").
		WithArgs("[0,0,0,1]", "dam", "bn", 16).
		WillReturnRows(sqlmock.NewRows([]string{
			"chunk_id", "doc_id", "source", "language", "section_path", "text", "cosine_sim",
		}))

	out, err := store.Search(context.Background(), []float32{0, 0, 0, 1}, 16,
		domain.SearchFilter{Source: "dam", Language: "bn"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no hits, got %d", len(out))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestIndexPassagesUpsertsInOneTransaction(t *testing.T) {
	store, mock, done := newStoreWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO chunks").
		WithArgs("chunk_a", "doc1", "upload", "bn", "title", "passage text", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO embeddings").
		WithArgs("chunk_a", "[0.25,0.75]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.IndexPassages(context.Background(),
		[]domain.Passage{{
			ChunkID:     "chunk_a",
			DocID:       "doc1",
			Source:      "upload",
			Language:    "bn",
			SectionPath: "title",
			Text:        "passage text",
		}},
		[][]float32{{0.25, 0.75}},
	)
	if err != nil {
		t.Fatalf("IndexPassages() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestIndexPassagesRejectsLengthMismatch(t *testing.T) {
	store, _, done := newStoreWithMock(t)
	defer done()

	err := store.IndexPassages(context.Background(),
		[]domain.Passage{{ChunkID: "chunk_a"}}, nil)
	if err == nil {
		t.Fatalf("expected mismatch error")
	}
}
