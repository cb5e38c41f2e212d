package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
	"github.com/mahfuzr/krishi-assistant/internal/infrastructure/resilience"
)

func testExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Policy{MaxAttempts: 1, BreakerEnabled: false})
}

func TestEmbedderAddsAsymmetricPrefixes(t *testing.T) {
	var captured [][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		var payload struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		captured = append(captured, payload.Input)
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2]]}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen", "embed", testExecutor()))

	if _, err := embedder.EmbedQuery(context.Background(), "ধানের রোগ"); err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if _, err := embedder.EmbedPassages(context.Background(), []string{"ধান একটি খরিফ ফসল"}); err != nil {
		t.Fatalf("EmbedPassages() error = %v", err)
	}

	if captured[0][0] != "query: ধানের রোগ" {
		t.Fatalf("query input = %q", captured[0][0])
	}
	if captured[1][0] != "passage: ধান একটি খরিফ ফসল" {
		t.Fatalf("passage input = %q", captured[1][0])
	}
}

func TestEmbedPassagesSkipsEmptyInput(t *testing.T) {
	embedder := NewEmbedder(New("http://unreachable.invalid", "gen", "embed", testExecutor()))
	vectors, err := embedder.EmbedPassages(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedPassages() error = %v", err)
	}
	if vectors != nil {
		t.Fatalf("expected nil result for empty input")
	}
}

func TestGeneratorBuildsNumberedPassageBlock(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		capturedPrompt, _ = payload["prompt"].(string)
		_, _ = w.Write([]byte(`{"response":" উত্তর "}`))
	}))
	defer server.Close()

	gen := NewGenerator(New(server.URL, "gen", "embed", testExecutor()))
	text, err := gen.GenerateFromPassages(context.Background(), "ধানের রোগ কী?", []domain.ScoredChunk{
		{Text: "ব্লাস্ট ধানের প্রধান রোগ", Source: "brri_guide", Score: 0.9},
		{Text: "ইউরিয়া কম দিন", Source: "dam_bulletin", Score: 0.7},
	})
	if err != nil {
		t.Fatalf("GenerateFromPassages() error = %v", err)
	}
	if text != "উত্তর" {
		t.Fatalf("response not trimmed: %q", text)
	}
	if !strings.Contains(capturedPrompt, "ধানের রোগ কী?") {
		t.Fatalf("prompt missing question: %s", capturedPrompt)
	}
	if !strings.Contains(capturedPrompt, "[1] ব্লাস্ট ধানের প্রধান রোগ\n(Source: brri_guide)") {
		t.Fatalf("prompt missing numbered passage: %s", capturedPrompt)
	}
	if !strings.Contains(capturedPrompt, "[2] ইউরিয়া কম দিন") {
		t.Fatalf("prompt missing second passage: %s", capturedPrompt)
	}
}

func TestEmbedIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusNotFound)
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen", "embed", testExecutor()))
	_, err := embedder.EmbedQuery(context.Background(), "hello")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestGenerateWrapsRetryableFailuresAsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	gen := NewGenerator(New(server.URL, "gen", "embed", testExecutor()))
	_, err := gen.GenerateFromPassages(context.Background(), "q", []domain.ScoredChunk{{Text: "t"}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary classification, got %v", err)
	}
}
