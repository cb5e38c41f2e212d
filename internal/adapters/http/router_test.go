package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
	"github.com/mahfuzr/krishi-assistant/internal/observability/metrics"
)

type askerFake struct {
	answer domain.Answer
	err    error

	question string
	k        int
}

func (f *askerFake) Answer(_ context.Context, question string, k int) (domain.Answer, error) {
	f.question = question
	f.k = k
	if f.err != nil {
		return domain.Answer{}, f.err
	}
	return f.answer, nil
}

type ingestorFake struct {
	err error

	filename string
	mimeType string
	source   string
	language string
	content  []byte
}

func (f *ingestorFake) Upload(_ context.Context, filename, mimeType, source, language string, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.filename = filename
	f.mimeType = mimeType
	f.source = source
	f.language = language
	f.content = raw

	now := time.Now().UTC()
	return &domain.Document{
		ID:        "doc-1",
		Filename:  filename,
		Source:    source,
		Language:  language,
		Status:    domain.StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

type readerFake struct {
	doc *domain.Document
	err error
}

func (f *readerFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func newTestRouter(asker *askerFake, ingestor *ingestorFake, reader *readerFake) http.Handler {
	if asker == nil {
		asker = &askerFake{}
	}
	if ingestor == nil {
		ingestor = &ingestorFake{}
	}
	if reader == nil {
		reader = &readerFake{doc: &domain.Document{ID: "doc-1", Status: domain.StatusReady}}
	}
	return NewRouter(asker, ingestor, reader, metrics.NewHTTPServerMetrics("test"), nil, 0, 0).Handler()
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id header")
	}
}

func TestAskReturnsAnswer(t *testing.T) {
	asker := &askerFake{answer: domain.Answer{
		Text:    "- মৌসুম: খরিফ-১",
		Mode:    domain.ModeGraph,
		Sources: []string{"graph:Crop/Season/Location/Disease"},
	}}
	handler := newTestRouter(asker, nil, nil)

	res := postJSON(t, handler, "/v1/ask", map[string]any{"question": "ধান কোন মৌসুমে চাষ হয়?", "k": 3})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var answer domain.Answer
	if err := json.NewDecoder(res.Body).Decode(&answer); err != nil {
		t.Fatalf("decode answer: %v", err)
	}
	if answer.Mode != domain.ModeGraph {
		t.Fatalf("expected graph mode, got %q", answer.Mode)
	}
	if asker.question != "ধান কোন মৌসুমে চাষ হয়?" || asker.k != 3 {
		t.Fatalf("usecase got question=%q k=%d", asker.question, asker.k)
	}
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	res := postJSON(t, handler, "/v1/ask", map[string]any{"question": "   "})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestAskRejectsInvalidJSON(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", bytes.NewReader([]byte("{not json")))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestAskMapsDomainErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid_input", domain.WrapError(domain.ErrInvalidInput, "answer", errors.New("bad")), http.StatusBadRequest},
		{"temporary", domain.WrapError(domain.ErrTemporary, "answer", errors.New("down")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestRouter(&askerFake{err: tc.err}, nil, nil)
			res := postJSON(t, handler, "/v1/ask", map[string]any{"question": "ধান"})
			if res.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, res.Code)
			}
		})
	}
}

func TestAskRejectsGet(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/ask", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestUploadDocumentAcceptsFormFields(t *testing.T) {
	ingestor := &ingestorFake{}
	handler := newTestRouter(nil, ingestor, nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "bari_dhan.pdf")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4 content")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.WriteField("source", "bari_handbook"); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := writer.WriteField("language", "bn"); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	if ingestor.filename != "bari_dhan.pdf" {
		t.Fatalf("filename = %q", ingestor.filename)
	}
	if ingestor.source != "bari_handbook" || ingestor.language != "bn" {
		t.Fatalf("source = %q, language = %q", ingestor.source, ingestor.language)
	}
	if string(ingestor.content) != "%PDF-1.4 content" {
		t.Fatalf("content = %q", ingestor.content)
	}
}

func TestUploadDocumentRequiresFilePart(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", bytes.NewReader(nil))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetDocumentByID(t *testing.T) {
	reader := &readerFake{doc: &domain.Document{ID: "doc-7", Status: domain.StatusReady}}
	handler := newTestRouter(nil, nil, reader)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-7", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var doc map[string]any
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if doc["id"] != "doc-7" {
		t.Fatalf("id = %v", doc["id"])
	}
}

func TestGetDocumentMapsNotFoundTo404(t *testing.T) {
	reader := &readerFake{err: domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("no rows"))}
	handler := newTestRouter(nil, nil, reader)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestReadyzReportsFailingProbe(t *testing.T) {
	checks := []ReadinessCheck{
		{Name: "postgres", Probe: func(context.Context) error { return nil }},
		{Name: "neo4j", Probe: func(context.Context) error { return errors.New("connection refused") }},
	}
	handler := NewRouter(&askerFake{}, &ingestorFake{}, &readerFake{}, nil, checks, 0, 0).Handler()

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
	var statuses map[string]string
	if err := json.NewDecoder(res.Body).Decode(&statuses); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if statuses["postgres"] != "ok" {
		t.Fatalf("postgres = %q", statuses["postgres"])
	}
	if statuses["neo4j"] != "connection refused" {
		t.Fatalf("neo4j = %q", statuses["neo4j"])
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	handler := NewRouter(&askerFake{}, &ingestorFake{}, &readerFake{}, nil, nil, 1, 1).Handler()

	req1 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res1 := httptest.NewRecorder()
	handler.ServeHTTP(res1, req1)
	if res1.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", res1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, req2)
	if res2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", res2.Code)
	}
	if res2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header for 429 response")
	}
}

func TestRateLimitTracksClientsSeparately(t *testing.T) {
	handler := NewRouter(&askerFake{}, &ingestorFake{}, &readerFake{}, nil, nil, 1, 1).Handler()

	req1 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req1.RemoteAddr = "10.0.0.1:4000"
	res1 := httptest.NewRecorder()
	handler.ServeHTTP(res1, req1)
	if res1.Code != http.StatusOK {
		t.Fatalf("client A expected 200, got %d", res1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req2.RemoteAddr = "10.0.0.2:4000"
	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, req2)
	if res2.Code != http.StatusOK {
		t.Fatalf("client B expected 200, got %d", res2.Code)
	}
}
