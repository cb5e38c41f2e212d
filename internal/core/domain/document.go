package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Document is one uploaded source (dataset export, extension leaflet) that
// the worker turns into embedded passages.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Source      string         `json:"source"`
	Language    string         `json:"language"`
	Title       string         `json:"title,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Passage is a chunk of document text ready for indexing.
type Passage struct {
	ChunkID     string `json:"chunk_id"`
	DocID       string `json:"doc_id"`
	Source      string `json:"source"`
	Language    string `json:"language"`
	SectionPath string `json:"section_path,omitempty"`
	Text        string `json:"text"`
}
