package domain

// Intent is a coarse topic category used to bias routing and query
// augmentation. Classification order is part of the contract: a question
// matching several keyword sets classifies as the first matching category
// in disease -> climate -> season -> fertilizer order.
type Intent string

const (
	IntentDisease    Intent = "disease"
	IntentClimate    Intent = "climate"
	IntentSeason     Intent = "season"
	IntentFertilizer Intent = "fertilizer"
	IntentNone       Intent = "none"
)

type SearchFilter struct {
	Source   string
	Language string
}

// ScoredChunk is one retrieved passage with its cosine similarity to the
// query embedding.
type ScoredChunk struct {
	ChunkID     string  `json:"chunk_id"`
	DocID       string  `json:"doc_id"`
	Source      string  `json:"source"`
	Language    string  `json:"language"`
	SectionPath string  `json:"section_path,omitempty"`
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
}

type AnswerMode string

const (
	ModeGraph  AnswerMode = "graph"
	ModeVector AnswerMode = "vector"
)

type Answer struct {
	Text    string     `json:"answer"`
	Mode    AnswerMode `json:"mode"`
	Sources []string   `json:"sources"`
}
