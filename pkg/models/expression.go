package models

// Expression is a single dialogue expression mined from a show transcript.
// IDs are assigned by whoever built the corpus; the core never invents them.
type Expression struct {
	ID          string            `json:"id"`
	Text        string            `json:"text"`
	Translation string            `json:"translation"`
	Metadata    map[string]string `json:"metadata,omitempty"` // episode, category, difficulty...
}
