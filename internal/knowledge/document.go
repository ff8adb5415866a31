// Package knowledge persists the pedagogical knowledge base: skill cards,
// distractor patterns and similarity snippets.
package knowledge

import "errors"

// DocType classifies a knowledge document.
type DocType string

const (
	DocSkillCard         DocType = "skill_card"
	DocDistractorPattern DocType = "distractor_pattern"
	DocSimilarityItem    DocType = "similarity_item"
)

// Valid reports whether the doc type is one of the known families.
func (d DocType) Valid() bool {
	switch d {
	case DocSkillCard, DocDistractorPattern, DocSimilarityItem:
		return true
	}
	return false
}

var (
	// ErrNotFound is returned when no document matches a lookup.
	ErrNotFound = errors.New("document not found")
	// ErrEmptyContent is returned when inserting a document without content.
	ErrEmptyContent = errors.New("document content is empty")
)

// Document is one knowledge-base artifact. Documents are immutable once
// written; the only mutation is administrative deletion.
type Document struct {
	ID             string         `json:"id"`
	DocType        DocType        `json:"doc_type"`
	Exam           string         `json:"exam,omitempty"`
	Skill          string         `json:"skill,omitempty"`
	Topic          string         `json:"topic,omitempty"`
	DifficultyBand string         `json:"difficulty_band,omitempty"`
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	SourceFile     string         `json:"source_file,omitempty"`
	ContentHash    string         `json:"content_hash,omitempty"`
	Embedding      []float64      `json:"-"`
}

// Snippet returns the first n characters of the content, with an ellipsis
// when truncated. Used by list views to keep payloads small.
func (d Document) Snippet(n int) string {
	runes := []rune(d.Content)
	if len(runes) <= n {
		return d.Content
	}
	return string(runes[:n]) + "..."
}

// DuplicateGroup describes a set of documents sharing identical content.
type DuplicateGroup struct {
	Preview string   `json:"preview"`
	DocType DocType  `json:"doc_type"`
	Count   int      `json:"count"`
	IDs     []string `json:"ids"`
}
