package knowledge

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Store persists knowledge documents.
type Store interface {
	// InsertBatch writes all documents atomically; on error nothing is kept.
	InsertBatch(ctx context.Context, docs []Document) error
	// List returns documents, optionally filtered by type. A zero limit
	// means no limit.
	List(ctx context.Context, docType DocType, limit int) ([]Document, error)
	// Get returns one document by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Document, error)
	// FindSkillCard returns the first skill card whose skill field contains
	// the given substring, case-insensitively, or ErrNotFound.
	FindSkillCard(ctx context.Context, skill string) (*Document, error)
	// Delete removes documents by ID and returns how many were removed.
	Delete(ctx context.Context, ids []string) (int64, error)
	// DuplicateGroups reports documents sharing identical content.
	DuplicateGroups(ctx context.Context) ([]DuplicateGroup, error)
	// CleanDuplicates deletes duplicates keeping the first document seen
	// per content group, and returns how many were removed.
	CleanDuplicates(ctx context.Context) (int64, error)
}

var foldCaser = cases.Fold()

// foldContains reports whether s contains substr under Unicode case folding.
func foldContains(s, substr string) bool {
	return strings.Contains(foldCaser.String(s), foldCaser.String(substr))
}

// MemoryStore is an in-memory Store for tests and development.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []Document // insertion order preserved
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) InsertBatch(_ context.Context, docs []Document) error {
	staged := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Content == "" {
			return fmt.Errorf("insert %s: %w", doc.DocType, ErrEmptyContent)
		}
		if !doc.DocType.Valid() {
			return fmt.Errorf("insert: unknown doc type %q", doc.DocType)
		}
		if doc.ID == "" {
			doc.ID = generateID()
		}
		staged = append(staged, doc)
	}

	s.mu.Lock()
	s.docs = append(s.docs, staged...)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context, docType DocType, limit int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for _, doc := range s.docs {
		if docType != "" && doc.DocType != docType {
			continue
		}
		out = append(out, doc)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.docs {
		if doc.ID == id {
			d := doc
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindSkillCard(_ context.Context, skill string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.docs {
		if doc.DocType == DocSkillCard && foldContains(doc.Skill, skill) {
			d := doc
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Delete(_ context.Context, ids []string) (int64, error) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []Document
	var deleted int64
	for _, doc := range s.docs {
		if drop[doc.ID] {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	s.docs = kept
	return deleted, nil
}

func (s *MemoryStore) DuplicateGroups(_ context.Context) ([]DuplicateGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byContent := make(map[string][]Document)
	var order []string
	for _, doc := range s.docs {
		if len(byContent[doc.Content]) == 0 {
			order = append(order, doc.Content)
		}
		byContent[doc.Content] = append(byContent[doc.Content], doc)
	}

	var groups []DuplicateGroup
	for _, content := range order {
		docs := byContent[content]
		if len(docs) < 2 {
			continue
		}
		group := DuplicateGroup{
			Preview: contentPreview(content),
			DocType: docs[0].DocType,
			Count:   len(docs),
		}
		for _, d := range docs {
			group.IDs = append(group.IDs, d.ID)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (s *MemoryStore) CleanDuplicates(ctx context.Context) (int64, error) {
	s.mu.RLock()
	seen := make(map[string]bool)
	var toDelete []string
	for _, doc := range s.docs {
		if seen[doc.Content] {
			toDelete = append(toDelete, doc.ID)
			continue
		}
		seen[doc.Content] = true
	}
	s.mu.RUnlock()

	if len(toDelete) == 0 {
		return 0, nil
	}
	return s.Delete(ctx, toDelete)
}

func contentPreview(content string) string {
	runes := []rune(content)
	if len(runes) <= 50 {
		return content
	}
	return string(runes[:50]) + "..."
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
