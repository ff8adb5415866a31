package generation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/edu-forge/itemforge/internal/generation"
	"github.com/edu-forge/itemforge/internal/knowledge"
)

func seedStore(t *testing.T) *knowledge.MemoryStore {
	t.Helper()
	store := knowledge.NewMemoryStore()
	err := store.InsertBatch(context.Background(), []knowledge.Document{
		{DocType: knowledge.DocSkillCard, Skill: "Pensamiento Algebraico", Content: "Skill: Pensamiento Algebraico\n\nTopics: ecuaciones"},
		{DocType: knowledge.DocDistractorPattern, Content: "Distractor Pattern: Sign Error"},
		{DocType: knowledge.DocDistractorPattern, Content: "Distractor Pattern: Overgeneralization"},
		{DocType: knowledge.DocDistractorPattern, Content: "Distractor Pattern: Partial Computation"},
		{DocType: knowledge.DocDistractorPattern, Content: "Distractor Pattern: Unit Confusion"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestLexicalRetriever_MatchesSkillSubstring(t *testing.T) {
	r := generation.NewLexicalRetriever(seedStore(t))

	g, err := r.Retrieve(context.Background(), "ICFES", "algebraico", "")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !strings.Contains(g.SkillCard, "Pensamiento Algebraico") {
		t.Errorf("SkillCard = %q, want the matching card content", g.SkillCard)
	}
}

func TestLexicalRetriever_MissYieldsPlaceholder(t *testing.T) {
	r := generation.NewLexicalRetriever(seedStore(t))

	g, err := r.Retrieve(context.Background(), "ICFES", "Nonexistent", "")
	if err != nil {
		t.Fatalf("Retrieve() error = %v, miss must not be an error", err)
	}
	if !strings.Contains(g.SkillCard, "Nonexistent") {
		t.Errorf("placeholder = %q, should contain the requested skill name", g.SkillCard)
	}
}

func TestLexicalRetriever_AtMostThreePatterns(t *testing.T) {
	r := generation.NewLexicalRetriever(seedStore(t))

	g, err := r.Retrieve(context.Background(), "ICFES", "algebraico", "")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	count := strings.Count(g.Distractors, "Distractor Pattern:")
	if count != 3 {
		t.Errorf("distractor patterns in context = %d, want 3", count)
	}
}

type brokenStore struct {
	knowledge.Store
}

func (b *brokenStore) FindSkillCard(context.Context, string) (*knowledge.Document, error) {
	return nil, errors.New("store unreachable")
}

func TestLexicalRetriever_StoreErrorPropagates(t *testing.T) {
	r := generation.NewLexicalRetriever(&brokenStore{Store: knowledge.NewMemoryStore()})

	if _, err := r.Retrieve(context.Background(), "ICFES", "Algebra", ""); err == nil {
		t.Fatal("Retrieve() should propagate store errors")
	}
}
