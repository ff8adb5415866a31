package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/edu-forge/itemforge/internal/knowledge"
)

// maxDistractorPatterns bounds the distractor sample used to ground a prompt.
const maxDistractorPatterns = 3

// Grounding is the retrieved context an item is generated against.
type Grounding struct {
	SkillCard   string `json:"skill_card"`
	Distractors string `json:"distractors"`
}

// Retriever selects knowledge documents to ground generation. The exam and
// topic parameters are part of the contract for future filtering; the
// lexical implementation ignores them.
type Retriever interface {
	Retrieve(ctx context.Context, exam, skill, topic string) (Grounding, error)
}

// LexicalRetriever matches skill cards by case-insensitive substring. It is
// the default until a vector-similarity retriever exists.
type LexicalRetriever struct {
	store knowledge.Store
}

// NewLexicalRetriever creates a retriever over the given store.
func NewLexicalRetriever(store knowledge.Store) *LexicalRetriever {
	return &LexicalRetriever{store: store}
}

func (r *LexicalRetriever) Retrieve(ctx context.Context, _, skill, _ string) (Grounding, error) {
	var g Grounding

	card, err := r.store.FindSkillCard(ctx, skill)
	switch {
	case err == nil:
		g.SkillCard = card.Content
	case errors.Is(err, knowledge.ErrNotFound):
		// A miss is not an error: generation proceeds degraded.
		g.SkillCard = fmt.Sprintf("Skill %s not found.", skill)
	default:
		return Grounding{}, fmt.Errorf("retrieve skill card: %w", err)
	}

	patterns, err := r.store.List(ctx, knowledge.DocDistractorPattern, maxDistractorPatterns)
	if err != nil {
		return Grounding{}, fmt.Errorf("retrieve distractor patterns: %w", err)
	}
	contents := make([]string, 0, len(patterns))
	for _, p := range patterns {
		contents = append(contents, p.Content)
	}
	g.Distractors = strings.Join(contents, "\n")

	return g, nil
}
