package corpus

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/edu-forge/itemforge/internal/embedding"
	"github.com/edu-forge/itemforge/internal/knowledge"
)

const (
	// maxPatternExamples caps example rationales kept per distractor pattern.
	maxPatternExamples = 10
	// maxSampleItemIDs caps item-ID references kept in skill-card metadata.
	maxSampleItemIDs = 5
	// similaritySnippetLen is the stored prefix of the full item text.
	similaritySnippetLen = 500
	// similaritySource tags snippets built from the historical item bank.
	similaritySource = "historical_restricted"
)

// Summary reports what one aggregation run created.
type Summary struct {
	RowsProcessed   int `json:"rows_processed"`
	SkillCards      int `json:"skills_created"`
	Patterns        int `json:"patterns_created"`
	SimilarityItems int `json:"similarity_items_created"`
}

// Aggregator distills raw records into knowledge documents. All documents
// from one run are written in a single transaction; re-running the same
// corpus creates duplicates on purpose (cleanup is a separate admin path).
type Aggregator struct {
	store    knowledge.Store
	embedder embedding.Embedder
}

// NewAggregator creates an aggregator writing to the given store.
func NewAggregator(store knowledge.Store, embedder embedding.Embedder) *Aggregator {
	return &Aggregator{store: store, embedder: embedder}
}

// Run aggregates records into skill cards, distractor patterns and
// similarity snippets, then inserts everything atomically.
func (a *Aggregator) Run(ctx context.Context, records []RawRecord, sourceLabel string) (Summary, error) {
	var docs []knowledge.Document

	cards, err := a.buildSkillCards(ctx, records, sourceLabel)
	if err != nil {
		return Summary{}, err
	}
	docs = append(docs, cards...)

	patterns, err := a.buildDistractorPatterns(ctx, records, sourceLabel)
	if err != nil {
		return Summary{}, err
	}
	docs = append(docs, patterns...)

	snippets, err := a.buildSimilarityItems(ctx, records)
	if err != nil {
		return Summary{}, err
	}
	docs = append(docs, snippets...)

	if err := a.store.InsertBatch(ctx, docs); err != nil {
		return Summary{}, fmt.Errorf("aggregation insert: %w", err)
	}

	summary := Summary{
		RowsProcessed:   len(records),
		SkillCards:      len(cards),
		Patterns:        len(patterns),
		SimilarityItems: len(snippets),
	}
	slog.Info("aggregation completed",
		"rows", summary.RowsProcessed,
		"skill_cards", summary.SkillCards,
		"patterns", summary.Patterns,
		"similarity_items", summary.SimilarityItems,
		"source", sourceLabel,
	)
	return summary, nil
}

// buildSkillCards groups records by exact skill value. Records without a
// skill are excluded, not an error.
func (a *Aggregator) buildSkillCards(ctx context.Context, records []RawRecord, sourceLabel string) ([]knowledge.Document, error) {
	groups := make(map[string][]RawRecord)
	var order []string
	for _, rec := range records {
		if rec.Skill == "" {
			continue
		}
		if _, ok := groups[rec.Skill]; !ok {
			order = append(order, rec.Skill)
		}
		groups[rec.Skill] = append(groups[rec.Skill], rec)
	}

	var docs []knowledge.Document
	for _, skill := range order {
		group := groups[skill]

		var topics, difficulties, steps, misconceptions, itemIDs []string
		for _, rec := range group {
			topics = appendDistinct(topics, rec.Topic)
			difficulties = appendDistinct(difficulties, rec.Difficulty)
			steps = appendDistinct(steps, rec.RequiredSteps)
			misconceptions = appendDistinct(misconceptions, rec.CommonMisconception)
			if rec.ItemID != "" && len(itemIDs) < maxSampleItemIDs {
				itemIDs = append(itemIDs, rec.ItemID)
			}
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Skill: %s\n\n", skill)
		fmt.Fprintf(&b, "Topics: %s\n\n", strings.Join(topics, ", "))
		b.WriteString("Common Misconceptions:\n")
		for _, m := range misconceptions {
			fmt.Fprintf(&b, "- %s\n", m)
		}
		b.WriteString("\nRequired Steps:\n")
		for _, s := range steps {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		content := b.String()

		vec, err := a.embedder.Embed(ctx, content)
		if err != nil {
			return nil, fmt.Errorf("embed skill card %q: %w", skill, err)
		}

		docs = append(docs, knowledge.Document{
			DocType: knowledge.DocSkillCard,
			Skill:   skill,
			Content: content,
			Metadata: map[string]any{
				"topics":          topics,
				"difficulties":    difficulties,
				"sample_item_ids": itemIDs,
			},
			SourceFile: sourceLabel,
			Embedding:  vec,
		})
	}
	return docs, nil
}

// buildDistractorPatterns groups rationale strings by pattern name across
// the whole corpus. A slot contributes only when both the pattern and the
// rationale are present.
func (a *Aggregator) buildDistractorPatterns(ctx context.Context, records []RawRecord, sourceLabel string) ([]knowledge.Document, error) {
	rationales := make(map[string][]string)
	var order []string
	for _, rec := range records {
		for i := range optionSlots {
			pat := rec.DistractorPatterns[i]
			rat := rec.DistractorRationales[i]
			if pat == "" || rat == "" {
				continue
			}
			if _, ok := rationales[pat]; !ok {
				order = append(order, pat)
			}
			rationales[pat] = append(rationales[pat], rat)
		}
	}

	var docs []knowledge.Document
	for _, pat := range order {
		examples := distinct(rationales[pat])
		if len(examples) > maxPatternExamples {
			examples = examples[:maxPatternExamples]
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Distractor Pattern: %s\n\nExamples of Logic:\n", pat)
		for _, ex := range examples {
			fmt.Fprintf(&b, "- %s\n", ex)
		}
		content := b.String()

		vec, err := a.embedder.Embed(ctx, content)
		if err != nil {
			return nil, fmt.Errorf("embed distractor pattern %q: %w", pat, err)
		}

		docs = append(docs, knowledge.Document{
			DocType:    knowledge.DocDistractorPattern,
			Content:    content,
			Metadata:   map[string]any{"pattern": pat, "example_count": len(examples)},
			SourceFile: sourceLabel,
			Embedding:  vec,
		})
	}
	return docs, nil
}

// buildSimilarityItems creates one truncated snippet per record for future
// originality checks.
func (a *Aggregator) buildSimilarityItems(ctx context.Context, records []RawRecord) ([]knowledge.Document, error) {
	var docs []knowledge.Document
	for _, rec := range records {
		parts := []string{rec.Stimulus, rec.QuestionStem}
		parts = append(parts, rec.Options[:]...)
		fullText := strings.Join(parts, " ")

		hash := blake2b.Sum256([]byte(fullText))

		vec, err := a.embedder.Embed(ctx, fullText)
		if err != nil {
			return nil, fmt.Errorf("embed similarity item: %w", err)
		}

		docs = append(docs, knowledge.Document{
			DocType:     knowledge.DocSimilarityItem,
			Content:     truncateRunes(fullText, similaritySnippetLen),
			SourceFile:  similaritySource,
			ContentHash: hex.EncodeToString(hash[:]),
			Embedding:   vec,
		})
	}
	return docs, nil
}

// appendDistinct appends v unless it is empty or already present.
func appendDistinct(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// distinct removes duplicates preserving first occurrence.
func distinct(list []string) []string {
	seen := make(map[string]bool, len(list))
	var out []string
	for _, v := range list {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
