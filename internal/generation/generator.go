package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edu-forge/itemforge/internal/ai"
	"github.com/edu-forge/itemforge/internal/exam"
	"github.com/edu-forge/itemforge/internal/platform/cache"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2048
	defaultCacheTTL    = 5 * time.Minute
)

// GeneratorConfig holds dependencies for the item generator. Provider,
// Retriever and Profiles are required; Cache and Budget are optional.
type GeneratorConfig struct {
	Provider    ai.Provider
	Retriever   Retriever
	Profiles    *exam.Profiles
	Cache       *cache.Cache
	CacheTTL    time.Duration
	Budget      ai.BudgetChecker
	Temperature float64
	MaxTokens   int
}

// Generator produces exam items grounded on retrieved knowledge documents.
type Generator struct {
	provider    ai.Provider
	retriever   Retriever
	profiles    *exam.Profiles
	cache       *cache.Cache
	cacheTTL    time.Duration
	budget      ai.BudgetChecker
	temperature float64
	maxTokens   int
}

// NewGenerator creates a new item generator.
func NewGenerator(cfg GeneratorConfig) *Generator {
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}
	return &Generator{
		provider:    cfg.Provider,
		retriever:   cfg.Retriever,
		profiles:    cfg.Profiles,
		cache:       cfg.Cache,
		cacheTTL:    cacheTTL,
		budget:      cfg.Budget,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// GenerateItem builds grounding context, prompts the model and parses its
// structured output. Retrieval failure is the only hard failure; provider
// failures yield a fallback item and malformed output yields a degraded
// result, so callers always get a structurally valid Result.
func (g *Generator) GenerateItem(ctx context.Context, examName, skill, difficulty string) (Result, error) {
	grounding, err := g.grounding(ctx, examName, skill)
	if err != nil {
		// No context means no valid prompt; this one propagates.
		return Result{}, fmt.Errorf("build context: %w", err)
	}

	systemPrompt, userPrompt := g.buildPrompts(examName, difficulty, grounding)

	slog.Debug("generation prompt built",
		"exam", examName,
		"skill", skill,
		"difficulty", difficulty,
		"prompt_len", len(userPrompt),
	)

	if g.budget != nil {
		ok, err := g.budget.Check(examName)
		switch {
		case err != nil:
			// Budget backend trouble must not block generation.
			slog.Warn("budget check failed", "exam", examName, "error", err)
		case !ok:
			return g.fallback(fmt.Errorf("token budget exhausted for exam %q", examName), systemPrompt, userPrompt), nil
		}
	}

	resp, err := g.provider.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		JSONMode:    true,
	})
	if err != nil {
		slog.Error("generation failed", "exam", examName, "skill", skill, "error", err)
		return g.fallback(err, systemPrompt, userPrompt), nil
	}

	if g.budget != nil {
		if err := g.budget.Record(examName, resp.TotalTokens()); err != nil {
			slog.Warn("budget recording failed", "error", err)
		}
	}

	return parseResponse(resp.Content), nil
}

// grounding returns the retrieval context, consulting the cache first when
// one is configured. Cache failures never affect the outcome.
func (g *Generator) grounding(ctx context.Context, examName, skill string) (Grounding, error) {
	key := "grounding:" + examName + "|" + skill

	if g.cache != nil {
		var cached Grounding
		err := g.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("grounding cache read failed", "error", err)
		}
	}

	grounding, err := g.retriever.Retrieve(ctx, examName, skill, "")
	if err != nil {
		return Grounding{}, err
	}

	if g.cache != nil {
		if err := g.cache.SetJSON(ctx, key, grounding, g.cacheTTL); err != nil {
			slog.Warn("grounding cache write failed", "error", err)
		}
	}
	return grounding, nil
}

func (g *Generator) buildPrompts(examName, difficulty string, grounding Grounding) (string, string) {
	profile := g.profiles.Lookup(examName)

	userPrompt := fmt.Sprintf(`TASK: Generate a multiple-choice question (4 options: A, B, C, D) for the '%s' exam.

COMPETENCY/SKILL TARGET:
%s

DIFFICULTY: %s

GUIDELINES FOR DISTRACTORS:
Use the following patterns to create plausible but incorrect answers:
%s

OUTPUT FORMAT (JSON):
{
    "stimulus": "The context text or situation...",
    "question_stem": "The specific question...",
    "options": {
        "A": "...",
        "B": "...",
        "C": "...",
        "D": "..."
    },
    "correct_option": "A|B|C|D",
    "rationale": "Explanation of why the correct answer is correct...",
    "distractor_rationales": {
        "wrong_option_1": "Why it is wrong...",
        "wrong_option_2": "..."
    }
}`, examName, grounding.SkillCard, difficulty, grounding.Distractors)

	return profile.Persona, userPrompt
}

// parseResponse turns raw model output into a Result. Output that fails to
// parse or validate is returned as-is in RawOutput: the model did respond,
// so this is degraded rather than a fallback.
func parseResponse(content string) Result {
	if err := validateItemJSON(content); err != nil {
		slog.Warn("model output failed item schema", "error", err)
		return Result{RawOutput: content}
	}

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return Result{RawOutput: content}
	}
	return result
}

// fallback returns the deterministic placeholder item used when the
// generation capability cannot be reached.
func (g *Generator) fallback(cause error, systemPrompt, userPrompt string) Result {
	return Result{
		Stimulus:      "Error reaching the generation service.",
		QuestionStem:  "Please check the provider configuration.",
		Options:       map[string]string{"A": "Check Logs", "B": "Retry", "C": "Config", "D": "Support"},
		CorrectOption: "C",
		Fallback:      true,
		Error:         cause.Error(),
		Debug: &PromptDebug{
			SystemPrompt: systemPrompt,
			UserPrompt:   userPrompt,
		},
	}
}
