// Package generation retrieves grounding context and produces new
// multiple-choice exam items through the generation capability.
package generation

// PromptDebug carries the exact prompt attempted, attached to fallback
// results for diagnosis.
type PromptDebug struct {
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
}

// Result is what a generation request returns. Exactly one of three shapes
// is populated: a full item (success), RawOutput alone (degraded: the model
// answered but not in the expected schema), or a fallback item with Error
// and Debug set. All three are structurally valid for consumers.
type Result struct {
	Stimulus             string            `json:"stimulus,omitempty"`
	QuestionStem         string            `json:"question_stem,omitempty"`
	Options              map[string]string `json:"options,omitempty"`
	CorrectOption        string            `json:"correct_option,omitempty"`
	Rationale            string            `json:"rationale,omitempty"`
	DistractorRationales map[string]string `json:"distractor_rationales,omitempty"`

	RawOutput string       `json:"raw_output,omitempty"`
	Fallback  bool         `json:"mock_fallback,omitempty"`
	Error     string       `json:"error,omitempty"`
	Debug     *PromptDebug `json:"debug_info,omitempty"`
}

// IsDegraded reports whether the model responded outside the item schema.
func (r Result) IsDegraded() bool {
	return r.RawOutput != ""
}

// IsFallback reports whether the generation capability could not be used.
func (r Result) IsFallback() bool {
	return r.Fallback
}
