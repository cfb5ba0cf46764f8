package service

import (
	"log"
	"regexp"
	"strings"
)

// NoRelevantContext is the sentinel emitted when no chunk clears the relevance
// threshold. The generation step treats it as "answer out of scope", never as
// ordinary context.
const NoRelevantContext = "No relevant context was found in the document for the given question(s)."

// ChunkSeparator joins selected chunks so the downstream consumer can re-split
// the context into its constituents.
const ChunkSeparator = "\n\n---\n\n"

// SanitizeRule is one deny-list entry: text matching Pattern is replaced with
// Replacement. Rules are data so the policy can grow without touching the
// assembler.
type SanitizeRule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// DefaultSanitizeRules neutralizes fixed instruction-injection phrasings.
// Matching is case-insensitive; replacement is a single space. This is a
// best-effort mitigation, not a security boundary.
func DefaultSanitizeRules() []SanitizeRule {
	return []SanitizeRule{
		{
			Name:        "ignore_previous_instructions",
			Pattern:     regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+instructions`),
			Replacement: " ",
		},
		{
			Name:        "disregard_previous_instructions",
			Pattern:     regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)\s+(instructions|prompts?)`),
			Replacement: " ",
		},
		{
			Name:        "forget_instructions",
			Pattern:     regexp.MustCompile(`(?i)forget\s+(everything|all)\s+(you|above|previous)`),
			Replacement: " ",
		},
		{
			Name:        "system_prompt_override",
			Pattern:     regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an|in)\s+\w+\s+mode`),
			Replacement: " ",
		},
		{
			Name:        "new_instructions",
			Pattern:     regexp.MustCompile(`(?i)(new|updated)\s+instructions\s*:`),
			Replacement: " ",
		},
	}
}

// ContextAssembler concatenates selected chunks into one bounded context blob
// after a sanitization pass.
type ContextAssembler struct {
	rules []SanitizeRule
}

// NewContextAssembler creates an assembler with the default deny-list.
func NewContextAssembler() *ContextAssembler {
	return NewContextAssemblerWithRules(DefaultSanitizeRules())
}

// NewContextAssemblerWithRules creates an assembler with an explicit rule set.
func NewContextAssemblerWithRules(rules []SanitizeRule) *ContextAssembler {
	return &ContextAssembler{rules: rules}
}

// Assemble joins the selected chunk texts into the final context window. An
// empty selection yields the NoRelevantContext sentinel, never an empty
// string. Sanitization degrades gracefully: matches are replaced and logged,
// the request is never rejected for matching.
func (a *ContextAssembler) Assemble(selectedChunks []string) string {
	if len(selectedChunks) == 0 {
		return NoRelevantContext
	}

	sanitized := make([]string, len(selectedChunks))
	for i, chunk := range selectedChunks {
		clean, stripped := a.sanitize(chunk)
		sanitized[i] = clean
		for _, name := range stripped {
			log.Printf("sanitizer: stripped %q from chunk %d", name, i)
		}
	}

	return strings.Join(sanitized, ChunkSeparator)
}

// sanitize applies every rule to the text and reports which rules matched.
func (a *ContextAssembler) sanitize(text string) (string, []string) {
	var stripped []string
	for _, rule := range a.rules {
		if rule.Pattern.MatchString(text) {
			text = rule.Pattern.ReplaceAllString(text, rule.Replacement)
			stripped = append(stripped, rule.Name)
		}
	}
	return text, stripped
}
