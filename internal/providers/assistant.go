package providers

import (
	"context"
	"sort"
	"strings"
)

// Categories are the labels a task can be filed under
var Categories = []string{"work", "personal", "shopping", "health", "finance", "learning", "other"}

// Assistant provides the AI features guarded by the quota gate
type Assistant interface {
	// Categorize files a task under one of Categories
	Categorize(ctx context.Context, text string) (string, error)

	// Suggest breaks a task into a few concrete next steps
	Suggest(ctx context.Context, text string) ([]string, error)

	// Name identifies the backing provider in logs and errors
	Name() string
}

var categoryKeywords = map[string][]string{
	"work":     {"meeting", "report", "deadline", "client", "email", "presentation", "project", "review"},
	"shopping": {"buy", "groceries", "order", "shop", "purchase", "store"},
	"health":   {"doctor", "gym", "workout", "run", "dentist", "medicine", "yoga"},
	"finance":  {"pay", "bill", "invoice", "tax", "budget", "bank", "rent"},
	"learning": {"read", "study", "course", "learn", "practice", "book", "lesson"},
	"personal": {"call", "birthday", "family", "clean", "home", "friend"},
}

// FallbackAssistant answers with keyword heuristics when no model is configured
type FallbackAssistant struct{}

// NewFallbackAssistant creates a heuristic assistant
func NewFallbackAssistant() *FallbackAssistant {
	return &FallbackAssistant{}
}

// Name returns the provider name
func (FallbackAssistant) Name() string {
	return "fallback"
}

// Categorize picks the category with the most keyword hits
func (FallbackAssistant) Categorize(ctx context.Context, text string) (string, error) {
	words := strings.Fields(strings.ToLower(text))

	best, bestHits := "other", 0
	// deterministic order for ties
	names := make([]string, 0, len(categoryKeywords))
	for name := range categoryKeywords {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		hits := 0
		for _, w := range words {
			w = strings.Trim(w, ".,;:!?\"'()")
			for _, kw := range categoryKeywords[name] {
				if w == kw || strings.HasPrefix(w, kw) {
					hits++
					break
				}
			}
		}
		if hits > bestHits {
			best, bestHits = name, hits
		}
	}
	return best, nil
}

// Suggest returns generic planning steps for the task
func (FallbackAssistant) Suggest(ctx context.Context, text string) ([]string, error) {
	task := strings.TrimSpace(text)
	if task == "" {
		task = "the task"
	}
	return []string{
		"Define what done looks like for " + task,
		"Block time on your calendar for " + task,
		"Break " + task + " into steps under 30 minutes",
	}, nil
}

// NormalizeCategory maps free-form model output onto Categories
func NormalizeCategory(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Trim(s, ".,;:!?\"'`*")
	for _, c := range Categories {
		if s == c {
			return c
		}
	}
	for _, c := range Categories {
		if strings.Contains(s, c) {
			return c
		}
	}
	return "other"
}

// ParseSuggestions splits a model answer into at most max trimmed lines,
// dropping list markers
func ParseSuggestions(raw string, max int) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789.) ")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == max {
			break
		}
	}
	return out
}

var _ Assistant = (*FallbackAssistant)(nil)
