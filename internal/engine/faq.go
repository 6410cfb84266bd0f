package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
)

// FaqMatcher detects FAQ intents before any incident classification runs.
type FaqMatcher struct {
	entries  []models.FaqEntry
	patterns [][]*regexp.Regexp
}

// NewFaqMatcher compiles the pack's FAQ patterns. Invalid patterns are
// rejected up front so a broken pack fails at boot, not mid-conversation.
func NewFaqMatcher(kn *Knowledge) (*FaqMatcher, error) {
	if kn == nil {
		kn = DefaultKnowledge()
	}
	m := &FaqMatcher{entries: kn.Faqs}
	for _, entry := range kn.Faqs {
		compiled := make([]*regexp.Regexp, 0, len(entry.Patterns))
		for _, p := range entry.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("faq intent %q pattern %q: %w", entry.Intent, p, err)
			}
			compiled = append(compiled, re)
		}
		m.patterns = append(m.patterns, compiled)
	}
	return m, nil
}

// Match returns the first entry (table order) with any pattern matching the
// lowered text. Ties break on table order; there is no ranking.
func (m *FaqMatcher) Match(text string) (models.FaqEntry, bool) {
	lowered := strings.ToLower(text)
	for i, compiled := range m.patterns {
		for _, re := range compiled {
			if re.MatchString(lowered) {
				return m.entries[i], true
			}
		}
	}
	return models.FaqEntry{}, false
}
