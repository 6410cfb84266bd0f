package engine

import (
	"strings"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
)

// RuleMatcher applies the ordered keyword-group rules. Rules are deterministic
// high-precision overrides: when one fires the zero-shot model is bypassed and
// the category is treated as certain.
type RuleMatcher struct {
	rules []KeywordRule
}

// NewRuleMatcher builds a matcher over the pack's rule table.
func NewRuleMatcher(kn *Knowledge) *RuleMatcher {
	if kn == nil {
		kn = DefaultKnowledge()
	}
	return &RuleMatcher{rules: kn.Rules}
}

// Match returns the category of the first rule matching the text, or false
// when no rule fires. Matching is case-insensitive substring containment.
func (m *RuleMatcher) Match(text string) (models.Category, bool) {
	lowered := strings.ToLower(text)
	for _, rule := range m.rules {
		if ruleMatches(rule, lowered) {
			return rule.Category, true
		}
	}
	return "", false
}

func ruleMatches(rule KeywordRule, lowered string) bool {
	if len(rule.RequireAll) > 0 {
		for _, group := range rule.RequireAll {
			if !anyKeyword(group, lowered) {
				return false
			}
		}
		return true
	}
	return anyKeyword(rule.Keywords, lowered)
}

func anyKeyword(keywords []string, lowered string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
