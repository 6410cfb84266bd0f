package engine

import (
	"fmt"
	"strings"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
)

// FollowUpThreshold controls when clarifying questions are appended. It is
// deliberately looser than ConfidenceFloor: a kept category with a middling
// score still gets follow-up questions.
const FollowUpThreshold = 0.55

// Composer maps a decision to the templated reply shown to the student.
type Composer struct {
	templates map[models.Category]string
	followUps map[models.Category][]string
}

// NewComposer builds a composer over the pack's templates.
func NewComposer(kn *Knowledge) *Composer {
	if kn == nil {
		kn = DefaultKnowledge()
	}
	return &Composer{templates: kn.Templates, followUps: kn.FollowUps}
}

// Compose renders the advisory text for a decision and returns the follow-up
// questions to solicit, if any.
func (c *Composer) Compose(decision models.Decision) (string, []string) {
	var b strings.Builder
	fmt.Fprintf(&b, "**Clasificación:** %s\n\n", decision.Category)
	fmt.Fprintf(&b, "**Prioridad estimada:** %s  \n", strings.ToUpper(string(decision.Priority)))
	fmt.Fprintf(&b, "**Confianza:** %.2f\n\n", decision.TopScore)

	if tpl, ok := c.templates[decision.Category]; ok {
		b.WriteString(tpl)
	} else {
		b.WriteString(c.templates[models.CategoryOther])
	}

	questions := c.FollowUps(decision)
	if len(questions) > 0 {
		b.WriteString("\n\n**Para afinar, dime por favor:**\n")
		for _, q := range questions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	return b.String(), questions
}

// FollowUps returns the clarifying questions for a decision, or nil when the
// category was accepted with enough confidence.
func (c *Composer) FollowUps(decision models.Decision) []string {
	if decision.Category != models.CategoryOther && decision.TopScore >= FollowUpThreshold {
		return nil
	}
	return c.followUps[decision.Category]
}

// ComposeFaq renders a canned FAQ answer together with its link list.
func ComposeFaq(entry models.FaqEntry) string {
	if len(entry.Links) == 0 {
		return entry.Answer
	}
	var b strings.Builder
	b.WriteString(entry.Answer)
	b.WriteString("\n\n**🔗 Enlaces útiles:**\n")
	for _, link := range entry.Links {
		fmt.Fprintf(&b, "- [%s](%s)\n", link.Text, link.URL)
	}
	return b.String()
}
