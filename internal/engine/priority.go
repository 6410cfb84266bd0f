package engine

import (
	"strings"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
)

// PriorityEstimator flags urgent turns from trigger phrases. It runs on every
// classified turn, independent of which matcher resolved the category.
type PriorityEstimator struct {
	triggers []string
}

// NewPriorityEstimator builds an estimator over the pack's urgency triggers.
func NewPriorityEstimator(kn *Knowledge) *PriorityEstimator {
	if kn == nil {
		kn = DefaultKnowledge()
	}
	return &PriorityEstimator{triggers: kn.UrgencyTriggers}
}

// Estimate returns alta when any trigger phrase occurs in the lowered text.
func (e *PriorityEstimator) Estimate(text string) models.Priority {
	lowered := strings.ToLower(text)
	for _, trigger := range e.triggers {
		if trigger == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(trigger)) {
			return models.PriorityHigh
		}
	}
	return models.PriorityNormal
}
