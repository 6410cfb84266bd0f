package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
)

// ConfidenceFloor is the minimum top-label score required to accept the
// model's classification outright; below it the category falls back to
// "otro tipo de incidencia".
const ConfidenceFloor = 0.45

// ZeroShotClassifier is the external model boundary. Implementations return
// the full label distribution sorted descending by score.
type ZeroShotClassifier interface {
	Classify(ctx context.Context, text string, labels []string, hypothesisTemplate string) ([]models.LabelScore, error)
}

// HypothesisTemplate is the fixed template handed to the zero-shot model.
const HypothesisTemplate = "Este texto trata sobre {}."

// Pipeline is the incident classifier: rules short-circuit, the model carries
// everything the rules cannot resolve, and low-confidence answers are routed
// into the catch-all category.
type Pipeline struct {
	logger   *slog.Logger
	rules    *RuleMatcher
	priority *PriorityEstimator
	zeroShot ZeroShotClassifier
}

// NewPipeline constructs the classification pipeline.
func NewPipeline(logger *slog.Logger, rules *RuleMatcher, priority *PriorityEstimator, zeroShot ZeroShotClassifier) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger:   logger,
		rules:    rules,
		priority: priority,
		zeroShot: zeroShot,
	}
}

// Classify turns raw user text into a Decision.
func (p *Pipeline) Classify(ctx context.Context, text string) (models.Decision, error) {
	priority := p.priority.Estimate(text)

	if category, ok := p.rules.Match(text); ok {
		p.logger.Debug("rule fired", slog.String("category", string(category)))
		return models.Decision{
			Category: category,
			Priority: priority,
			TopScore: 1.0,
		}, nil
	}

	if p.zeroShot == nil {
		return models.Decision{}, fmt.Errorf("zero-shot classifier not configured")
	}

	scores, err := p.zeroShot.Classify(ctx, text, models.CategoryStrings(), HypothesisTemplate)
	if err != nil {
		return models.Decision{}, fmt.Errorf("zero-shot classify: %w", err)
	}
	if len(scores) == 0 {
		return models.Decision{}, fmt.Errorf("zero-shot classify: empty distribution")
	}

	top := scores[0]
	category := top.Label
	if top.Score < ConfidenceFloor {
		// The literal top label is discarded; the distribution stays intact
		// for observability.
		category = models.CategoryOther
	}

	return models.Decision{
		Category: category,
		Scores:   scores,
		Priority: priority,
		TopScore: top.Score,
	}, nil
}
