package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/engine"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/insights"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/metrics"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/store"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/utils"
)

// FeedbackStore abstracts the deduplicated vote ledger.
type FeedbackStore interface {
	RecordVote(userText, tag string, priority models.Priority, topScore float64, responseText string, vote models.Vote) (bool, error)
	ReadAll() ([]models.FeedbackRecord, error)
}

// AuditLog abstracts the append-only interaction trail.
type AuditLog interface {
	Append(userText, tag string, priority models.Priority, topScore float64, responseText string) error
	ReadAll() ([]models.Interaction, error)
}

// TriageResult is the outcome of one user turn as shown to the front end.
type TriageResult struct {
	ID         string
	Kind       string // "faq" or "incidencia"
	Intent     string
	Tag        string
	Category   models.Category
	Priority   models.Priority
	TopScore   float64
	Scores     []models.LabelScore
	Response   string
	FollowUps  []string
	QuestionID string
}

// FeedbackSubmission carries a vote for a previously shown response.
type FeedbackSubmission struct {
	UserText     string
	Tag          string
	Priority     models.Priority
	TopScore     float64
	ResponseText string
	Vote         models.Vote
}

// TriageService is the application facade: FAQ gate, classification pipeline,
// response composition, audit logging and feedback recording.
type TriageService struct {
	logger      *slog.Logger
	faq         *engine.FaqMatcher
	pipeline    *engine.Pipeline
	composer    *engine.Composer
	feedback    FeedbackStore
	audit       AuditLog
	datasetPath string
	resultsPath string
	latencies   *utils.LatencyTracker
}

// NewTriageService wires the service facade.
func NewTriageService(
	logger *slog.Logger,
	faq *engine.FaqMatcher,
	pipeline *engine.Pipeline,
	composer *engine.Composer,
	feedback FeedbackStore,
	audit AuditLog,
	datasetPath, resultsPath string,
) *TriageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TriageService{
		logger:      logger,
		faq:         faq,
		pipeline:    pipeline,
		composer:    composer,
		feedback:    feedback,
		audit:       audit,
		datasetPath: datasetPath,
		resultsPath: resultsPath,
		latencies:   utils.NewLatencyTracker(1024),
	}
}

// Triage processes one free-text turn: the FAQ table is checked before the
// incident pipeline even runs; otherwise rules, model and priority produce a
// decision that is composed into the advisory response. Every resolved turn
// is appended to the audit log; a broken log degrades to a warning.
func (s *TriageService) Triage(ctx context.Context, text string) (TriageResult, error) {
	if s.pipeline == nil {
		return TriageResult{}, fmt.Errorf("pipeline not configured")
	}

	start := time.Now()

	if s.faq != nil {
		if entry, ok := s.faq.Match(text); ok {
			answer := engine.ComposeFaq(entry)
			tag := "FAQ:" + entry.Intent
			result := TriageResult{
				ID:         uuid.NewString(),
				Kind:       "faq",
				Intent:     entry.Intent,
				Tag:        tag,
				Priority:   models.PriorityNone,
				TopScore:   1.0,
				Response:   answer,
				QuestionID: store.ComputeQuestionID(text),
			}
			s.appendAudit(text, tag, models.PriorityNone, 1.0, answer)
			duration := time.Since(start)
			s.latencies.Observe(duration)
			metrics.ObserveTurn(duration, metrics.OutcomeSuccess, metrics.SourceFaq)
			return result, nil
		}
	}

	decision, err := s.pipeline.Classify(ctx, text)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveTurn(duration, metrics.OutcomeError, metrics.SourceModel)
		s.logger.Error("classification failed", slog.Any("error", err))
		return TriageResult{}, err
	}

	response, followUps := s.composer.Compose(decision)
	source := metrics.SourceModel
	if decision.RuleFired() {
		source = metrics.SourceRule
	}

	result := TriageResult{
		ID:         uuid.NewString(),
		Kind:       "incidencia",
		Tag:        string(decision.Category),
		Category:   decision.Category,
		Priority:   decision.Priority,
		TopScore:   decision.TopScore,
		Scores:     decision.Scores,
		Response:   response,
		FollowUps:  followUps,
		QuestionID: store.ComputeQuestionID(text),
	}

	s.appendAudit(text, result.Tag, decision.Priority, decision.TopScore, response)

	s.latencies.Observe(duration)
	metrics.ObserveTurn(duration, metrics.OutcomeSuccess, source)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("triage latency", slog.Duration("p95", s.latencies.Percentile(95)), slog.Int("samples", count))
	}
	return result, nil
}

func (s *TriageService) appendAudit(text, tag string, priority models.Priority, topScore float64, response string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Append(text, tag, priority, topScore, response); err != nil {
		s.logger.Warn("interaction log unavailable", slog.Any("error", err))
	}
}

// RecordFeedback stores one vote. The duplicate return distinguishes "already
// voted" (an informational outcome, not a failure) from real errors.
func (s *TriageService) RecordFeedback(sub FeedbackSubmission) (saved bool, duplicate bool, questionID string, err error) {
	if s.feedback == nil {
		return false, false, "", fmt.Errorf("feedback store not configured")
	}

	questionID = store.ComputeQuestionID(sub.UserText)
	saved, err = s.feedback.RecordVote(sub.UserText, sub.Tag, sub.Priority, sub.TopScore, sub.ResponseText, sub.Vote)
	if err != nil {
		return false, false, questionID, err
	}
	if !saved {
		metrics.ObserveDuplicateVote()
		s.logger.Info("duplicate vote rejected", slog.String("question_id", questionID))
		return false, true, questionID, nil
	}
	metrics.ObserveVote(string(sub.Vote))
	return true, false, questionID, nil
}

// FeedbackStats aggregates persisted votes.
func (s *TriageService) FeedbackStats() (models.FeedbackStats, error) {
	if s.feedback == nil {
		return models.FeedbackStats{}, fmt.Errorf("feedback store not configured")
	}
	records, err := s.feedback.ReadAll()
	if err != nil {
		return models.FeedbackStats{}, err
	}
	return insights.FeedbackStats(records), nil
}

// Insights mines category frequencies from the interaction history. The view
// may lag concurrent writes; it is not on the correctness-critical path.
func (s *TriageService) Insights() ([]insights.CategorySummary, error) {
	if s.audit == nil {
		return nil, fmt.Errorf("interaction log not configured")
	}
	interactions, err := s.audit.ReadAll()
	if err != nil {
		return nil, err
	}
	return insights.MineCategories(interactions), nil
}

// Evaluate runs the bulk dataset evaluation using the incident pipeline
// (FAQ detection is deliberately not part of the accuracy measurement).
func (s *TriageService) Evaluate(ctx context.Context, path string) (store.EvalReport, error) {
	if path == "" {
		path = s.datasetPath
	}
	classify := func(ctx context.Context, text string) (models.Category, error) {
		decision, err := s.pipeline.Classify(ctx, text)
		if err != nil {
			return "", err
		}
		return decision.Category, nil
	}
	return store.EvaluateDataset(ctx, path, classify, s.resultsPath)
}
