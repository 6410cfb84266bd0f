package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels successfully resolved turns.
	OutcomeSuccess = "success"
	// OutcomeError labels failed turns (model or dependency issues).
	OutcomeError = "error"

	// SourceFaq marks turns answered from the FAQ table.
	SourceFaq = "faq"
	// SourceRule marks turns resolved by the keyword rules.
	SourceRule = "rule"
	// SourceModel marks turns resolved by the zero-shot model.
	SourceModel = "model"
)

var (
	triagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triage",
			Name:      "turns_total",
			Help:      "Total number of triage turns handled, partitioned by outcome and resolution source.",
		},
		[]string{"outcome", "source"},
	)

	triageDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "triage",
			Name:      "turn_seconds",
			Help:      "Triage turn latency in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
		},
	)

	feedbackVotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triage",
			Name:      "feedback_votes_total",
			Help:      "Feedback votes recorded, partitioned by vote value.",
		},
		[]string{"vote"},
	)

	feedbackDuplicatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "triage",
			Name:      "feedback_duplicates_total",
			Help:      "Vote attempts rejected because the question was already voted.",
		},
	)
)

// Register attaches the triage collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		triagesTotal,
		triageDurationSeconds,
		feedbackVotesTotal,
		feedbackDuplicatesTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveTurn records a triage turn duration with its outcome and source.
func ObserveTurn(duration time.Duration, outcome, source string) {
	if outcome != OutcomeError {
		outcome = OutcomeSuccess
	}
	triagesTotal.WithLabelValues(outcome, source).Inc()
	if duration < 0 {
		duration = 0
	}
	triageDurationSeconds.Observe(duration.Seconds())
}

// ObserveVote records an accepted vote.
func ObserveVote(vote string) {
	feedbackVotesTotal.WithLabelValues(vote).Inc()
}

// ObserveDuplicateVote records a rejected duplicate vote attempt.
func ObserveDuplicateVote() {
	feedbackDuplicatesTotal.Inc()
}
