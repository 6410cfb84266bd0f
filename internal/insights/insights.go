package insights

import (
	"sort"
	"strings"
	"time"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
)

// CategorySummary aggregates interaction history for one detected tag
// (a category or a FAQ:<intent> marker).
type CategorySummary struct {
	Tag           string
	Count         int
	Prevalence    float64
	HighPriority  int
	AvgConfidence float64
	LastSeen      time.Time
}

// FeedbackStats aggregates valid SI/NO votes; anything else is ignored.
func FeedbackStats(records []models.FeedbackRecord) models.FeedbackStats {
	var stats models.FeedbackStats
	for _, rec := range records {
		switch models.Vote(strings.ToUpper(strings.TrimSpace(string(rec.Vote)))) {
		case models.VoteYes:
			stats.Yes++
		case models.VoteNo:
			stats.No++
		}
	}
	stats.Total = stats.Yes + stats.No
	if stats.Total > 0 {
		stats.PercentYes = float64(int(float64(stats.Yes)/float64(stats.Total)*10000+0.5)) / 100
	}
	return stats
}

// MineCategories mines frequency summaries from the interaction history,
// sorted by prevalence descending.
func MineCategories(interactions []models.Interaction) []CategorySummary {
	if len(interactions) == 0 {
		return nil
	}

	type aggregate struct {
		count      int
		high       int
		scoreSum   float64
		scoreCount int
		lastSeen   time.Time
	}

	byTag := make(map[string]*aggregate)
	for _, it := range interactions {
		tag := it.Tag
		if tag == "" {
			tag = "desconocido"
		}
		agg, ok := byTag[tag]
		if !ok {
			agg = &aggregate{}
			byTag[tag] = agg
		}
		agg.count++
		if it.Priority == models.PriorityHigh {
			agg.high++
		}
		if it.TopScore > 0 {
			agg.scoreSum += it.TopScore
			agg.scoreCount++
		}
		if it.Timestamp.After(agg.lastSeen) {
			agg.lastSeen = it.Timestamp
		}
	}

	summaries := make([]CategorySummary, 0, len(byTag))
	for tag, agg := range byTag {
		summary := CategorySummary{
			Tag:          tag,
			Count:        agg.count,
			Prevalence:   float64(agg.count) / float64(len(interactions)),
			HighPriority: agg.high,
			LastSeen:     agg.lastSeen,
		}
		if agg.scoreCount > 0 {
			summary.AvgConfidence = agg.scoreSum / float64(agg.scoreCount)
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Count != summaries[j].Count {
			return summaries[i].Count > summaries[j].Count
		}
		return summaries[i].Tag < summaries[j].Tag
	})
	return summaries
}
