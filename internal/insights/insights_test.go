package insights

import (
	"testing"
	"time"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
)

func TestFeedbackStats(t *testing.T) {
	records := []models.FeedbackRecord{
		{Vote: models.VoteYes},
		{Vote: models.VoteYes},
		{Vote: " si "},
		{Vote: models.VoteNo},
		{Vote: "QUIZAS"}, // ignored
		{Vote: ""},       // ignored
	}

	stats := FeedbackStats(records)
	if stats.Yes != 3 || stats.No != 1 || stats.Total != 4 {
		t.Fatalf("unexpected tallies: %+v", stats)
	}
	if stats.PercentYes != 75.0 {
		t.Fatalf("expected 75%% positive, got %v", stats.PercentYes)
	}
}

func TestFeedbackStatsEmpty(t *testing.T) {
	stats := FeedbackStats(nil)
	if stats.Total != 0 || stats.PercentYes != 0 {
		t.Fatalf("empty history must yield zeroes: %+v", stats)
	}
}

func TestMineCategories(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 10, 0, 0, 0, time.UTC) }
	interactions := []models.Interaction{
		{Tag: "problema de acceso", Priority: models.PriorityHigh, TopScore: 0.9, Timestamp: day(1)},
		{Tag: "problema de acceso", Priority: models.PriorityNormal, TopScore: 0.7, Timestamp: day(3)},
		{Tag: "problema de acceso", Priority: models.PriorityHigh, TopScore: 0.8, Timestamp: day(2)},
		{Tag: "FAQ:wifi_campus", Priority: models.PriorityNone, Timestamp: day(2)},
		{Tag: "", Timestamp: day(1)},
	}

	summaries := MineCategories(interactions)
	if len(summaries) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(summaries))
	}

	top := summaries[0]
	if top.Tag != "problema de acceso" || top.Count != 3 {
		t.Fatalf("most frequent tag must come first: %+v", top)
	}
	if top.HighPriority != 2 {
		t.Fatalf("expected 2 high-priority turns, got %d", top.HighPriority)
	}
	if top.AvgConfidence < 0.799 || top.AvgConfidence > 0.801 {
		t.Fatalf("expected average confidence 0.8, got %v", top.AvgConfidence)
	}
	if !top.LastSeen.Equal(day(3)) {
		t.Fatalf("expected last-seen on day 3, got %v", top.LastSeen)
	}
	if top.Prevalence != 0.6 {
		t.Fatalf("expected prevalence 3/5, got %v", top.Prevalence)
	}

	// FAQ turns carry no confidence; the empty tag is bucketed, not dropped.
	if summaries[1].Tag != "FAQ:wifi_campus" || summaries[1].AvgConfidence != 0 {
		t.Fatalf("unexpected second summary: %+v", summaries[1])
	}
	if summaries[2].Tag != "desconocido" {
		t.Fatalf("expected untagged bucket, got %q", summaries[2].Tag)
	}
}

func TestMineCategoriesTieBreaksByTag(t *testing.T) {
	interactions := []models.Interaction{
		{Tag: "b"}, {Tag: "a"},
	}
	summaries := MineCategories(interactions)
	if summaries[0].Tag != "a" || summaries[1].Tag != "b" {
		t.Fatalf("equal counts must order by tag: %+v", summaries)
	}
}

func TestMineCategoriesEmpty(t *testing.T) {
	if got := MineCategories(nil); got != nil {
		t.Fatalf("empty history must yield nil, got %+v", got)
	}
}
