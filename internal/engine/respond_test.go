package engine

import (
	"strings"
	"testing"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
)

func TestComposeConfidentCategoryHasNoFollowUps(t *testing.T) {
	c := NewComposer(DefaultKnowledge())

	decision := models.Decision{
		Category: models.CategoryAccess,
		Priority: models.PriorityHigh,
		TopScore: 0.72,
	}
	response, followUps := c.Compose(decision)
	if len(followUps) != 0 {
		t.Fatalf("no follow-ups expected at %.2f, got %v", decision.TopScore, followUps)
	}
	if !strings.Contains(response, string(models.CategoryAccess)) {
		t.Fatalf("response must name the category: %q", response)
	}
	if !strings.Contains(response, "ALTA") {
		t.Fatalf("response must show the upper-cased priority: %q", response)
	}
}

func TestComposeMiddlingScoreAddsFollowUps(t *testing.T) {
	c := NewComposer(DefaultKnowledge())

	// 0.50 clears the classification floor (0.45) but not the follow-up
	// threshold (0.55): the category is kept, detail is still solicited.
	decision := models.Decision{
		Category: models.CategoryTechnical,
		Priority: models.PriorityNormal,
		TopScore: 0.50,
	}
	response, followUps := c.Compose(decision)
	if len(followUps) == 0 {
		t.Fatalf("expected follow-up questions below the follow-up threshold")
	}
	if !strings.Contains(response, "Para afinar") {
		t.Fatalf("follow-up section missing from response: %q", response)
	}
}

func TestComposeOtherAlwaysAsksFollowUps(t *testing.T) {
	c := NewComposer(DefaultKnowledge())

	decision := models.Decision{
		Category: models.CategoryOther,
		Priority: models.PriorityNormal,
		TopScore: 0.93,
	}
	_, followUps := c.Compose(decision)
	if len(followUps) == 0 {
		t.Fatalf("otro tipo de incidencia must always solicit follow-up, even at high scores")
	}
}

func TestComposeFaqAppendsLinks(t *testing.T) {
	entry := models.FaqEntry{
		Intent: "wifi",
		Answer: "Conéctate a eduroam.",
		Links: []models.FaqLink{
			{Text: "Guía", URL: "https://example.edu/wifi"},
		},
	}
	out := ComposeFaq(entry)
	if !strings.Contains(out, "Conéctate a eduroam.") {
		t.Fatalf("answer missing: %q", out)
	}
	if !strings.Contains(out, "[Guía](https://example.edu/wifi)") {
		t.Fatalf("link list missing: %q", out)
	}
}

func TestComposeFaqWithoutLinks(t *testing.T) {
	out := ComposeFaq(models.FaqEntry{Answer: "Respuesta directa."})
	if out != "Respuesta directa." {
		t.Fatalf("expected bare answer, got %q", out)
	}
}
