package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
)

type fakeZeroShot struct {
	calls  int
	scores []models.LabelScore
	err    error
}

func (f *fakeZeroShot) Classify(ctx context.Context, text string, labels []string, hypothesisTemplate string) ([]models.LabelScore, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.scores, nil
}

func newTestPipeline(zs ZeroShotClassifier) *Pipeline {
	kn := DefaultKnowledge()
	return NewPipeline(nil, NewRuleMatcher(kn), NewPriorityEstimator(kn), zs)
}

func TestClassifyRuleShortCircuitsModel(t *testing.T) {
	fake := &fakeZeroShot{scores: []models.LabelScore{{Label: models.CategoryAccess, Score: 0.9}}}
	p := newTestPipeline(fake)

	decision, err := p.Classify(context.Background(), "quiero confirmar la matrícula y pagar tasas")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.calls != 0 {
		t.Fatalf("rule match must bypass the model, got %d calls", fake.calls)
	}
	if decision.Category != models.CategoryEnrollment {
		t.Fatalf("expected %q, got %q", models.CategoryEnrollment, decision.Category)
	}
	if decision.TopScore != 1.0 {
		t.Fatalf("rule decisions carry top score 1.0, got %v", decision.TopScore)
	}
	if len(decision.Scores) != 0 {
		t.Fatalf("rule decisions carry no distribution, got %v", decision.Scores)
	}
	if decision.Priority != models.PriorityNormal {
		t.Fatalf("expected normal priority, got %q", decision.Priority)
	}
}

func TestClassifyLowConfidenceFallsBackToOther(t *testing.T) {
	fake := &fakeZeroShot{scores: []models.LabelScore{
		{Label: models.CategoryTechnical, Score: 0.31},
		{Label: models.CategoryAccess, Score: 0.28},
	}}
	p := newTestPipeline(fake)

	decision, err := p.Classify(context.Background(), "algo raro pasa con mi perfil")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("expected one model call, got %d", fake.calls)
	}
	if decision.Category != models.CategoryOther {
		t.Fatalf("below the confidence floor the category must be %q, got %q", models.CategoryOther, decision.Category)
	}
	if decision.TopScore != 0.31 {
		t.Fatalf("top score must be reported unchanged, got %v", decision.TopScore)
	}
	if len(decision.Scores) != 2 {
		t.Fatalf("full distribution must be kept for observability, got %d entries", len(decision.Scores))
	}
}

func TestClassifyKeepsConfidentModelLabel(t *testing.T) {
	fake := &fakeZeroShot{scores: []models.LabelScore{
		{Label: models.CategoryAccess, Score: 0.72},
		{Label: models.CategoryOther, Score: 0.08},
	}}
	p := newTestPipeline(fake)

	decision, err := p.Classify(context.Background(), "no puedo entrar a Blackboard, tengo examen hoy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Category != models.CategoryAccess {
		t.Fatalf("expected %q, got %q", models.CategoryAccess, decision.Category)
	}
	if decision.Priority != models.PriorityHigh {
		t.Fatalf("examen/hoy must raise priority, got %q", decision.Priority)
	}
}

func TestClassifyPriorityIndependentOfBranch(t *testing.T) {
	fake := &fakeZeroShot{scores: []models.LabelScore{{Label: models.CategoryAccess, Score: 0.9}}}
	p := newTestPipeline(fake)

	ruled, err := p.Classify(context.Background(), "la automatrícula falla y el plazo acaba hoy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ruled.RuleFired() {
		t.Fatalf("expected the enrollment rule to fire")
	}
	if ruled.Priority != models.PriorityHigh {
		t.Fatalf("priority must be estimated on the rule branch too, got %q", ruled.Priority)
	}

	modelled, err := p.Classify(context.Background(), "no me deja subir la práctica y la entrega es hoy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if modelled.RuleFired() {
		t.Fatalf("expected the model branch")
	}
	if modelled.Priority != models.PriorityHigh {
		t.Fatalf("priority must be estimated on the model branch too, got %q", modelled.Priority)
	}
}

func TestClassifyModelFailureIsFatal(t *testing.T) {
	fake := &fakeZeroShot{err: errors.New("model unavailable")}
	p := newTestPipeline(fake)

	if _, err := p.Classify(context.Background(), "algo no va bien"); err == nil {
		t.Fatalf("model failure must propagate, not fall back silently")
	}
}
