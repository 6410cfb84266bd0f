package models

import "time"

// Category enumerates the closed set of incident labels used by the classifier
// and the zero-shot model. The wire values are the Spanish labels persisted to
// the stores and sent as candidate labels.
type Category string

const (
	CategoryAccess         Category = "problema de acceso"
	CategoryEnrollment     Category = "error de matrícula"
	CategoryBlockedAccount Category = "cuenta bloqueada"
	CategoryTechnical      Category = "problema técnico"
	CategoryAdministrative Category = "consulta administrativa"
	CategoryOther          Category = "otro tipo de incidencia"
)

// Categories returns the fixed, ordered label set handed to the zero-shot model.
func Categories() []Category {
	return []Category{
		CategoryAccess,
		CategoryEnrollment,
		CategoryBlockedAccount,
		CategoryTechnical,
		CategoryAdministrative,
		CategoryOther,
	}
}

// CategoryStrings returns the label set as plain strings.
func CategoryStrings() []string {
	cats := Categories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// Priority captures the urgency estimate computed for every turn.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "alta"
	// PriorityNone is logged for FAQ answers, where no estimate is computed.
	PriorityNone Priority = "n/a"
)

// LabelScore is one entry of the model's ranked distribution.
type LabelScore struct {
	Label Category
	Score float64
}

// Decision is the immutable outcome of one classification turn.
// Scores is empty when a deterministic rule fired; TopScore is then 1.0.
type Decision struct {
	Category Category
	Scores   []LabelScore
	Priority Priority
	TopScore float64
}

// RuleFired reports whether the decision came from the keyword rules rather
// than the model.
func (d Decision) RuleFired() bool {
	return len(d.Scores) == 0
}

// Interaction is one audit-trail row of the interaction log.
type Interaction struct {
	Timestamp time.Time
	UserText  string
	Tag       string
	Priority  Priority
	TopScore  float64
	Summary   string
}
