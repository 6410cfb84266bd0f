package store

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/utils"
)

var interactionHeader = []string{
	"timestamp",
	"texto_usuario",
	"tipo_detectado",
	"prioridad",
	"confianza_top",
	"respuesta_resumen",
}

// InteractionLog is the append-only audit trail of classified turns. Unlike
// the feedback ledger there is no identifier and no deduplication: every turn
// is appended exactly once.
type InteractionLog struct {
	mu   sync.Mutex
	path string
}

// NewInteractionLog creates a log over the CSV file at path.
func NewInteractionLog(path string) *InteractionLog {
	return &InteractionLog{path: path}
}

// Append writes one audit row. Callers treat failures as non-fatal: a broken
// log must not abort the conversation turn.
func (l *InteractionLog) Append(userText, tag string, priority models.Priority, topScore float64, responseText string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := []string{
		time.Now().Format("2006-01-02T15:04:05"),
		userText,
		tag,
		string(priority),
		strconv.FormatFloat(round4(topScore), 'f', -1, 64),
		utils.Summarize(responseText, summaryMaxRunes),
	}
	if err := appendCSVRow(l.path, interactionHeader, row); err != nil {
		return utils.NewAppError("interactions.append", "append audit row", err)
	}
	return nil
}

// ReadAll returns every audit row; a missing file is an empty log.
func (l *InteractionLog) ReadAll() ([]models.Interaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, header, err := readCSVFile(l.path)
	if err != nil {
		return nil, err
	}

	col := func(name string) int { return columnIndex(header, name) }
	get := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	tsIdx, textIdx := col("timestamp"), col("texto_usuario")
	tagIdx, prioIdx := col("tipo_detectado"), col("prioridad")
	confIdx, sumIdx := col("confianza_top"), col("respuesta_resumen")

	interactions := make([]models.Interaction, 0, len(rows))
	for _, row := range rows {
		rec := models.Interaction{
			UserText: get(row, textIdx),
			Tag:      get(row, tagIdx),
			Priority: models.Priority(get(row, prioIdx)),
			Summary:  get(row, sumIdx),
		}
		if ts, err := time.Parse("2006-01-02T15:04:05", get(row, tsIdx)); err == nil {
			rec.Timestamp = ts
		}
		if score, err := strconv.ParseFloat(get(row, confIdx), 64); err == nil {
			rec.TopScore = score
		}
		interactions = append(interactions, rec)
	}
	return interactions, nil
}
