package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/utils"
)

// ErrDatasetNotFound marks a missing evaluation input file. The condition is
// recoverable: the interactive surface stays usable.
var ErrDatasetNotFound = errors.New("evaluation dataset not found")

// EvalRow is one labelled example with its prediction appended.
type EvalRow struct {
	Texto        string
	TipoEsperado models.Category
	TipoPredicho models.Category
	Acierto      bool
}

// EvalReport summarises a bulk evaluation run.
type EvalReport struct {
	Rows      []EvalRow
	Precision float64
}

// ClassifyFunc resolves a category for one example text.
type ClassifyFunc func(ctx context.Context, text string) (models.Category, error)

// EvaluateDataset reads `texto,tipo_esperado` rows from path, classifies each
// one, appends the predicted category as a new column preserving the input
// row order, and returns accuracy. When resultsPath is non-empty the enriched
// rows are written there.
func EvaluateDataset(ctx context.Context, path string, classify ClassifyFunc, resultsPath string) (EvalReport, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return EvalReport{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
		}
		return EvalReport{}, utils.NewAppError("evaluate", "open dataset", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return EvalReport{}, utils.NewAppError("evaluate", "read dataset", err)
	}
	if len(records) == 0 {
		return EvalReport{}, nil
	}

	header := records[0]
	textIdx := columnIndex(header, "texto")
	expectedIdx := columnIndex(header, "tipo_esperado")
	if textIdx < 0 || expectedIdx < 0 {
		return EvalReport{}, utils.NewAppError("evaluate", "dataset needs texto and tipo_esperado columns", nil)
	}

	report := EvalReport{Rows: make([]EvalRow, 0, len(records)-1)}
	hits := 0
	for _, record := range records[1:] {
		text := ""
		if textIdx < len(record) {
			text = record[textIdx]
		}
		expected := ""
		if expectedIdx < len(record) {
			expected = strings.TrimSpace(record[expectedIdx])
		}

		predicted, err := classify(ctx, text)
		if err != nil {
			return EvalReport{}, fmt.Errorf("classify %q: %w", text, err)
		}

		row := EvalRow{
			Texto:        text,
			TipoEsperado: models.Category(expected),
			TipoPredicho: predicted,
			Acierto:      strings.EqualFold(expected, string(predicted)),
		}
		if row.Acierto {
			hits++
		}
		report.Rows = append(report.Rows, row)
	}

	if len(report.Rows) > 0 {
		report.Precision = float64(hits) / float64(len(report.Rows))
	}

	if resultsPath != "" {
		if err := writeResults(resultsPath, report.Rows); err != nil {
			return report, utils.NewAppError("evaluate", "write results", err)
		}
	}
	return report, nil
}

func writeResults(path string, rows []EvalRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"texto", "tipo_esperado", "tipo_predicho"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{row.Texto, string(row.TipoEsperado), string(row.TipoPredicho)}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
