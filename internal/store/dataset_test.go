package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
)

func writeDataset(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset_validacion.csv")
	if err := os.WriteFile(path, []byte(rows), 0o644); err != nil {
		t.Fatalf("seed dataset: %v", err)
	}
	return path
}

func keywordClassifier(ctx context.Context, text string) (models.Category, error) {
	switch {
	case strings.Contains(text, "matrícula"):
		return models.CategoryEnrollment, nil
	case strings.Contains(text, "contraseña"):
		return models.CategoryAccess, nil
	default:
		return models.CategoryOther, nil
	}
}

func TestEvaluateDataset(t *testing.T) {
	path := writeDataset(t, strings.Join([]string{
		"texto,tipo_esperado",
		"no recuerdo la contraseña,problema de acceso",
		"error al pagar la matrícula,error de matrícula",
		"la impresora echa humo,problema técnico",
		"",
	}, "\n"))
	resultsPath := filepath.Join(t.TempDir(), "resultados.csv")

	report, err := EvaluateDataset(context.Background(), path, keywordClassifier, resultsPath)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(report.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(report.Rows))
	}

	// Input order is preserved.
	if report.Rows[0].Texto != "no recuerdo la contraseña" {
		t.Fatalf("row order not preserved: %q", report.Rows[0].Texto)
	}
	if !report.Rows[0].Acierto || !report.Rows[1].Acierto {
		t.Fatalf("first two rows should be hits: %+v", report.Rows[:2])
	}
	if report.Rows[2].Acierto {
		t.Fatalf("third row should be a miss, predicted %q", report.Rows[2].TipoPredicho)
	}

	want := 2.0 / 3.0
	if report.Precision < want-1e-9 || report.Precision > want+1e-9 {
		t.Fatalf("expected accuracy 2/3, got %v", report.Precision)
	}

	raw, err := os.ReadFile(resultsPath)
	if err != nil {
		t.Fatalf("results file not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "texto,tipo_esperado,tipo_predicho" {
		t.Fatalf("unexpected results header: %q", lines[0])
	}
	if !strings.HasSuffix(lines[3], "otro tipo de incidencia") {
		t.Fatalf("miss row must carry the prediction: %q", lines[3])
	}
}

func TestEvaluateDatasetMissingFile(t *testing.T) {
	_, err := EvaluateDataset(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), keywordClassifier, "")
	if !errors.Is(err, ErrDatasetNotFound) {
		t.Fatalf("expected ErrDatasetNotFound, got %v", err)
	}
}

func TestEvaluateDatasetMissingColumns(t *testing.T) {
	path := writeDataset(t, "texto,etiqueta\nhola,algo\n")
	if _, err := EvaluateDataset(context.Background(), path, keywordClassifier, ""); err == nil {
		t.Fatalf("dataset without tipo_esperado must be rejected")
	}
}

func TestEvaluateDatasetClassifierFailure(t *testing.T) {
	path := writeDataset(t, "texto,tipo_esperado\nhola,otro tipo de incidencia\n")
	failing := func(ctx context.Context, text string) (models.Category, error) {
		return "", errors.New("model unavailable")
	}
	if _, err := EvaluateDataset(context.Background(), path, failing, ""); err == nil {
		t.Fatalf("classifier failure must abort the run")
	}
}
