package store

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/utils"
)

// feedbackHeader is the stable column order of the feedback store.
var feedbackHeader = []string{
	"timestamp",
	"question_id",
	"texto_usuario",
	"tipo_detectado",
	"prioridad",
	"confianza_top",
	"respuesta_resumen",
	"feedback",
}

const summaryMaxRunes = 250

// FeedbackLedger is the append-only feedback store with duplicate-vote
// protection. All mutations serialize through one mutex held across the
// existence check and the append, so check-then-append is atomic with respect
// to every other writer in the process.
type FeedbackLedger struct {
	mu   sync.Mutex
	path string
}

// NewFeedbackLedger creates a ledger over the CSV file at path. The file may
// be absent; it is created with a header on first write.
func NewFeedbackLedger(path string) *FeedbackLedger {
	return &FeedbackLedger{path: path}
}

// ComputeQuestionID derives the stable identifier for a logical question:
// hex sha256 over the UTF-8 bytes of the whitespace-trimmed text, truncated
// to 16 characters. Case is preserved, unlike the matchers. The digest is
// content-based so it survives process restarts.
func ComputeQuestionID(userText string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(userText)))
	return hex.EncodeToString(sum[:])[:16]
}

// AlreadyVoted reports whether a row with the identifier exists. A missing,
// empty or structurally incomplete store means "no prior vote", never an
// error.
func (l *FeedbackLedger) AlreadyVoted(questionID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.alreadyVotedLocked(questionID)
}

func (l *FeedbackLedger) alreadyVotedLocked(questionID string) (bool, error) {
	rows, header, err := readCSVFile(l.path)
	if err != nil {
		return false, err
	}
	idx := columnIndex(header, "question_id")
	if idx < 0 {
		// Legacy store without the identifier column: dedup cannot apply.
		return false, nil
	}
	for _, row := range rows {
		if idx < len(row) && strings.TrimSpace(row[idx]) == questionID {
			return true, nil
		}
	}
	return false, nil
}

// RecordVote appends one vote for the text's question id. It returns false
// when a vote already exists; the first vote always wins and is never
// overwritten.
func (l *FeedbackLedger) RecordVote(userText, tag string, priority models.Priority, topScore float64, responseText string, vote models.Vote) (bool, error) {
	normalized := models.Vote(strings.ToUpper(strings.TrimSpace(string(vote))))
	if normalized != models.VoteYes && normalized != models.VoteNo {
		return false, utils.NewAppError("feedback.record", fmt.Sprintf("invalid vote %q", vote), nil)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	questionID := ComputeQuestionID(userText)
	voted, err := l.alreadyVotedLocked(questionID)
	if err != nil {
		return false, err
	}
	if voted {
		return false, nil
	}

	row := []string{
		time.Now().Format("2006-01-02T15:04:05"),
		questionID,
		userText,
		tag,
		string(priority),
		strconv.FormatFloat(round4(topScore), 'f', -1, 64),
		utils.Summarize(responseText, summaryMaxRunes),
		string(normalized),
	}
	if err := appendCSVRow(l.path, feedbackHeader, row); err != nil {
		return false, utils.NewAppError("feedback.record", "append vote", err)
	}
	return true, nil
}

// ReadAll returns every persisted feedback record. Rows with missing columns
// are padded rather than rejected so older files keep working.
func (l *FeedbackLedger) ReadAll() ([]models.FeedbackRecord, error) {
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

	tsIdx, qidIdx := col("timestamp"), col("question_id")
	textIdx, tagIdx := col("texto_usuario"), col("tipo_detectado")
	prioIdx, confIdx := col("prioridad"), col("confianza_top")
	sumIdx, voteIdx := col("respuesta_resumen"), col("feedback")

	records := make([]models.FeedbackRecord, 0, len(rows))
	for _, row := range rows {
		rec := models.FeedbackRecord{
			QuestionID: get(row, qidIdx),
			UserText:   get(row, textIdx),
			Tag:        get(row, tagIdx),
			Priority:   models.Priority(get(row, prioIdx)),
			Summary:    get(row, sumIdx),
			Vote:       models.Vote(strings.ToUpper(get(row, voteIdx))),
		}
		if ts, err := time.Parse("2006-01-02T15:04:05", get(row, tsIdx)); err == nil {
			rec.Timestamp = ts
		}
		if score, err := strconv.ParseFloat(get(row, confIdx), 64); err == nil {
			rec.TopScore = score
		}
		records = append(records, rec)
	}
	return records, nil
}

func round4(v float64) float64 {
	return float64(int64(v*10000+0.5)) / 10000
}

// readCSVFile reads all data rows plus the header. A missing or zero-length
// file yields no rows and no error; the stores self-heal on next write.
func readCSVFile(path string) (rows [][]string, header []string, err error) {
	info, statErr := os.Stat(path)
	if statErr != nil || info.Size() == 0 {
		return nil, nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err = reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

// appendCSVRow appends one row, writing the header first when the file is
// missing or empty.
func appendCSVRow(path string, header, row []string) error {
	info, statErr := os.Stat(path)
	needHeader := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}
