package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/services"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/store"
)

// Handler exposes the triage service over a JSON API.
type Handler struct {
	logger  *slog.Logger
	service *services.TriageService
}

// NewHandler builds the API handler around the service facade.
func NewHandler(logger *slog.Logger, service *services.TriageService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// Routes returns the mux with every endpoint registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/v1/triage", h.handleTriage)
	mux.HandleFunc("/api/v1/feedback", h.handleFeedback)
	mux.HandleFunc("/api/v1/feedback/stats", h.handleFeedbackStats)
	mux.HandleFunc("/api/v1/evaluate", h.handleEvaluate)
	mux.HandleFunc("/api/v1/insights", h.handleInsights)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type triageRequest struct {
	Texto string `json:"texto"`
}

type scoreEntry struct {
	Etiqueta string  `json:"etiqueta"`
	Score    float64 `json:"score"`
}

type triageResponse struct {
	ID          string       `json:"id"`
	Tipo        string       `json:"tipo"`
	Intent      string       `json:"intent,omitempty"`
	Categoria   string       `json:"categoria,omitempty"`
	Prioridad   string       `json:"prioridad"`
	Confianza   float64      `json:"confianza"`
	Scores      []scoreEntry `json:"scores,omitempty"`
	Respuesta   string       `json:"respuesta"`
	Seguimiento []string     `json:"seguimiento,omitempty"`
	QuestionID  string       `json:"question_id"`
}

func (h *Handler) handleTriage(w http.ResponseWriter, r *http.Request) {
	if !enforcePost(w, r) {
		return
	}
	var req triageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Texto) == "" {
		writeError(w, http.StatusBadRequest, "texto is required")
		return
	}

	result, err := h.service.Triage(r.Context(), req.Texto)
	if err != nil {
		h.logger.Error("triage failed", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "classification unavailable: "+err.Error())
		return
	}

	resp := triageResponse{
		ID:          result.ID,
		Tipo:        result.Kind,
		Intent:      result.Intent,
		Categoria:   string(result.Category),
		Prioridad:   string(result.Priority),
		Confianza:   result.TopScore,
		Respuesta:   result.Response,
		Seguimiento: result.FollowUps,
		QuestionID:  result.QuestionID,
	}
	for _, s := range result.Scores {
		resp.Scores = append(resp.Scores, scoreEntry{Etiqueta: string(s.Label), Score: s.Score})
	}
	writeJSON(w, http.StatusOK, resp)
}

type feedbackRequest struct {
	Texto         string  `json:"texto"`
	TipoDetectado string  `json:"tipo_detectado"`
	Prioridad     string  `json:"prioridad"`
	ConfianzaTop  float64 `json:"confianza_top"`
	Respuesta     string  `json:"respuesta"`
	Voto          string  `json:"voto"`
}

type feedbackResponse struct {
	Guardado   bool   `json:"guardado"`
	Duplicado  bool   `json:"duplicado"`
	QuestionID string `json:"question_id"`
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if !enforcePost(w, r) {
		return
	}
	var req feedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Texto) == "" {
		writeError(w, http.StatusBadRequest, "texto is required")
		return
	}

	saved, duplicate, questionID, err := h.service.RecordFeedback(services.FeedbackSubmission{
		UserText:     req.Texto,
		Tag:          req.TipoDetectado,
		Priority:     models.Priority(req.Prioridad),
		TopScore:     req.ConfianzaTop,
		ResponseText: req.Respuesta,
		Vote:         models.Vote(req.Voto),
	})
	if err != nil {
		h.logger.Error("record feedback failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, feedbackResponse{Guardado: saved, Duplicado: duplicate, QuestionID: questionID})
}

func (h *Handler) handleFeedbackStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stats, err := h.service.FeedbackStats()
	if err != nil {
		h.logger.Error("feedback stats failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":         stats.Total,
		"si":            stats.Yes,
		"no":            stats.No,
		"porcentaje_si": stats.PercentYes,
	})
}

type evaluateRequest struct {
	Ruta string `json:"ruta"`
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if !enforcePost(w, r) {
		return
	}
	var req evaluateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.service.Evaluate(r.Context(), req.Ruta)
	if err != nil {
		if errors.Is(err, store.ErrDatasetNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("evaluation failed", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	rows := make([]map[string]any, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, map[string]any{
			"texto":         row.Texto,
			"tipo_esperado": string(row.TipoEsperado),
			"tipo_predicho": string(row.TipoPredicho),
			"acierto":       row.Acierto,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"precision":  report.Precision,
		"filas":      len(report.Rows),
		"resultados": rows,
	})
}

func (h *Handler) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	summaries, err := h.service.Insights()
	if err != nil {
		h.logger.Error("insights failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]map[string]any, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, map[string]any{
			"tipo":            s.Tag,
			"total":           s.Count,
			"prevalencia":     s.Prevalence,
			"prioridad_alta":  s.HighPriority,
			"confianza_media": s.AvgConfidence,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categorias": out})
}

func enforcePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
