package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
)

// Mock of the hosted zero-shot endpoint for local development. Returns a
// deterministic distribution biased by crude keyword hits so the engine's
// confidence handling can be exercised without a model.

type classifyRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		CandidateLabels    []string `json:"candidate_labels"`
		HypothesisTemplate string   `json:"hypothesis_template"`
	} `json:"parameters"`
}

type classifyResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

var hints = map[string][]string{
	"problema de acceso":      {"entrar", "acceso", "contraseña", "login", "blackboard", "campus"},
	"cuenta bloqueada":        {"bloquead"},
	"problema técnico":        {"funciona", "error", "falla", "lento", "caído"},
	"consulta administrativa": {"horario", "plazo", "documento"},
	"error de matrícula":      {"asignatura", "créditos"},
}

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/models/facebook/bart-large-mnli", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		labels := req.Parameters.CandidateLabels
		if len(labels) == 0 {
			http.Error(w, "candidate_labels required", http.StatusBadRequest)
			return
		}

		lowered := strings.ToLower(req.Inputs)
		weights := make([]float64, len(labels))
		total := 0.0
		for i, label := range labels {
			w := 1.0
			for _, hint := range hints[label] {
				if strings.Contains(lowered, hint) {
					w += 4.0
				}
			}
			weights[i] = w
			total += w
		}

		resp := classifyResponse{Sequence: req.Inputs}
		order := make([]int, len(labels))
		for i := range order {
			order[i] = i
		}
		// Selection sort keeps the mock dependency free.
		for i := 0; i < len(order); i++ {
			best := i
			for j := i + 1; j < len(order); j++ {
				if weights[order[j]] > weights[order[best]] {
					best = j
				}
			}
			order[i], order[best] = order[best], order[i]
		}
		for _, idx := range order {
			resp.Labels = append(resp.Labels, labels[idx])
			resp.Scores = append(resp.Scores, weights[idx]/total)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	logger := log.New(log.Writer(), "zeroshot-mock ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:         ":8090",
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Println("listening on :8090")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}
