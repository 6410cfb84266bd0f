package repo

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/cache"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
)

// ZeroShotClient calls a hosted zero-shot classification endpoint. The wire
// contract is the Hugging Face inference shape: inputs plus candidate labels
// and a hypothesis template, answered with parallel labels/scores arrays.
type ZeroShotClient struct {
	baseURL    string
	classifyPT string
	apiToken   string
	httpClient *http.Client
	cache      cache.Provider
	cacheTTL   time.Duration
}

// NewZeroShotClient constructs a client for the configured model endpoint.
// The cache provider may be nil; distributions are then never cached.
func NewZeroShotClient(baseURL, classifyPath, apiToken string, timeout time.Duration, cacheProvider cache.Provider, cacheTTL time.Duration) *ZeroShotClient {
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}
	return &ZeroShotClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		classifyPT: classifyPath,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cacheProvider,
		cacheTTL:   cacheTTL,
	}
}

type classifyRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters classifyParameters `json:"parameters"`
}

type classifyParameters struct {
	CandidateLabels    []string `json:"candidate_labels"`
	HypothesisTemplate string   `json:"hypothesis_template,omitempty"`
}

type classifyResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classify returns the model's label distribution for the text, sorted
// descending by score. A failure here is fatal to the caller's turn; no retry
// or fallback category is applied.
func (c *ZeroShotClient) Classify(ctx context.Context, text string, labels []string, hypothesisTemplate string) ([]models.LabelScore, error) {
	if c == nil {
		return nil, fmt.Errorf("zero-shot client not initialised")
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("zero-shot base URL not configured")
	}

	key := classifyCacheKey(text, labels)
	if cached, err := c.cache.Get(ctx, key); err == nil {
		var scores []models.LabelScore
		if err := json.Unmarshal(cached, &scores); err == nil && len(scores) > 0 {
			return scores, nil
		}
	}

	payload := classifyRequest{
		Inputs: text,
		Parameters: classifyParameters{
			CandidateLabels:    labels,
			HypothesisTemplate: hypothesisTemplate,
		},
	}

	var response classifyResponse
	if err := c.postJSON(ctx, c.classifyURL(), payload, &response); err != nil {
		return nil, fmt.Errorf("zero-shot request failed: %w", err)
	}
	if len(response.Labels) == 0 || len(response.Labels) != len(response.Scores) {
		return nil, fmt.Errorf("zero-shot returned malformed distribution (%d labels, %d scores)", len(response.Labels), len(response.Scores))
	}

	scores := make([]models.LabelScore, 0, len(response.Labels))
	for i, label := range response.Labels {
		scores = append(scores, models.LabelScore{Label: models.Category(label), Score: response.Scores[i]})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })

	if encoded, err := json.Marshal(scores); err == nil {
		_ = c.cache.Set(ctx, key, encoded, c.cacheTTL)
	}
	return scores, nil
}

func (c *ZeroShotClient) classifyURL() string {
	if c.baseURL == "" {
		return ""
	}
	cleaned := "/" + strings.TrimLeft(c.classifyPT, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + cleaned
	}
	u.Path = path.Join(u.Path, cleaned)
	return u.String()
}

func (c *ZeroShotClient) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	if endpoint == "" {
		return fmt.Errorf("empty endpoint")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model endpoint returned %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func classifyCacheKey(text string, labels []string) string {
	h := sha256.New()
	h.Write([]byte(strings.TrimSpace(text)))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(labels, "|")))
	return "zeroshot:" + hex.EncodeToString(h.Sum(nil))[:32]
}
