package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zoobzio/pipz"

	"github.com/shrimpsizemoose/trekker/logger"
)

const (
	DefaultModel          = "gemini-2.5-flash-lite"
	DefaultBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	DefaultMaxAttempts    = 3
	DefaultAttemptTimeout = 10 * time.Second
)

const classifyInstruction = `You are moderating reviews that students leave about university modules.
Decide whether the review below is appropriate for public display. Inappropriate means hate speech, harassment or personal attacks on named individuals, profanity, spam or gibberish. Honest negative opinions about the module or its teaching are appropriate.
Answer with exactly one word: yes if the review is appropriate, no if it is not.

Review:
%s`

type GeminiConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	MaxAttempts    int
	AttemptTimeout time.Duration
}

// classification is the value threaded through the moderation pipeline.
type classification struct {
	text    string
	verdict Verdict
}

// GeminiGateway asks Gemini for a strict yes/no call on review text. Each
// attempt is bounded by a timeout, a non-binary answer or transport failure
// consumes one attempt, and exhausting all attempts falls back to
// VerdictInconclusive.
type GeminiGateway struct {
	client   *http.Client
	baseURL  string
	model    string
	apiKey   string
	pipeline pipz.Chainable[classification]
}

func NewGeminiGateway(cfg GeminiConfig) (*GeminiGateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("moderation API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}

	g := &GeminiGateway{
		client:  &http.Client{Timeout: cfg.AttemptTimeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
	}

	classify := pipz.Apply("gemini-classify", g.classifyOnce)
	attempt := pipz.NewTimeout("attempt-timeout", classify, cfg.AttemptTimeout)
	retry := pipz.NewRetry("classify-retry", attempt, cfg.MaxAttempts)
	failClosed := pipz.Transform("fail-closed", func(_ context.Context, c classification) classification {
		c.verdict = VerdictInconclusive
		return c
	})
	g.pipeline = pipz.NewFallback("moderation", retry, failClosed)

	return g, nil
}

func (g *GeminiGateway) Classify(ctx context.Context, text string) (Verdict, error) {
	out, err := g.pipeline.Process(ctx, classification{text: text})
	if err != nil {
		return VerdictInconclusive, fmt.Errorf("moderation pipeline failed: %w", err)
	}
	return out.verdict, nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (r *geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func (g *GeminiGateway) classifyOnce(ctx context.Context, c classification) (classification, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: fmt.Sprintf(classifyInstruction, c.text)}}},
		},
	})
	if err != nil {
		return c, fmt.Errorf("failed to encode moderation request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return c, fmt.Errorf("failed to build moderation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return c, fmt.Errorf("moderation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return c, fmt.Errorf("moderation service returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return c, fmt.Errorf("failed to decode moderation response: %w", err)
	}

	verdict, err := parseAnswer(parsed.text())
	if err != nil {
		logger.Debug.Printf("Moderation service gave a non-binary answer: %v", err)
		return c, err
	}

	c.verdict = verdict
	return c, nil
}

// parseAnswer holds the gateway to a strict binary contract. Anything other
// than a plain yes or no is a failed attempt, not a guess.
func parseAnswer(answer string) (Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes":
		return VerdictApproved, nil
	case "no":
		return VerdictFlagged, nil
	}
	return "", fmt.Errorf("non-binary moderation answer: %q", answer)
}
