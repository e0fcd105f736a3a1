package advice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	errorvalues "github.com/itza2k/kore/internal/error_values"
	"github.com/itza2k/kore/pkg/entity"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel   = "gemini-2.0-flash"
)

// Client talks to the Gemini generateContent endpoint. One attempt per
// query, no retry policy.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		model:      defaultModel,
	}
}

// NewWithOptions is used by tests and non-default deployments.
func NewWithOptions(httpClient *http.Client, baseURL, model string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		model:      model,
	}
}

// GenerateAdvice sends the prompt and returns the first candidate text.
// Transport failures, non-2xx statuses and responses without text all
// surface as errors for the caller to collapse into one user-facing message.
func (c *Client) GenerateAdvice(ctx context.Context, prompt, apiKey string) (string, error) {
	if apiKey == "" {
		return "", errorvalues.ErrMissingAPIKey
	}
	reqBody := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
	}
	payload, err := sonic.ConfigDefault.Marshal(&reqBody)
	if err != nil {
		return "", errors.New("encoding advice request error: " + err.Error())
	}
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", errors.New("building advice request error: " + err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errorvalues.ErrAdviceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API request failed with status %d", errorvalues.ErrAdviceUnavailable, resp.StatusCode)
	}

	var parsed generateResponse
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errors.New("decoding advice response error: " + err.Error())
	}
	for _, cand := range parsed.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
	}
	return "", errorvalues.ErrEmptyAdvice
}

// BuildPrompt assembles the context-aware prompt from the user's current
// data, the same way the desktop client words it.
func BuildPrompt(habits []entity.Habit, goals []entity.Goal, totalPoints int, query string) string {
	habitNames := make([]string, 0, len(habits))
	for _, h := range habits {
		habitNames = append(habitNames, h.Name)
	}
	goalNames := make([]string, 0, len(goals))
	for _, g := range goals {
		goalNames = append(goalNames, g.Name)
	}
	var b strings.Builder
	b.WriteString("As an AI assistant for a productivity and sustainability app, help the user with their query.\n\n")
	b.WriteString("User's habits: " + strings.Join(habitNames, ", ") + "\n")
	b.WriteString("User's goals: " + strings.Join(goalNames, ", ") + "\n")
	fmt.Fprintf(&b, "Total points: %d\n\n", totalPoints)
	b.WriteString("User query: " + query)
	return b.String()
}
