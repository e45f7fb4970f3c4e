package facts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/plumdale/spinwrap/internal/facts"
)

const retryMax = 2

// HTTPGenerator asks a chat-completion API for one short fact about a track.
// An empty API URL disables the generator; callers then post a plain
// now-playing line instead.
type HTTPGenerator struct {
	apiURL   string
	apiKey   string
	model    string
	maxWords int
	client   *retryablehttp.Client
}

func NewHTTPGenerator(apiURL, apiKey, model string, maxWords int) facts.Generator {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.Logger = nil
	return &HTTPGenerator{
		apiURL:   apiURL,
		apiKey:   apiKey,
		model:    model,
		maxWords: maxWords,
		client:   client,
	}
}

func (g *HTTPGenerator) Enabled() bool {
	return g.apiURL != ""
}

type completionRequest struct {
	Model    string              `json:"model"`
	Messages []completionMessage `json:"messages"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
}

func (g *HTTPGenerator) TrackFact(ctx context.Context, track, artist string) (string, error) {
	prompt := fmt.Sprintf(
		"Share one fun fact about the song %q by %s in at most %d words. Reply with the fact only.",
		track, artist, g.maxWords)
	body, err := json.Marshal(completionRequest{
		Model:    g.model,
		Messages: []completionMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("facts api returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("facts api returned malformed body: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("facts api returned no choices")
	}
	fact := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if fact == "" {
		return "", fmt.Errorf("facts api returned an empty fact")
	}
	return fact, nil
}
