package setup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ai-stack/stackctl/internal/initializer"
)

// OllamaClient pulls model artifacts through the Ollama HTTP API.
type OllamaClient struct {
	// BaseURL is the Ollama server base URL, e.g. http://ollama:11434.
	BaseURL string

	client *http.Client
	logger *slog.Logger
}

// NewOllamaClient constructs a client for the given base URL. Pulls stream
// for as long as the download takes, so the HTTP client carries no timeout;
// cancellation comes from the request context.
func NewOllamaClient(logger *slog.Logger, baseURL string) *OllamaClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.Logger = nil
	rc.HTTPClient.Timeout = 0
	return &OllamaClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  rc.StandardClient(),
		logger:  logger,
	}
}

// pullStatus is one line of the streaming pull response.
type pullStatus struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Pull downloads one model, consuming the streamed status lines. The server
// reports errors in-band, so the stream is scanned rather than discarded.
func (c *OllamaClient) Pull(ctx context.Context, model string) error {
	payload, err := json.Marshal(map[string]any{"name": model, "stream": true})
	if err != nil {
		return fmt.Errorf("encode pull request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/pull", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build pull request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("pull %s: %w", model, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("pull %s: status %d: %s", model, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	dec := json.NewDecoder(resp.Body)
	lastStatus := ""
	for {
		var line pullStatus
		if err := dec.Decode(&line); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("pull %s: decode status stream: %w", model, err)
		}
		if line.Error != "" {
			return fmt.Errorf("pull %s: %s", model, line.Error)
		}
		if line.Status != "" && line.Status != lastStatus {
			c.logger.Debug("model pull progress", "model", model, "status", line.Status)
			lastStatus = line.Status
		}
	}

	if lastStatus != "success" {
		return fmt.Errorf("pull %s: stream ended without success (last status %q)", model, lastStatus)
	}
	return nil
}

// PullUnits wraps each model name into a batch unit for the batch controller.
func (c *OllamaClient) PullUnits(models []string) []initializer.Unit {
	units := make([]initializer.Unit, 0, len(models))
	for _, model := range models {
		model := model
		units = append(units, initializer.Unit{
			Name: model,
			Run: func(ctx context.Context) error {
				return c.Pull(ctx, model)
			},
		})
	}
	return units
}
