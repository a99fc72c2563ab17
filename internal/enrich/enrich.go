package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AgboganEmmanuel/planty/internal/logger"
	"github.com/AgboganEmmanuel/planty/internal/metrics"
	"github.com/AgboganEmmanuel/planty/internal/telemetry"
	"github.com/AgboganEmmanuel/planty/internal/util"
	"go.uber.org/zap"
)

// Models attempted in priority order
var defaultModels = []string{
	"google/flan-t5-base",
	"facebook/bart-large-cnn",
	"google/pegasus-xsum",
}

const (
	attemptsPerModel = 3
	minUsefulLength  = 50
	loadingSignal    = "Model is currently loading"
)

// statusError is a non-2xx inference response that is not the loading
// signal. Unlike a transport error it means the model itself rejected the
// request, so the caller moves on instead of retrying.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("inference API error: status %d: %s", e.status, e.body)
}

// Client fetches generated botanical descriptions from the Hugging Face
// inference API. Describe never fails: callers always get either a
// model-derived description or the canned fallback sentence.
type Client struct {
	endpoint string
	token    string
	models   []string
	client   *http.Client

	// sleep is replaceable in tests
	sleep func(ctx context.Context, d time.Duration)
}

// NewClient creates an enrichment client. endpoint defaults to the public
// inference host.
func NewClient(endpoint, token string) *Client {
	if endpoint == "" {
		endpoint = "https://api-inference.huggingface.co"
	}
	return &Client{
		endpoint: endpoint,
		token:    token,
		models:   defaultModels,
		client: telemetry.NewInstrumentedHTTPClient(telemetry.HTTPClientConfig{
			ServiceName: "huggingface",
			Timeout:     60 * time.Second,
		}),
		sleep: sleepContext,
	}
}

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
	DoSample     bool    `json:"do_sample"`
}

// Describe returns a botanical description for the plant, attempting each
// model up to three times. A response flagged as "model loading" waits
// 5s × attempt and retries the same model; transport errors retry the same
// model too, and only a non-loading API error advances to the next model.
// Exhaustion yields the fallback sentence.
func (c *Client) Describe(ctx context.Context, plantName, species string) string {
	name := util.SanitizeName(plantName)
	sci := util.SanitizeName(species)

	if c.token == "" {
		logger.Log.Warn("Hugging Face token is not configured, using fallback description")
		metrics.Get().EnrichmentFallbackTotal.WithLabelValues("missing_token").Inc()
		return fallback(name, sci)
	}

	prompt := fmt.Sprintf(
		"Provide a concise botanical description of the plant %s (scientific name: %s). "+
			"Include its origin, key characteristics, habitat, and interesting facts. "+
			"Keep the description informative yet brief, under 200 words.",
		name, sci,
	)

	for _, model := range c.models {
		for attempt := 1; attempt <= attemptsPerModel; attempt++ {
			text, loading, err := c.generate(ctx, model, prompt)
			if err != nil {
				logger.Log.Warn("Enrichment model failed",
					zap.String("model", model),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
				var se *statusError
				if errors.As(err, &se) {
					metrics.Get().EnrichmentAttemptsTotal.WithLabelValues(model, "failed").Inc()
					break // next model
				}
				metrics.Get().EnrichmentAttemptsTotal.WithLabelValues(model, "transport_error").Inc()
				continue // same model
			}
			if loading {
				logger.Log.Warn("Enrichment model is loading, waiting",
					zap.String("model", model),
					zap.Int("attempt", attempt),
				)
				metrics.Get().EnrichmentAttemptsTotal.WithLabelValues(model, "loading").Inc()
				c.sleep(ctx, time.Duration(attempt)*5*time.Second)
				continue // same model
			}
			if len(text) > minUsefulLength {
				metrics.Get().EnrichmentAttemptsTotal.WithLabelValues(model, "success").Inc()
				return text
			}
			metrics.Get().EnrichmentAttemptsTotal.WithLabelValues(model, "short").Inc()
		}
	}

	metrics.Get().EnrichmentFallbackTotal.WithLabelValues("exhausted").Inc()
	return fallback(name, sci)
}

// generate issues one inference call. loading is true when the model reported
// it is still warming up and the same model should be retried.
func (c *Client) generate(ctx context.Context, model, prompt string) (text string, loading bool, err error) {
	payload, err := json.Marshal(generateRequest{
		Inputs: prompt,
		Parameters: generateParameters{
			MaxNewTokens: 200,
			Temperature:  0.7,
			DoSample:     true,
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.endpoint, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", false, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if strings.Contains(string(body), loadingSignal) {
			return "", true, nil
		}
		return "", false, &statusError{status: resp.StatusCode, body: string(body)}
	}

	return extractText(body), false, nil
}

// extractText handles the inference API's response shapes: an array of
// {generated_text|summary_text} objects, an array of strings, or a raw string.
func extractText(body []byte) string {
	var objects []struct {
		GeneratedText string `json:"generated_text"`
		SummaryText   string `json:"summary_text"`
	}
	if err := json.Unmarshal(body, &objects); err == nil && len(objects) > 0 {
		if objects[0].GeneratedText != "" {
			return objects[0].GeneratedText
		}
		if objects[0].SummaryText != "" {
			return objects[0].SummaryText
		}
	}

	var strs []string
	if err := json.Unmarshal(body, &strs); err == nil && len(strs) > 0 {
		return strs[0]
	}

	var raw string
	if err := json.Unmarshal(body, &raw); err == nil {
		return raw
	}

	return ""
}

func fallback(plantName, species string) string {
	return fmt.Sprintf("No detailed information available for %s (%s). This plant is unique and fascinating!",
		plantName, species)
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
