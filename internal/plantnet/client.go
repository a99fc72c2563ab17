package plantnet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"time"

	"github.com/AgboganEmmanuel/planty/internal/telemetry"
)

// ErrMissingAPIKey is returned when the client is constructed without credentials
var ErrMissingAPIKey = errors.New("plantnet API key is not configured")

// Client calls the PlantNet species-identification API
type Client struct {
	endpoint string
	project  string
	apiKey   string
	client   *http.Client
}

// NewClient creates a PlantNet client. endpoint and project default to the
// public identify endpoint and the "all" project.
func NewClient(endpoint, project, apiKey string) *Client {
	if endpoint == "" {
		endpoint = "https://my-api.plantnet.org/v2/identify"
	}
	if project == "" {
		project = "all"
	}
	return &Client{
		endpoint: endpoint,
		project:  project,
		apiKey:   apiKey,
		client: telemetry.NewInstrumentedHTTPClient(telemetry.HTTPClientConfig{
			ServiceName: "plantnet",
			Timeout:     30 * time.Second,
		}),
	}
}

// Result is a normalized identification candidate
type Result struct {
	ScientificName string   `json:"scientific_name"`
	Score          float64  `json:"score"` // confidence, 0..1
	CommonNames    []string `json:"common_names"`
	Family         string   `json:"family"`
	Genus          string   `json:"genus"`
	ImageURLs      []string `json:"image_urls"`
}

// apiResponse mirrors the PlantNet wire format
type apiResponse struct {
	Results []struct {
		Score   float64 `json:"score"`
		Species struct {
			ScientificName string   `json:"scientificName"`
			CommonNames    []string `json:"commonNames"`
			Family         struct {
				ScientificName string `json:"scientificName"`
			} `json:"family"`
			Genus struct {
				ScientificName string `json:"scientificName"`
			} `json:"genus"`
		} `json:"species"`
		Images []struct {
			URL struct {
				M string `json:"m"`
			} `json:"url"`
		} `json:"images"`
	} `json:"results"`
}

// Identify submits one image and returns at most the single top-scoring
// candidate. Zero-confidence candidates are discarded; an empty slice is a
// valid "no match" outcome. The call is not retried: any network, HTTP or
// decode failure aborts the identification with no partial result.
func (c *Client) Identify(ctx context.Context, imageName string, image io.Reader) ([]Result, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("images", imageName)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	url := fmt.Sprintf("%s/%s?api-key=%s", c.endpoint, c.project, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("plantnet API error: status %d: %s", resp.StatusCode, string(errBody))
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Score <= 0 {
			continue
		}
		images := make([]string, 0, len(r.Images))
		for _, img := range r.Images {
			if img.URL.M != "" {
				images = append(images, img.URL.M)
			}
		}
		results = append(results, Result{
			ScientificName: orDefault(r.Species.ScientificName, "Unknown Species"),
			Score:          r.Score,
			CommonNames:    r.Species.CommonNames,
			Family:         orDefault(r.Species.Family.ScientificName, "Unknown Family"),
			Genus:          orDefault(r.Species.Genus.ScientificName, "Unknown Genus"),
			ImageURLs:      images,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	// Only the top candidate is kept
	if len(results) > 1 {
		results = results[:1]
	}

	return results, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
