package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ModelRequest is the wire body POSTed to the external ML service (§6).
type ModelRequest struct {
	Features     []float64 `json:"features"`
	FeatureNames []string  `json:"feature_names"`
}

// ModelResponse is the expected wire response.
type ModelResponse struct {
	PredictedValue float64 `json:"predicted_value"`
	Confidence     float64 `json:"confidence"`
}

// Client calls the optional external ML service over HTTP, with a bounded
// timeout — grounded on §5's "the external ML call must have a bounded
// timeout (recommended <=250ms) after which a fallback is returned". No
// dedicated HTTP client library is wired here (see DESIGN.md): this is the
// one spot in the pack where a single fire-and-fallback POST calls for
// nothing more than stdlib net/http plus context.
type Client struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewClient builds a Client. A zero Timeout defaults to 250ms per §5's
// recommendation.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 250 * time.Millisecond
	}
	return &Client{BaseURL: baseURL, Timeout: timeout, HTTPClient: &http.Client{}}
}

// Predict POSTs the feature vector and parses the response. Any failure —
// timeout, network error, non-2xx status, malformed body — is returned as
// an error; the caller (Service.Enhance) is responsible for falling back to
// the formula prediction on any error, never propagating it to the
// end-user result.
func (c *Client) Predict(ctx context.Context, req ModelRequest) (ModelResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return ModelResponse{}, fmt.Errorf("ml: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return ModelResponse{}, fmt.Errorf("ml: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return ModelResponse{}, fmt.Errorf("ml: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ModelResponse{}, fmt.Errorf("ml: non-2xx response: %d", resp.StatusCode)
	}

	var out ModelResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ModelResponse{}, fmt.Errorf("ml: decoding response: %w", err)
	}
	return out, nil
}
