package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Remote sends the submission to an external scoring endpoint. The service
// receives the escrow attributes and returns a verdict in the same shape as
// ScoreResult.
type Remote struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewRemote(endpoint, apiKey string) *Remote {
	return &Remote{
		endpoint: strings.TrimSpace(endpoint),
		apiKey:   strings.TrimSpace(apiKey),
		client:   &http.Client{},
	}
}

var ErrRemoteNoAPIKey = fmt.Errorf("oracle: api key not configured")

func (r *Remote) Score(ctx context.Context, req ScoreRequest) (ScoreResult, error) {
	if r.apiKey == "" {
		return ScoreResult{}, ErrRemoteNoAPIKey
	}
	if r.endpoint == "" {
		return ScoreResult{}, fmt.Errorf("oracle: endpoint not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	payload, _ := json.Marshal(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return ScoreResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return ScoreResult{}, fmt.Errorf("oracle: score request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ScoreResult{}, fmt.Errorf("oracle: score request: status %d", resp.StatusCode)
	}

	var out ScoreResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ScoreResult{}, fmt.Errorf("oracle: parse verdict: %w", err)
	}
	if out.Score < 0 {
		out.Score = 0
	}
	if out.Score > 100 {
		out.Score = 100
	}
	return out, nil
}
