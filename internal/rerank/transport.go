// Package rerank implements the optional Cross-Encoder Reranker: a
// pair-scoring transport, sentence-aligned sliding-window scoring for
// passages that exceed the model's context length, and the blend/sort/
// truncate pipeline.
//
// Grounded on the teacher's internal/ollama/client.go HTTP POST/JSON-
// decode shape, generalized from chat messages to a (query, passage)
// pair-scoring request/response.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// PairScorer scores a single (query, passage) pair, returning a raw model
// score (not yet normalized to [0,1] — callers apply the sigmoid).
type PairScorer interface {
	ScorePair(ctx context.Context, query, passage string) (float64, error)
}

// remoteTransport calls a cross-encoder model server's pair-scoring
// endpoint over HTTP, the same shape as the teacher's Ollama chat client.
type remoteTransport struct {
	host   string
	model  string
	client *http.Client
}

// NewRemoteTransport builds a PairScorer backed by a remote model server.
func NewRemoteTransport(host, model string, timeout time.Duration) PairScorer {
	return &remoteTransport{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

type scoreRequest struct {
	Model string `json:"model"`
	Query string `json:"query"`
	Text  string `json:"text"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
	Error string  `json:"error"`
}

func (t *remoteTransport) ScorePair(ctx context.Context, query, passage string) (float64, error) {
	if t.host == "" {
		return 0, fmt.Errorf("reranker host must be configured")
	}

	body, err := json.Marshal(scoreRequest{Model: t.model, Query: query, Text: passage})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.host+"/api/rerank", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return 0, fmt.Errorf("reranker API error: %s", string(data))
		}
		return 0, fmt.Errorf("reranker API returned status %s", resp.Status)
	}

	var parsed scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != "" {
		return 0, fmt.Errorf("reranker error: %s", parsed.Error)
	}

	return parsed.Score, nil
}
