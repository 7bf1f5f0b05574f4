package embedding

import (
	"aquanqa/aquanqa/utils/logging"
	"context"
	"errors"
	"fmt"
	"strings"

	httputils "aquanqa/aquanqa/utils/http"

	"go.uber.org/zap"
)

// ErrModelUnavailable signals that the embedding backend is unconfigured
// or failed to encode. Callers degrade to the lexical cascade, they do
// not fail the query.
var ErrModelUnavailable = errors.New("embedding model unavailable")

// Client talks to an OpenAI-compatible /v1/embeddings endpoint. One
// instance is constructed at process start and shared; the backend holds
// the model weights, so encoding is stateless on our side.
type Client struct {
	endpoint string
	apiKey   string
	model    string
}

func NewClient(endpoint, apiKey, model string) *Client {
	return &Client{endpoint: strings.TrimRight(endpoint, "/"), apiKey: apiKey, model: model}
}

// Available reports whether a backend is configured at all.
func (c *Client) Available() bool {
	return c != nil && c.endpoint != ""
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Encode returns the vector for a single text.
func (c *Client) Encode(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EncodeBatch encodes texts in one request, the efficient path for the
// batch regeneration command.
func (c *Client) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if !c.Available() {
		return nil, ErrModelUnavailable
	}
	defer logging.LogDuration(ctx, "embedding_encode")()

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}
	var resp embeddingResponse
	err := httputils.PostJSON(ctx, c.endpoint+"/v1/embeddings", embeddingRequest{Model: c.model, Input: texts}, &resp, headers)
	if err != nil {
		logging.ErrorLogger.Error("embedding backend error", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", ErrModelUnavailable, len(resp.Data), len(texts))
	}
	out := make([][]float32, len(resp.Data))
	for i := range resp.Data {
		out[i] = resp.Data[i].Embedding
	}
	return out, nil
}
