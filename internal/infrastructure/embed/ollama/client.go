package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/curve-comment-classifier/internal/infrastructure/resilience"
)

// Client calls an ollama-compatible embedding endpoint. The model is
// fixed per client so identical text always maps to the same vector.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

type Options struct {
	Timeout            time.Duration
	RequestsPerSecond  float64
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, model string) *Client {
	return NewWithOptions(baseURL, model, Options{})
}

func NewWithOptions(baseURL, model string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	var limiter *rate.Limiter
	if options.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(options.RequestsPerSecond), 1)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		executor:   options.ResilienceExecutor,
	}
}

// Embed returns one vector per input text, order-preserving. An empty
// input yields no call and no vectors.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	request := map[string]any{
		"model": c.model,
		"input": texts,
	}
	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/embed", request, &response, "embed")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.embed", call, classifyEmbedError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, err
	}

	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed result mismatch: %d vectors for %d texts", len(response.Embeddings), len(texts))
	}
	return response.Embeddings, nil
}
