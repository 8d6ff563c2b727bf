package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/curve-comment-classifier/internal/infrastructure/resilience"
)

// Client calls the build-time clustering service: a batch of vectors in,
// one cluster id per vector out, with -1 for points that joined no
// cluster. Only the initial build uses it; incremental runs never
// re-cluster.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Timeout            time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL string) *Client {
	return NewWithOptions(baseURL, Options{})
}

func NewWithOptions(baseURL string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

func (c *Client) Cluster(ctx context.Context, vectors [][]float32, distanceThreshold float64) ([]int, error) {
	if len(vectors) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(map[string]any{
		"vectors":            vectors,
		"distance_threshold": distanceThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal cluster request: %w", err)
	}

	var response struct {
		ClusterIDs []int `json:"cluster_ids"`
	}

	call := func(callCtx context.Context) error {
		req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/cluster", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create cluster request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("cluster request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return &statusError{status: resp.Status, statusCode: resp.StatusCode, body: strings.TrimSpace(string(raw))}
		}
		if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
			return fmt.Errorf("decode cluster response: %w", err)
		}
		return nil
	}

	if c.executor != nil {
		err = c.executor.Execute(ctx, "cluster.fit", call, classifyClusterError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, err
	}

	if len(response.ClusterIDs) != len(vectors) {
		return nil, fmt.Errorf("cluster result mismatch: %d ids for %d vectors", len(response.ClusterIDs), len(vectors))
	}
	return response.ClusterIDs, nil
}

type statusError struct {
	status     string
	statusCode int
	body       string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("cluster status: %s", e.status)
	}
	return fmt.Sprintf("cluster status: %s: %s", e.status, e.body)
}

func classifyClusterError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var statusErr *statusError
	if errors.As(err, &statusErr) {
		switch statusErr.statusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
