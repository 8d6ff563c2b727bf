package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClusterSendsVectorsAndThreshold(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cluster" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"cluster_ids":[0,0,-1]}`))
	}))
	defer server.Close()

	client := New(server.URL)
	ids, err := client.Cluster(context.Background(), [][]float32{{1, 0}, {0.9, 0.1}, {0, 1}}, 1.0)
	if err != nil {
		t.Fatalf("Cluster() error = %v", err)
	}
	if len(ids) != 3 || ids[2] != -1 {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if captured["distance_threshold"] != 1.0 {
		t.Fatalf("expected threshold in request, got %v", captured["distance_threshold"])
	}
}

func TestClusterRejectsIDCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"cluster_ids":[0]}`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Cluster(context.Background(), [][]float32{{1}, {2}}, 1.0)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "mismatch") {
		t.Fatalf("expected mismatch error, got %v", err)
	}
}

func TestClusterEmptyInputSkipsCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected for empty input")
	}))
	defer server.Close()

	client := New(server.URL)
	ids, err := client.Cluster(context.Background(), nil, 1.0)
	if err != nil {
		t.Fatalf("Cluster() error = %v", err)
	}
	if ids != nil {
		t.Fatalf("expected nil ids, got %v", ids)
	}
}

func TestClusterIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "fit failed", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Cluster(context.Background(), [][]float32{{1}}, 1.0)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "fit failed") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}
