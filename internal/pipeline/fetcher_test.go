package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const testContextDoc = `{"@context":{"name":"https://schema.org/name"}}`

func newTestFetcher() *Fetcher {
	return NewFetcher(5*time.Second, "test-agent", 1<<20, "", "")
}

func noSleep(t *testing.T) {
	t.Helper()
	origSleep := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) {}
	t.Cleanup(func() { fetchSleepFunc = origSleep })
}

func TestFetchWithRetry_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); !strings.Contains(got, "application/ld+json") {
			t.Errorf("expected JSON-LD accept header, got %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("unexpected user agent %q", got)
		}
		w.Header().Set("Content-Type", "application/ld+json")
		_, _ = fmt.Fprint(w, testContextDoc)
	}))
	defer server.Close()

	result, err := newTestFetcher().FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(result.Body) != testContextDoc {
		t.Errorf("Unexpected body: %s", result.Body)
	}
	if result.ContentType != "application/ld+json" {
		t.Errorf("Unexpected content type: %s", result.ContentType)
	}
}

func TestFetchWithRetry_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, testContextDoc)
	}))
	defer server.Close()
	noSleep(t)

	result, err := newTestFetcher().FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if string(result.Body) != testContextDoc {
		t.Errorf("Unexpected body: %s", result.Body)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_PermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	noSleep(t)

	_, err := newTestFetcher().FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404, got nil")
	}
	if got := err.Error(); got != "unexpected status: 404 404 Not Found" {
		t.Errorf("Unexpected error: %s", got)
	}
	if attempts.Load() != 1 {
		t.Errorf("404 must not be retried, got %d attempts", attempts.Load())
	}
}

func TestFetchWithRetry_AllRetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	noSleep(t)

	_, err := newTestFetcher().FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error after all retries exhausted")
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_429Retried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = fmt.Fprint(w, testContextDoc)
	}))
	defer server.Close()
	noSleep(t)

	if _, err := newTestFetcher().FetchWithRetry(context.Background(), server.URL); err != nil {
		t.Fatalf("Expected success after 429 retry, got %v", err)
	}
	if attempts.Load() != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts.Load())
	}
}

func TestFetch_OversizedDocumentRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, strings.Repeat("x", 64))
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, "test-agent", 16, "", "")
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("Expected error for document over the size cap")
	}
}

func TestIsRetryableFetchError(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
	}{
		{&StatusError{Code: 503, Status: "503 Service Unavailable"}, true},
		{&StatusError{Code: 500, Status: "500 Internal Server Error"}, true},
		{&StatusError{Code: 429, Status: "429 Too Many Requests"}, true},
		{&StatusError{Code: 404, Status: "404 Not Found"}, false},
		{fmt.Errorf("load context: %w", &StatusError{Code: 502, Status: "502 Bad Gateway"}), true},
		{fmt.Errorf("load context: %w", &StatusError{Code: 403, Status: "403 Forbidden"}), false},
		// only a typed StatusError carries the code
		{fmt.Errorf("unexpected status: 502 Bad Gateway"), false},
		{fmt.Errorf("fetch: connection refused"), true},
		{fmt.Errorf("fetch: connection reset by peer"), true},
		{fmt.Errorf("create request: invalid URL"), false},
		{fmt.Errorf("read body: unexpected EOF"), false},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got := isRetryableFetchError(tt.err)
			if got != tt.retryable {
				t.Errorf("isRetryableFetchError(%q) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}

func TestIsRetryableFetchError_Nil(t *testing.T) {
	if isRetryableFetchError(nil) {
		t.Error("Expected nil error to not be retryable")
	}
}

func TestBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, testContextDoc)
	}))
	defer server.Close()

	body, err := newTestFetcher().Body(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(body) != testContextDoc {
		t.Errorf("Unexpected body: %s", body)
	}
}
