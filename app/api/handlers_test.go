package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lysyi3m/market-pulse/app/analysis"
	"github.com/lysyi3m/market-pulse/app/config"
	"github.com/lysyi3m/market-pulse/app/feed"
	"github.com/lysyi3m/market-pulse/app/sentiment"
	"github.com/lysyi3m/market-pulse/app/tasks"
)

type mockScheduler struct {
	enqueued []tasks.TaskInterface
	err      error
}

func (m *mockScheduler) Start() {}
func (m *mockScheduler) Stop()  {}

func (m *mockScheduler) EnqueueTask(task tasks.TaskInterface) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, task)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Feed: config.FeedConfig{URL: "https://example.com/feed"},
		Assets: []config.Asset{
			{Code: "USD", Keywords: []string{"dollar", "fed"}},
			{Code: "GOLD", Keywords: []string{"gold", "xau"}},
		},
	}
}

func testSnapshot() sentiment.Snapshot {
	refreshedAt := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	return sentiment.Snapshot{
		Sentiments: []sentiment.AssetSentiment{
			{Asset: "USD", Sentiment: analysis.SentimentBullish, Confidence: 80, KeyFactors: []string{"Fed holds rates"}, ComputedAt: refreshedAt},
			{Asset: "GOLD", Sentiment: analysis.SentimentNeutral, Confidence: 0, KeyFactors: []string{}, ComputedAt: refreshedAt},
		},
		Items: []analysis.AnalyzedItem{
			{Item: feed.Item{Title: "Fed holds rates", Description: "Rates unchanged", Link: "https://example.com/1", PublishedAt: refreshedAt}},
		},
		RefreshedAt: refreshedAt,
	}
}

func newTestServer(holder *sentiment.SnapshotHolder, scheduler tasks.TaskSchedulerInterface, apiAccessKey string) http.Handler {
	handler := NewHandler(testConfig(), holder, &feed.Gateway{}, nil, scheduler)
	return NewServer(handler, apiAccessKey, "test")
}

func TestGetSentimentNoSnapshot(t *testing.T) {
	server := newTestServer(sentiment.NewSnapshotHolder(), &mockScheduler{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sentiment", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 before first snapshot, got %d", w.Code)
	}
}

func TestGetSentiment(t *testing.T) {
	holder := sentiment.NewSnapshotHolder()
	holder.Publish(testSnapshot())
	server := newTestServer(holder, &mockScheduler{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sentiment", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body struct {
		Sentiments []sentiment.AssetSentiment `json:"sentiments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(body.Sentiments) != 2 {
		t.Fatalf("Expected 2 asset sentiments, got %d", len(body.Sentiments))
	}
	if body.Sentiments[0].Asset != "USD" || body.Sentiments[0].Sentiment != analysis.SentimentBullish {
		t.Errorf("Unexpected first sentiment: %+v", body.Sentiments[0])
	}
}

func TestGetAssetSentiment(t *testing.T) {
	holder := sentiment.NewSnapshotHolder()
	holder.Publish(testSnapshot())
	server := newTestServer(holder, &mockScheduler{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sentiment/GOLD", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body sentiment.AssetSentiment
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Asset != "GOLD" || body.Sentiment != analysis.SentimentNeutral {
		t.Errorf("Unexpected asset sentiment: %+v", body)
	}
}

func TestGetAssetSentimentCaseInsensitive(t *testing.T) {
	holder := sentiment.NewSnapshotHolder()
	holder.Publish(testSnapshot())
	server := newTestServer(holder, &mockScheduler{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sentiment/usd", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for lowercase asset code, got %d", w.Code)
	}
}

func TestGetAssetSentimentUnknownAsset(t *testing.T) {
	holder := sentiment.NewSnapshotHolder()
	holder.Publish(testSnapshot())
	server := newTestServer(holder, &mockScheduler{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sentiment/BTC", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown asset, got %d", w.Code)
	}
}

func TestGetNews(t *testing.T) {
	holder := sentiment.NewSnapshotHolder()
	holder.Publish(testSnapshot())
	server := newTestServer(holder, &mockScheduler{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/news", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body struct {
		Items []analysis.AnalyzedItem `json:"items"`
		Total int                     `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Total != 1 || len(body.Items) != 1 {
		t.Fatalf("Expected 1 news item, got total=%d len=%d", body.Total, len(body.Items))
	}
	if body.Items[0].Title != "Fed holds rates" {
		t.Errorf("Unexpected item title: %q", body.Items[0].Title)
	}
}

func TestGetHealth(t *testing.T) {
	server := newTestServer(sentiment.NewSnapshotHolder(), &mockScheduler{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestRefreshRequiresAPIKey(t *testing.T) {
	scheduler := &mockScheduler{}
	server := newTestServer(sentiment.NewSnapshotHolder(), scheduler, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/refresh", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without API key, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/refresh", nil)
	req.Header.Set("X-API-Key", "wrong")
	server.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 with wrong API key, got %d", w.Code)
	}

	if len(scheduler.enqueued) != 0 {
		t.Errorf("Expected no enqueued tasks after rejected requests, got %d", len(scheduler.enqueued))
	}
}

func TestRefreshEnqueuesTask(t *testing.T) {
	scheduler := &mockScheduler{}
	server := newTestServer(sentiment.NewSnapshotHolder(), scheduler, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/refresh", nil)
	req.Header.Set("X-API-Key", "secret")
	server.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d", w.Code)
	}
	if len(scheduler.enqueued) != 1 {
		t.Fatalf("Expected 1 enqueued task, got %d", len(scheduler.enqueued))
	}
	if scheduler.enqueued[0].GetType() != tasks.TaskTypeRefreshPipeline {
		t.Errorf("Unexpected task type: %s", scheduler.enqueued[0].GetType())
	}
}

func TestRefreshBearerToken(t *testing.T) {
	scheduler := &mockScheduler{}
	server := newTestServer(sentiment.NewSnapshotHolder(), scheduler, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/refresh", nil)
	req.Header.Set("Authorization", "Bearer secret")
	server.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Errorf("Expected status 202 with bearer token, got %d", w.Code)
	}
}

func TestRefreshDisabledWithoutAccessKey(t *testing.T) {
	server := newTestServer(sentiment.NewSnapshotHolder(), &mockScheduler{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/refresh", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 when API access is disabled, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(sentiment.NewSnapshotHolder(), &mockScheduler{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/sentiment", nil)
	server.ServeHTTP(w, req)

	if w.Code != 204 {
		t.Errorf("Expected status 204 for preflight request, got %d", w.Code)
	}
	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Expected wildcard CORS origin, got %q", origin)
	}
}
