package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/lysyi3m/market-pulse/app/config"
	"github.com/lysyi3m/market-pulse/app/feed"
)

// Analyzer enriches a batch of feed items with provider judgments. Per-item
// calls run concurrently and independently: one item's failure degrades that
// item to its unenriched form instead of failing the batch.
type Analyzer struct {
	provider         Provider
	prompt           *PromptBuilder
	assets           []string
	responseFormat   string
	maxItems         int
	extractContent   bool
	contentExtractor *ContentExtractor
	httpClient       *http.Client
	userAgent        string
}

func NewAnalyzer(provider Provider, analysisConfig config.AnalysisConfig, assets []string, prompt *PromptBuilder, httpClient *http.Client, userAgent string) *Analyzer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Analyzer{
		provider:         provider,
		prompt:           prompt,
		assets:           assets,
		responseFormat:   analysisConfig.ResponseFormat,
		maxItems:         analysisConfig.MaxItems,
		extractContent:   analysisConfig.ExtractContent,
		contentExtractor: NewContentExtractor(),
		httpClient:       httpClient,
		userAgent:        userAgent,
	}
}

// Run analyzes up to the configured number of items from the batch,
// concurrently. Cancelling ctx cancels every in-flight call. The returned
// slice preserves input order; items whose analysis failed carry their
// original fields with Analyzed unset.
func (a *Analyzer) Run(ctx context.Context, items []feed.Item) ([]AnalyzedItem, error) {
	if a.provider == nil {
		return nil, ErrMissingAPIKey
	}

	batch := items
	if a.maxItems > 0 && len(batch) > a.maxItems {
		batch = batch[:a.maxItems]
	}

	results := make([]AnalyzedItem, len(batch))

	var wg sync.WaitGroup
	for i, item := range batch {
		wg.Add(1)
		go func(i int, item feed.Item) {
			defer wg.Done()

			judgment, err := a.analyzeItem(ctx, item)
			if err != nil {
				slog.Warn("Item analysis failed", "link", item.Link, "error", err)
				results[i] = AnalyzedItem{Item: item}
				return
			}

			results[i] = AnalyzedItem{Item: item, Judgment: judgment, Analyzed: true}
		}(i, item)
	}
	wg.Wait()

	return results, nil
}

func (a *Analyzer) analyzeItem(ctx context.Context, item feed.Item) (Judgment, error) {
	articleContent := ""
	if a.extractContent {
		articleContent = a.fetchArticle(ctx, item.Link)
	}

	response, err := a.provider.Complete(ctx, a.prompt.Run(item, articleContent))
	if err != nil {
		return Judgment{}, err
	}

	if a.responseFormat == config.ResponseFormatJSON {
		return ExtractJSON(response)
	}

	return Extract(response, a.assets), nil
}

// fetchArticle retrieves the article page for content extraction. This is a
// best-effort enrichment: any failure falls back to the feed description.
func (a *Analyzer) fetchArticle(ctx context.Context, link string) string {
	req, err := http.NewRequestWithContext(ctx, "GET", link, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		slog.Debug("Article fetch failed", "link", link, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("Article fetch failed", "link", link, "error", fmt.Errorf("HTTP error: %d", resp.StatusCode))
		return ""
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	content, err := a.contentExtractor.Run(data)
	if err != nil {
		slog.Debug("Content extraction failed", "link", link, "error", err)
		return ""
	}

	return content
}
