package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/market-pulse/app/analysis"
	"github.com/lysyi3m/market-pulse/app/config"
	"github.com/lysyi3m/market-pulse/app/feed"
	"github.com/lysyi3m/market-pulse/app/sentiment"
)

// RefreshPipelineTask runs one end-to-end pipeline cycle: fetch the feed,
// analyze the items, aggregate sentiment per configured asset and publish
// the resulting snapshot. An analyzer may be absent (no API key configured),
// in which case items pass through unenriched and aggregation falls back to
// the default judgment values.
type RefreshPipelineTask struct {
	Task
	config   *config.Config
	gateway  *feed.Gateway
	analyzer *analysis.Analyzer
	holder   *sentiment.SnapshotHolder
}

func NewRefreshPipelineTask(cfg *config.Config, gateway *feed.Gateway, analyzer *analysis.Analyzer, holder *sentiment.SnapshotHolder) *RefreshPipelineTask {
	return &RefreshPipelineTask{
		Task:     NewTask(TaskTypeRefreshPipeline, cfg.Feed.URL),
		config:   cfg,
		gateway:  gateway,
		analyzer: analyzer,
		holder:   holder,
	}
}

func (t *RefreshPipelineTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	items, err := t.gateway.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	analyzed := t.analyze(ctx, items)

	now := time.Now()
	sentiments := make([]sentiment.AssetSentiment, 0, len(t.config.Assets))
	for _, asset := range t.config.Assets {
		sentiments = append(sentiments, sentiment.Aggregate(analyzed, asset, now))
	}

	t.holder.Publish(sentiment.Snapshot{
		Sentiments:  sentiments,
		Items:       analyzed,
		RefreshedAt: now,
	})

	slog.Info("Pipeline refresh completed", "items", len(items), "assets", len(sentiments), "duration", t.GetDuration().String())

	return nil
}

// analyze enriches the head of the batch, up to the analyzer's item budget,
// and passes the remaining items through unenriched so the full feed stays
// visible in the snapshot.
func (t *RefreshPipelineTask) analyze(ctx context.Context, items []feed.Item) []analysis.AnalyzedItem {
	analyzed := make([]analysis.AnalyzedItem, 0, len(items))

	if t.analyzer != nil {
		enriched, err := t.analyzer.Run(ctx, items)
		if err != nil {
			slog.Warn("Analysis unavailable, serving unenriched items", "error", err)
		} else {
			analyzed = append(analyzed, enriched...)
		}
	}

	for _, item := range items[len(analyzed):] {
		analyzed = append(analyzed, analysis.AnalyzedItem{Item: item})
	}
	return analyzed
}
