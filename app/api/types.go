package api

import (
	"github.com/lysyi3m/market-pulse/app/analysis"
	"github.com/lysyi3m/market-pulse/app/config"
	"github.com/lysyi3m/market-pulse/app/feed"
	"github.com/lysyi3m/market-pulse/app/sentiment"
	"github.com/lysyi3m/market-pulse/app/tasks"
)

type Handler struct {
	config    *config.Config
	holder    *sentiment.SnapshotHolder
	gateway   *feed.Gateway
	analyzer  *analysis.Analyzer
	scheduler tasks.TaskSchedulerInterface
}
