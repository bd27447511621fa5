package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/market-pulse/app/analysis"
	"github.com/lysyi3m/market-pulse/app/config"
	"github.com/lysyi3m/market-pulse/app/feed"
	"github.com/lysyi3m/market-pulse/app/sentiment"
	"github.com/lysyi3m/market-pulse/app/tasks"
)

func NewHandler(appConfig *config.Config, holder *sentiment.SnapshotHolder,
	gateway *feed.Gateway, analyzer *analysis.Analyzer,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		config:    appConfig,
		holder:    holder,
		gateway:   gateway,
		analyzer:  analyzer,
		scheduler: scheduler,
	}
}

func (h *Handler) GetSentiment(c *gin.Context) {
	snapshot, ok := h.holder.Get()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No sentiment snapshot available yet"})
		return
	}

	c.Header("X-Refreshed-At", snapshot.RefreshedAt.Format(time.RFC3339))

	c.JSON(http.StatusOK, gin.H{
		"sentiments":   snapshot.Sentiments,
		"refreshed_at": snapshot.RefreshedAt,
	})
}

func (h *Handler) GetAssetSentiment(c *gin.Context) {
	code := c.Param("asset")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing asset parameter"})
		return
	}

	asset := h.config.GetAsset(code)
	if asset == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown asset", "assets": h.config.AssetCodes()})
		return
	}

	snapshot, ok := h.holder.Get()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No sentiment snapshot available yet"})
		return
	}

	for _, assetSentiment := range snapshot.Sentiments {
		if assetSentiment.Asset == asset.Code {
			c.JSON(http.StatusOK, assetSentiment)
			return
		}
	}

	slog.Error("Asset missing from snapshot", "asset", asset.Code)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Asset missing from snapshot"})
}

func (h *Handler) GetNews(c *gin.Context) {
	snapshot, ok := h.holder.Get()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No news snapshot available yet"})
		return
	}

	c.Header("X-News-Items", strconv.Itoa(len(snapshot.Items)))

	c.JSON(http.StatusOK, gin.H{
		"items":        snapshot.Items,
		"total":        len(snapshot.Items),
		"refreshed_at": snapshot.RefreshedAt,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"assets":    len(h.config.Assets),
	}

	if snapshot, ok := h.holder.Get(); ok {
		health["last_refresh_at"] = snapshot.RefreshedAt.Format(time.RFC3339)
		health["items"] = len(snapshot.Items)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIRefresh(c *gin.Context) {
	task := tasks.NewRefreshPipelineTask(h.config, h.gateway, h.analyzer, h.holder)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue refresh task", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to schedule refresh"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Refresh scheduled",
		"task_id": task.GetID(),
	})
}
