package sentiment

import (
	"sync"
	"time"

	"github.com/lysyi3m/market-pulse/app/analysis"
)

// Snapshot is the result of one full pipeline run: the aggregate per asset
// plus the analyzed items it was computed from. No history is kept; each
// refresh replaces the previous snapshot entirely.
type Snapshot struct {
	Sentiments  []AssetSentiment        `json:"sentiments"`
	Items       []analysis.AnalyzedItem `json:"items"`
	RefreshedAt time.Time               `json:"refreshed_at"`
}

// SnapshotHolder hands the latest snapshot from the refresh task to the API.
// Last writer wins; readers may observe the previous snapshot during a
// refresh, never a partial one.
type SnapshotHolder struct {
	current *Snapshot
	mu      sync.RWMutex
}

func NewSnapshotHolder() *SnapshotHolder {
	return &SnapshotHolder{}
}

func (h *SnapshotHolder) Publish(snapshot Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = &snapshot
}

// Get returns the latest snapshot, or false when no refresh has completed yet
func (h *SnapshotHolder) Get() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.current == nil {
		return Snapshot{}, false
	}
	return *h.current, true
}
