package monitoring

import (
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// PredictionEvent 单次预测事件，用于实时推送和最近记录
type PredictionEvent struct {
	RequestID string          `json:"request_id"`
	Task      string          `json:"task"`
	Variant   string          `json:"variant"`
	Result    json.RawMessage `json:"result"`
	LatencyMs float64         `json:"latency_ms"`
	Timestamp time.Time       `json:"timestamp"`
}

// RecentPredictions 有界的最近预测事件缓存。只用于观测（WebSocket快照等），
// 从不参与推理本身。
type RecentPredictions struct {
	cache *lru.Cache[string, PredictionEvent]
}

func NewRecentPredictions(size int) (*RecentPredictions, error) {
	cache, err := lru.New[string, PredictionEvent](size)
	if err != nil {
		return nil, err
	}
	return &RecentPredictions{cache: cache}, nil
}

// Add 记录一个事件
func (r *RecentPredictions) Add(event PredictionEvent) {
	r.cache.Add(event.RequestID+"/"+event.Task, event)
}

// Events 按从旧到新返回缓存中的事件
func (r *RecentPredictions) Events() []PredictionEvent {
	return r.cache.Values()
}

// Len 当前缓存的事件数
func (r *RecentPredictions) Len() int {
	return r.cache.Len()
}
