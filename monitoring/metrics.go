package monitoring

import (
	"sync"
	"time"
)

// TaskStats 单个(任务,模型)组合的统计
type TaskStats struct {
	Count        int64     `json:"count"`
	Errors       int64     `json:"errors"`
	AvgLatencyMs float64   `json:"avg_latency_ms"`
	MinLatencyMs float64   `json:"min_latency_ms"`
	MaxLatencyMs float64   `json:"max_latency_ms"`
	LastAt       time.Time `json:"last_at"`
}

// MetricsCollector 指标收集器：按任务和模型统计预测次数与延迟
type MetricsCollector struct {
	mu        sync.RWMutex
	stats     map[string]*TaskStats
	latencies map[string][]float64
	startTime time.Time
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		stats:     make(map[string]*TaskStats),
		latencies: make(map[string][]float64),
		startTime: time.Now(),
	}
}

// RecordPrediction 记录一次预测
func (mc *MetricsCollector) RecordPrediction(task, variant string, latency time.Duration, success bool) {
	key := task + "/" + variant

	mc.mu.Lock()
	defer mc.mu.Unlock()

	stats, ok := mc.stats[key]
	if !ok {
		stats = &TaskStats{}
		mc.stats[key] = stats
	}
	stats.Count++
	if !success {
		stats.Errors++
	}
	stats.LastAt = time.Now()

	ms := float64(latency.Microseconds()) / 1000.0
	mc.latencies[key] = append(mc.latencies[key], ms)

	// 限制历史大小（保留最近1000个）
	if len(mc.latencies[key]) > 1000 {
		mc.latencies[key] = mc.latencies[key][100:]
	}

	values := mc.latencies[key]
	min, max, sum := values[0], values[0], 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	stats.MinLatencyMs = min
	stats.MaxLatencyMs = max
	stats.AvgLatencyMs = sum / float64(len(values))
}

// Snapshot 获取指标快照
func (mc *MetricsCollector) Snapshot() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	models := make(map[string]TaskStats, len(mc.stats))
	var total, errors int64
	for key, stats := range mc.stats {
		models[key] = *stats
		total += stats.Count
		errors += stats.Errors
	}

	return map[string]interface{}{
		"uptime_seconds":    time.Since(mc.startTime).Seconds(),
		"total_predictions": total,
		"total_errors":      errors,
		"models":            models,
	}
}
