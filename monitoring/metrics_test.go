package monitoring

import (
	"testing"
	"time"
)

func TestMetricsCollectorRecordPrediction(t *testing.T) {
	mc := NewMetricsCollector()
	mc.RecordPrediction("grouping", "kmeans", 2*time.Millisecond, true)
	mc.RecordPrediction("grouping", "kmeans", 4*time.Millisecond, false)

	snapshot := mc.Snapshot()
	if snapshot["total_predictions"].(int64) != 2 {
		t.Fatalf("expected 2 predictions, got %v", snapshot["total_predictions"])
	}
	if snapshot["total_errors"].(int64) != 1 {
		t.Fatalf("expected 1 error, got %v", snapshot["total_errors"])
	}

	models := snapshot["models"].(map[string]TaskStats)
	stats, ok := models["grouping/kmeans"]
	if !ok {
		t.Fatalf("expected grouping/kmeans stats, got %v", models)
	}
	if stats.MinLatencyMs <= 0 || stats.MaxLatencyMs < stats.MinLatencyMs {
		t.Fatalf("unexpected latency stats: %+v", stats)
	}
}

func TestRecentPredictionsBounded(t *testing.T) {
	recent, err := NewRecentPredictions(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"a", "b", "c"} {
		recent.Add(PredictionEvent{RequestID: id, Task: "grouping", Timestamp: time.Now()})
	}
	events := recent.Events()
	if len(events) != 2 {
		t.Fatalf("expected cache bounded to 2, got %d", len(events))
	}
	if events[0].RequestID != "b" || events[1].RequestID != "c" {
		t.Fatalf("expected oldest entry evicted, got %v", events)
	}
}
