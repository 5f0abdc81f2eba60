package ml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeArtifacts(t *testing.T, dir string) {
	t.Helper()

	kmeans := &KMeans{Centroids: [][]float64{
		{5.5, 40, 25, 18},
		{8.0, 150, 90, 60},
		{9.8, 400, 260, 180},
		{7.0, 800, 60, 30},
	}}
	if err := kmeans.Save(filepath.Join(dir, "kmeans.json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dbscan := &DBSCAN{
		Eps: 75,
		CoreSamples: [][]float64{
			{8.0, 150, 90, 60},
			{9.5, 350, 240, 160},
		},
		CoreLabels: []int{0, 1},
	}
	if err := dbscan.Save(filepath.Join(dir, "dbscan.json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	forest := &RandomForest{Trees: []RegressionTree{
		stumpTree(0, 9.2, 9.6),
		stumpTree(0, 9.3, 9.5),
	}}
	if err := forest.Save(filepath.Join(dir, "random_forest.json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	boost := &GradientBoost{
		BaseScore: 9.0,
		Shrinkage: 0.3,
		Trees: []RegressionTree{
			stumpTree(0, 0.8, 1.6),
			stumpTree(0, 0.5, 1.1),
		},
	}
	if err := boost.Save(filepath.Join(dir, "xgboost.json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scaler := &StandardScaler{
		Mean:  []float64{9.2, 9.1, 9.05, 6.5, 15},
		Scale: []float64{0.8, 0.8, 0.75, 3.4, 9.0},
	}
	if err := scaler.Save(filepath.Join(dir, "revenue_scaler.json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)

	registry, err := LoadRegistry(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, err := registry.Resolve(TaskGrouping, VariantKMeans)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Clusterer == nil || entry.Scaler != nil {
		t.Fatalf("expected clusterer without scaler, got %+v", entry)
	}
	if len(entry.FeatureOrder) != 4 || entry.FeatureOrder[0] != "NetRevenue" {
		t.Fatalf("unexpected feature order: %v", entry.FeatureOrder)
	}

	entry, err = registry.Resolve(TaskRevenue, VariantXGBoost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Regressor == nil || entry.Scaler == nil {
		t.Fatalf("expected regressor with scaler, got %+v", entry)
	}
	if entry.DisplayName != "XGBoost" {
		t.Fatalf("unexpected display name: %s", entry.DisplayName)
	}
}

func TestResolveUnknownVariant(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&Entry{Task: TaskGrouping, Variant: VariantKMeans, Clusterer: &KMeans{Centroids: [][]float64{{0}}}})

	_, err := registry.Resolve(TaskGrouping, "foo")
	var unknown *UnknownModelError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownModelError, got %v", err)
	}
	if unknown.Variant != "foo" {
		t.Fatalf("expected variant foo, got %q", unknown.Variant)
	}

	if _, err := registry.Resolve(TaskRevenue, VariantKMeans); err == nil {
		t.Fatal("expected error resolving a grouping variant for the revenue task")
	}
}

func TestLoadRegistryMissingArtifact(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)
	if err := os.Remove(filepath.Join(dir, "xgboost.json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := LoadRegistry(dir)
	var loadErr *ArtifactLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected ArtifactLoadError, got %v", err)
	}
}

func TestLoadRegistryCorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "kmeans.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := LoadRegistry(dir)
	var loadErr *ArtifactLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected ArtifactLoadError, got %v", err)
	}
}
