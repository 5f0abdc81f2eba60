package ml

import (
	"fmt"
	"path/filepath"
)

// Clusterer assigns an integer cluster id to a feature vector.
type Clusterer interface {
	Predict(features []float64) (int, error)
}

// Regressor predicts a single scalar from a feature vector.
type Regressor interface {
	Predict(features []float64) (float64, error)
}

// Supported model variants.
const (
	VariantKMeans       = "kmeans"
	VariantDBSCAN       = "dbscan"
	VariantRandomForest = "random_forest"
	VariantXGBoost      = "xgboost"
)

// Entry is the resolved (model, scaler, feature order) tuple for one variant.
// Exactly one of Clusterer/Regressor is set depending on the task. Scaler is
// nil when the model was fitted on unscaled features.
type Entry struct {
	Task         Task
	Variant      string
	DisplayName  string
	Clusterer    Clusterer
	Regressor    Regressor
	Scaler       *StandardScaler
	FeatureOrder []string
}

// Registry owns the loaded model artifacts. It is populated once at startup
// and read-only afterwards, so Resolve is safe for concurrent use without
// locking.
type Registry struct {
	entries map[string]*Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register adds an entry. It is only called during startup (or test setup),
// never while the registry is being read.
func (r *Registry) Register(entry *Entry) {
	r.entries[registryKey(entry.Task, entry.Variant)] = entry
}

// Resolve looks up the entry for a task/variant pair.
func (r *Registry) Resolve(task Task, variant string) (*Entry, error) {
	entry, ok := r.entries[registryKey(task, variant)]
	if !ok {
		return nil, &UnknownModelError{Task: task, Variant: variant}
	}
	return entry, nil
}

// Variants lists the registered variant names for a task.
func (r *Registry) Variants(task Task) []string {
	var variants []string
	for _, entry := range r.entries {
		if entry.Task == task {
			variants = append(variants, entry.Variant)
		}
	}
	return variants
}

func registryKey(task Task, variant string) string {
	return string(task) + "/" + variant
}

// Artifact file names within the models directory.
const (
	kmeansArtifact        = "kmeans.json"
	dbscanArtifact        = "dbscan.json"
	randomForestArtifact  = "random_forest.json"
	xgboostArtifact       = "xgboost.json"
	revenueScalerArtifact = "revenue_scaler.json"
)

// ArtifactFiles lists the artifact file names LoadRegistry expects in the
// models directory.
func ArtifactFiles() []string {
	return []string{
		kmeansArtifact,
		dbscanArtifact,
		randomForestArtifact,
		xgboostArtifact,
		revenueScalerArtifact,
	}
}

// LoadRegistry loads all fitted artifacts from dir. Any failure is wrapped in
// ArtifactLoadError and must be treated as fatal by the caller: the service
// may not accept requests with a partially loaded registry.
func LoadRegistry(dir string) (*Registry, error) {
	kmeans := &KMeans{}
	if err := kmeans.Load(filepath.Join(dir, kmeansArtifact)); err != nil {
		return nil, &ArtifactLoadError{Path: filepath.Join(dir, kmeansArtifact), Err: err}
	}
	dbscan := &DBSCAN{}
	if err := dbscan.Load(filepath.Join(dir, dbscanArtifact)); err != nil {
		return nil, &ArtifactLoadError{Path: filepath.Join(dir, dbscanArtifact), Err: err}
	}
	forest := &RandomForest{}
	if err := forest.Load(filepath.Join(dir, randomForestArtifact)); err != nil {
		return nil, &ArtifactLoadError{Path: filepath.Join(dir, randomForestArtifact), Err: err}
	}
	boost := &GradientBoost{}
	if err := boost.Load(filepath.Join(dir, xgboostArtifact)); err != nil {
		return nil, &ArtifactLoadError{Path: filepath.Join(dir, xgboostArtifact), Err: err}
	}
	scaler := &StandardScaler{}
	if err := scaler.Load(filepath.Join(dir, revenueScalerArtifact)); err != nil {
		return nil, &ArtifactLoadError{Path: filepath.Join(dir, revenueScalerArtifact), Err: err}
	}

	if len(scaler.Mean) != len(revenueFeatures) {
		err := fmt.Errorf("scaler fitted for %d features, expected %d", len(scaler.Mean), len(revenueFeatures))
		return nil, &ArtifactLoadError{Path: filepath.Join(dir, revenueScalerArtifact), Err: err}
	}

	registry := NewRegistry()
	registry.Register(&Entry{
		Task:         TaskGrouping,
		Variant:      VariantKMeans,
		DisplayName:  "KMeans",
		Clusterer:    kmeans,
		FeatureOrder: FeatureOrder(TaskGrouping),
	})
	registry.Register(&Entry{
		Task:         TaskGrouping,
		Variant:      VariantDBSCAN,
		DisplayName:  "DBSCAN",
		Clusterer:    dbscan,
		FeatureOrder: FeatureOrder(TaskGrouping),
	})
	registry.Register(&Entry{
		Task:         TaskRevenue,
		Variant:      VariantRandomForest,
		DisplayName:  "Random Forest",
		Regressor:    forest,
		Scaler:       scaler,
		FeatureOrder: FeatureOrder(TaskRevenue),
	})
	registry.Register(&Entry{
		Task:         TaskRevenue,
		Variant:      VariantXGBoost,
		DisplayName:  "XGBoost",
		Regressor:    boost,
		Scaler:       scaler,
		FeatureOrder: FeatureOrder(TaskRevenue),
	})
	return registry, nil
}
