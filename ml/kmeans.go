package ml

import (
	"encoding/json"
	"errors"
	"math"
	"os"
)

// KMeans is a fitted centroid model. Prediction assigns the index of the
// nearest centroid by Euclidean distance.
type KMeans struct {
	Centroids [][]float64 `json:"centroids"`
}

func (m *KMeans) Predict(features []float64) (int, error) {
	if len(m.Centroids) == 0 {
		return 0, errors.New("model not loaded")
	}
	best := -1
	bestDist := math.MaxFloat64
	for i, centroid := range m.Centroids {
		if len(centroid) != len(features) {
			return 0, errors.New("feature dimension mismatch")
		}
		dist := squaredDistance(features, centroid)
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best, nil
}

func (m *KMeans) NumClusters() int {
	return len(m.Centroids)
}

func (m *KMeans) Save(path string) error {
	if len(m.Centroids) == 0 {
		return errors.New("model not loaded")
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (m *KMeans) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded KMeans
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.Centroids) == 0 {
		return errors.New("artifact has no centroids")
	}
	m.Centroids = loaded.Centroids
	return nil
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
