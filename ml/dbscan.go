package ml

import (
	"encoding/json"
	"errors"
	"math"
	"os"
)

// NoiseLabel is the cluster id DBSCAN assigns to points outside every
// eps-neighborhood. It is an expected output, not an error; the label mapper
// degrades it to a generic group.
const NoiseLabel = -1

// DBSCAN is a frozen density fit: the core samples retained from training,
// their cluster labels, and the fitted eps radius. Prediction assigns the
// label of the nearest core sample when it lies within eps, otherwise
// NoiseLabel.
type DBSCAN struct {
	Eps         float64     `json:"eps"`
	CoreSamples [][]float64 `json:"core_samples"`
	CoreLabels  []int       `json:"core_labels"`
}

func (m *DBSCAN) Predict(features []float64) (int, error) {
	if len(m.CoreSamples) == 0 {
		return 0, errors.New("model not loaded")
	}
	if len(m.CoreSamples) != len(m.CoreLabels) {
		return 0, errors.New("invalid model state")
	}
	best := -1
	bestDist := math.MaxFloat64
	for i, sample := range m.CoreSamples {
		if len(sample) != len(features) {
			return 0, errors.New("feature dimension mismatch")
		}
		dist := squaredDistance(features, sample)
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	if math.Sqrt(bestDist) > m.Eps {
		return NoiseLabel, nil
	}
	return m.CoreLabels[best], nil
}

func (m *DBSCAN) Save(path string) error {
	if len(m.CoreSamples) == 0 {
		return errors.New("model not loaded")
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (m *DBSCAN) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded DBSCAN
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.CoreSamples) == 0 || len(loaded.CoreSamples) != len(loaded.CoreLabels) {
		return errors.New("artifact has inconsistent core samples")
	}
	if loaded.Eps <= 0 {
		return errors.New("artifact has non-positive eps")
	}
	*m = loaded
	return nil
}
