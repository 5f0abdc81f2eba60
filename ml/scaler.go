package ml

import (
	"encoding/json"
	"errors"
	"os"
)

// StandardScaler holds the mean/scale vectors of a fitted scaler and applies
// (x - mean) / scale per feature. Zero-variance features (scale 0) pass
// through centered only, matching the fit-time convention.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) Transform(vector []float64) ([]float64, error) {
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return nil, errors.New("scaler not loaded")
	}
	if len(vector) != len(s.Mean) {
		return nil, errors.New("feature dimension mismatch")
	}
	scaled := make([]float64, len(vector))
	for i, v := range vector {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		scaled[i] = (v - s.Mean[i]) / scale
	}
	return scaled, nil
}

func (s *StandardScaler) Save(path string) error {
	if len(s.Mean) == 0 {
		return errors.New("scaler not loaded")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (s *StandardScaler) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded StandardScaler
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.Mean) == 0 || len(loaded.Mean) != len(loaded.Scale) {
		return errors.New("artifact has inconsistent mean/scale vectors")
	}
	*s = loaded
	return nil
}
