package ml

import (
	"encoding/json"
	"errors"
	"os"
)

// RegressionNode mirrors the serialized tree layout: an array of nodes with
// child indices, leaves carrying the predicted value.
type RegressionNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

type RegressionTree struct {
	Nodes []RegressionNode `json:"nodes"`
}

func (t *RegressionTree) Predict(features []float64) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, errors.New("empty tree")
	}
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

// RandomForest predicts the mean of its trees.
type RandomForest struct {
	Trees []RegressionTree `json:"trees"`
}

func (m *RandomForest) Predict(features []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, errors.New("model not loaded")
	}
	sum := 0.0
	for i := range m.Trees {
		value, err := m.Trees[i].Predict(features)
		if err != nil {
			return 0, err
		}
		sum += value
	}
	return sum / float64(len(m.Trees)), nil
}

func (m *RandomForest) Save(path string) error {
	if len(m.Trees) == 0 {
		return errors.New("model not loaded")
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (m *RandomForest) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded RandomForest
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.Trees) == 0 {
		return errors.New("artifact has no trees")
	}
	m.Trees = loaded.Trees
	return nil
}

// GradientBoost predicts base score plus the shrinkage-weighted sum of its
// trees, matching the additive form the booster was fitted with.
type GradientBoost struct {
	BaseScore float64          `json:"base_score"`
	Shrinkage float64          `json:"shrinkage"`
	Trees     []RegressionTree `json:"trees"`
}

func (m *GradientBoost) Predict(features []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, errors.New("model not loaded")
	}
	sum := 0.0
	for i := range m.Trees {
		value, err := m.Trees[i].Predict(features)
		if err != nil {
			return 0, err
		}
		sum += value
	}
	return m.BaseScore + m.Shrinkage*sum, nil
}

func (m *GradientBoost) Save(path string) error {
	if len(m.Trees) == 0 {
		return errors.New("model not loaded")
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (m *GradientBoost) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded GradientBoost
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.Trees) == 0 {
		return errors.New("artifact has no trees")
	}
	if loaded.Shrinkage == 0 {
		loaded.Shrinkage = 1
	}
	*m = loaded
	return nil
}
