package ml

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Task selects which prediction pipeline an input record feeds.
type Task string

const (
	TaskGrouping Task = "grouping"
	TaskRevenue  Task = "revenue"
)

// Record is a loosely-typed input record as decoded from a JSON request body.
type Record map[string]interface{}

// Fitted feature orders. The order must match the order the paired model and
// scaler were fitted with; a mismatch produces silently wrong predictions, so
// these slices are the contract and must never be reordered.
var (
	groupingFeatures = []string{"NetRevenue", "NetQuantity", "NumTransactions", "NumUniqueCustomers"}
	revenueFeatures  = []string{"NetRevenue", "NetRevenue_LastMonth", "NetRevenue_MA3", "Month", "ProductFrequency"}
)

// Revenue-valued fields get the signed log transform before scaling/inference.
var logTransformed = map[string]bool{
	"NetRevenue":           true,
	"NetRevenue_LastMonth": true,
	"NetRevenue_MA3":       true,
}

// FeatureOrder returns a copy of the fitted feature order for a task.
func FeatureOrder(task Task) []string {
	var order []string
	switch task {
	case TaskGrouping:
		order = groupingFeatures
	case TaskRevenue:
		order = revenueFeatures
	default:
		return nil
	}
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// AssembleFeatures builds the ordered feature vector for the given fitted
// order from a raw record. Missing required fields are collected into a single
// MissingFieldError; a present but non-numeric value fails with
// InvalidValueError. Extra keys in the record are ignored.
func AssembleFeatures(record Record, order []string) ([]float64, error) {
	vector := make([]float64, 0, len(order))
	var missing []string
	for _, name := range order {
		raw, ok := record[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		value, err := coerceFloat(raw)
		if err != nil {
			return nil, &InvalidValueError{Field: name, Value: raw}
		}
		if logTransformed[name] {
			value = SignedLog1p(value)
		}
		vector = append(vector, value)
	}
	if len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}
	return vector, nil
}

func coerceFloat(raw interface{}) (float64, error) {
	var value float64
	switch v := raw.(type) {
	case float64:
		value = v
	case float32:
		value = float64(v)
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, err
		}
		value = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, err
		}
		value = parsed
	default:
		return 0, strconv.ErrSyntax
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, strconv.ErrRange
	}
	return value, nil
}
