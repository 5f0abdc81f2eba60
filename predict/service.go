package predict

import (
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"prodquant/ml"
)

// Service runs the prediction pipeline against an immutable model registry.
// The registry is injected at construction; the service holds no mutable
// state, so one instance serves concurrent requests.
type Service struct {
	registry *ml.Registry
	logger   *zap.Logger
}

func NewService(registry *ml.Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{registry: registry, logger: logger}
}

// GroupResult is the clustering half of a prediction response.
type GroupResult struct {
	ModelUsed      string         `json:"model_used"`
	PredictedGroup int            `json:"predicted_group"`
	GroupInfo      ml.ClusterInfo `json:"group_info"`
}

// RevenueResult is the regression half of a prediction response. Revenue is
// formatted as currency; Debug carries the assembled pipeline intermediates
// when requested.
type RevenueResult struct {
	ModelUsed        string     `json:"model_used"`
	NextMonthRevenue string     `json:"next_month_revenue"`
	Debug            *DebugInfo `json:"debug,omitempty"`
}

type DebugInfo struct {
	ScaledInput   []float64 `json:"scaled_regression_input"`
	RawPrediction float64   `json:"raw_prediction"`
}

// CombinedResult reports both tasks independently: a failure in one task does
// not suppress the other's result.
type CombinedResult struct {
	Group        *GroupResult   `json:"group,omitempty"`
	GroupError   string         `json:"group_error,omitempty"`
	Revenue      *RevenueResult `json:"revenue,omitempty"`
	RevenueError string         `json:"revenue_error,omitempty"`
}

// PredictGroup resolves the clustering variant, assembles the grouping
// feature vector, infers a cluster id and maps it to its business label.
func (s *Service) PredictGroup(variant string, record ml.Record) (*GroupResult, error) {
	entry, err := s.registry.Resolve(ml.TaskGrouping, variant)
	if err != nil {
		return nil, err
	}
	vector, err := ml.AssembleFeatures(record, entry.FeatureOrder)
	if err != nil {
		return nil, err
	}
	if entry.Scaler != nil {
		if vector, err = entry.Scaler.Transform(vector); err != nil {
			return nil, err
		}
	}
	cluster, err := entry.Clusterer.Predict(vector)
	if err != nil {
		return nil, err
	}

	info := ml.DescribeCluster(entry.Variant, cluster)
	s.logger.Debug("group predicted",
		zap.String("variant", entry.Variant),
		zap.Int("cluster", cluster),
		zap.String("name", info.Name))

	return &GroupResult{
		ModelUsed:      entry.DisplayName,
		PredictedGroup: cluster,
		GroupInfo:      info,
	}, nil
}

// PredictRevenue resolves the regression variant, assembles and scales the
// revenue feature vector, infers in signed-log space and inverts the
// transform so the response is in currency units.
func (s *Service) PredictRevenue(variant string, record ml.Record, withDebug bool) (*RevenueResult, error) {
	entry, err := s.registry.Resolve(ml.TaskRevenue, variant)
	if err != nil {
		return nil, err
	}
	vector, err := ml.AssembleFeatures(record, entry.FeatureOrder)
	if err != nil {
		return nil, err
	}
	if entry.Scaler != nil {
		if vector, err = entry.Scaler.Transform(vector); err != nil {
			return nil, err
		}
	}
	raw, err := entry.Regressor.Predict(vector)
	if err != nil {
		return nil, err
	}

	revenue := ml.SignedExpm1(raw)
	s.logger.Debug("revenue predicted",
		zap.String("variant", entry.Variant),
		zap.Float64("raw", raw),
		zap.Float64("revenue", revenue))

	result := &RevenueResult{
		ModelUsed:        entry.DisplayName,
		NextMonthRevenue: FormatCurrency(revenue),
	}
	if withDebug {
		result.Debug = &DebugInfo{ScaledInput: vector, RawPrediction: raw}
	}
	return result, nil
}

// PredictAll runs both tasks over one record. Each task assembles its own
// field subset and fails independently; the combined result carries a
// per-task error instead of failing the whole call.
func (s *Service) PredictAll(groupVariant, revenueVariant string, record ml.Record, withDebug bool) *CombinedResult {
	combined := &CombinedResult{}

	group, err := s.PredictGroup(groupVariant, record)
	if err != nil {
		combined.GroupError = err.Error()
	} else {
		combined.Group = group
	}

	revenue, err := s.PredictRevenue(revenueVariant, record, withDebug)
	if err != nil {
		combined.RevenueError = err.Error()
	} else {
		combined.Revenue = revenue
	}

	return combined
}

var currencyPrinter = message.NewPrinter(language.English)

// FormatCurrency renders a revenue figure with thousands grouping, e.g.
// 12345.67 -> "$12,345.67".
func FormatCurrency(v float64) string {
	return currencyPrinter.Sprintf("$%.2f", v)
}
