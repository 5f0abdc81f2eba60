package predict

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"prodquant/ml"
)

type fakeClusterer struct {
	cluster int
	err     error
	gotVec  []float64
}

func (f *fakeClusterer) Predict(features []float64) (int, error) {
	f.gotVec = features
	return f.cluster, f.err
}

type fakeRegressor struct {
	value float64
	err   error
}

func (f *fakeRegressor) Predict(features []float64) (float64, error) {
	return f.value, f.err
}

func testRegistry(clusterer ml.Clusterer, regressor ml.Regressor, scaler *ml.StandardScaler) *ml.Registry {
	registry := ml.NewRegistry()
	registry.Register(&ml.Entry{
		Task:         ml.TaskGrouping,
		Variant:      ml.VariantKMeans,
		DisplayName:  "KMeans",
		Clusterer:    clusterer,
		FeatureOrder: ml.FeatureOrder(ml.TaskGrouping),
	})
	registry.Register(&ml.Entry{
		Task:         ml.TaskRevenue,
		Variant:      ml.VariantXGBoost,
		DisplayName:  "XGBoost",
		Regressor:    regressor,
		Scaler:       scaler,
		FeatureOrder: ml.FeatureOrder(ml.TaskRevenue),
	})
	return registry
}

func fullRecord() ml.Record {
	return ml.Record{
		"NetRevenue":           12345.67,
		"NetQuantity":          200.0,
		"NumTransactions":      150.0,
		"NumUniqueCustomers":   120.0,
		"NetRevenue_LastMonth": 11000.00,
		"NetRevenue_MA3":       10500.00,
		"Month":                9.0,
		"ProductFrequency":     20.0,
	}
}

func TestPredictGroup(t *testing.T) {
	clusterer := &fakeClusterer{cluster: 2}
	service := NewService(testRegistry(clusterer, &fakeRegressor{}, nil), nil)

	result, err := service.PredictGroup(ml.VariantKMeans, fullRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ModelUsed != "KMeans" || result.PredictedGroup != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.GroupInfo.Name == "" || result.GroupInfo.Description == "" {
		t.Fatalf("expected populated group info, got %+v", result.GroupInfo)
	}
	if len(clusterer.gotVec) != 4 {
		t.Fatalf("expected 4 features, got %v", clusterer.gotVec)
	}
	if clusterer.gotVec[0] != ml.SignedLog1p(12345.67) {
		t.Fatalf("expected log-transformed revenue, got %v", clusterer.gotVec[0])
	}
}

func TestPredictRevenueInvertsTransform(t *testing.T) {
	regressor := &fakeRegressor{value: ml.SignedLog1p(12345.67)}
	service := NewService(testRegistry(&fakeClusterer{}, regressor, nil), nil)

	result, err := service.PredictRevenue(ml.VariantXGBoost, fullRecord(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NextMonthRevenue != "$12,345.67" {
		t.Fatalf("unexpected formatted revenue: %s", result.NextMonthRevenue)
	}
	if result.Debug == nil || result.Debug.RawPrediction != regressor.value {
		t.Fatalf("expected debug info with raw prediction, got %+v", result.Debug)
	}
}

func TestPredictRevenueAppliesScaler(t *testing.T) {
	scaler := &ml.StandardScaler{
		Mean:  []float64{0, 0, 0, 0, 0},
		Scale: []float64{1, 1, 1, 2, 2},
	}
	service := NewService(testRegistry(&fakeClusterer{}, &fakeRegressor{value: 1}, scaler), nil)

	result, err := service.PredictRevenue(ml.VariantXGBoost, fullRecord(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Debug.ScaledInput[3] != 4.5 || result.Debug.ScaledInput[4] != 10 {
		t.Fatalf("expected scaled Month/ProductFrequency, got %v", result.Debug.ScaledInput)
	}
}

func TestPredictUnknownVariant(t *testing.T) {
	service := NewService(testRegistry(&fakeClusterer{}, &fakeRegressor{}, nil), nil)

	_, err := service.PredictGroup("foo", fullRecord())
	var unknown *ml.UnknownModelError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownModelError, got %v", err)
	}

	_, err = service.PredictRevenue("foo", fullRecord(), false)
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownModelError, got %v", err)
	}
}

func TestPredictAll(t *testing.T) {
	service := NewService(testRegistry(&fakeClusterer{cluster: 1}, &fakeRegressor{value: 9.4}, nil), nil)

	combined := service.PredictAll(ml.VariantKMeans, ml.VariantXGBoost, fullRecord(), false)
	if combined.Group == nil || combined.Revenue == nil {
		t.Fatalf("expected both results, got %+v", combined)
	}
	if combined.GroupError != "" || combined.RevenueError != "" {
		t.Fatalf("unexpected task errors: %+v", combined)
	}
}

func TestPredictAllPartialFailure(t *testing.T) {
	service := NewService(testRegistry(&fakeClusterer{cluster: 1}, &fakeRegressor{value: 9.4}, nil), nil)

	record := fullRecord()
	delete(record, "NetRevenue_MA3")

	combined := service.PredictAll(ml.VariantKMeans, ml.VariantXGBoost, record, false)
	if combined.Group == nil {
		t.Fatalf("expected group result despite revenue failure, got %+v", combined)
	}
	if combined.Revenue != nil || combined.RevenueError == "" {
		t.Fatalf("expected revenue task error, got %+v", combined)
	}
	if !strings.Contains(combined.RevenueError, "NetRevenue_MA3") {
		t.Fatalf("expected error naming the missing field, got %q", combined.RevenueError)
	}
}

func TestPredictIdempotent(t *testing.T) {
	service := NewService(testRegistry(&fakeClusterer{cluster: 3}, &fakeRegressor{value: 8.88}, nil), nil)

	first := service.PredictAll(ml.VariantKMeans, ml.VariantXGBoost, fullRecord(), true)
	second := service.PredictAll(ml.VariantKMeans, ml.VariantXGBoost, fullRecord(), true)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical outputs, got %+v and %+v", first, second)
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := map[float64]string{
		12345.67:    "$12,345.67",
		0:           "$0.00",
		1234567.891: "$1,234,567.89",
		-1234.5:     "$-1,234.50",
	}
	for value, want := range cases {
		if got := FormatCurrency(value); got != want {
			t.Fatalf("expected %s for %v, got %s", want, value, got)
		}
	}
}
