package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"prodquant/db"
	"prodquant/ml"
	"prodquant/monitoring"
	"prodquant/predict"
)

// API holds the request-facing collaborators. The prediction service and
// registry are injected at startup; handlers never reach for globals.
type API struct {
	service *predict.Service
	metrics *monitoring.MetricsCollector
	recent  *monitoring.RecentPredictions
	hub     *monitoring.Hub
	logger  *zap.Logger
	persist bool
}

func NewAPI(service *predict.Service, metrics *monitoring.MetricsCollector, recent *monitoring.RecentPredictions, hub *monitoring.Hub, logger *zap.Logger, persist bool) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		service: service,
		metrics: metrics,
		recent:  recent,
		hub:     hub,
		logger:  logger,
		persist: persist,
	}
}

// Register registers all API routes
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("GET /api", a.handleAPIInfo)
	mux.HandleFunc("POST /api/predict/group", a.handlePredictGroup)
	mux.HandleFunc("POST /api/predict/revenue", a.handlePredictRevenue)
	mux.HandleFunc("POST /api/predict/all", a.handlePredictAll)
	mux.HandleFunc("GET /api/predictions/recent", a.handleRecentPredictions)
	mux.HandleFunc("GET /api/metrics", a.handleMetrics)
	if a.hub != nil {
		mux.HandleFunc("GET /api/ws/predictions", a.hub.HandleWebSocket)
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *API) handleAPIInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"message": "Product Group & Revenue Prediction API is running.",
		"endpoints": map[string]interface{}{
			"POST /api/predict/group?model=kmeans|dbscan": map[string]interface{}{
				"expect_json": map[string]string{
					"NetRevenue":         "float",
					"NetQuantity":        "float",
					"NumTransactions":    "int",
					"NumUniqueCustomers": "int",
				},
			},
			"POST /api/predict/revenue?model=random_forest|xgboost": map[string]interface{}{
				"expect_json": map[string]string{
					"NetRevenue":           "float",
					"NetRevenue_LastMonth": "float",
					"NetRevenue_MA3":       "float",
					"Month":                "int",
					"ProductFrequency":     "int",
				},
			},
			"POST /api/predict/all?group_model=kmeans|dbscan&rev_model=random_forest|xgboost": map[string]interface{}{
				"expect_json": map[string]string{
					"NetRevenue":           "float",
					"NetQuantity":          "float",
					"NumTransactions":      "int",
					"NumUniqueCustomers":   "int",
					"NetRevenue_LastMonth": "float",
					"NetRevenue_MA3":       "float",
					"Month":                "int",
					"ProductFrequency":     "int",
				},
			},
			"GET /api/predictions/recent?limit=N": "persisted prediction history",
			"GET /api/metrics":                    "prediction counters and latency summary",
			"GET /api/ws/predictions":             "websocket live feed of prediction events",
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

func (a *API) handlePredictGroup(w http.ResponseWriter, r *http.Request) {
	record, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	variant := r.URL.Query().Get("model")
	if variant == "" {
		variant = ml.VariantKMeans
	}

	start := time.Now()
	result, err := a.service.PredictGroup(variant, record)
	a.observe(r, string(ml.TaskGrouping), variant, record, result, time.Since(start), err)
	if err != nil {
		writePredictError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"model_used":      result.ModelUsed,
		"predicted_group": result.PredictedGroup,
		"group_info":      result.GroupInfo,
		"input_data":      record,
		"request_id":      GetRequestID(r.Context()),
	})
}

func (a *API) handlePredictRevenue(w http.ResponseWriter, r *http.Request) {
	record, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	variant := r.URL.Query().Get("model")
	if variant == "" {
		variant = ml.VariantXGBoost
	}
	withDebug := isDebug(r)

	start := time.Now()
	result, err := a.service.PredictRevenue(variant, record, withDebug)
	a.observe(r, string(ml.TaskRevenue), variant, record, result, time.Since(start), err)
	if err != nil {
		writePredictError(w, err)
		return
	}

	response := map[string]interface{}{
		"model_used":         result.ModelUsed,
		"next_month_revenue": result.NextMonthRevenue,
		"input_data":         record,
		"request_id":         GetRequestID(r.Context()),
	}
	if result.Debug != nil {
		response["debug"] = result.Debug
	}
	writeJSON(w, response)
}

func (a *API) handlePredictAll(w http.ResponseWriter, r *http.Request) {
	record, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	groupVariant := r.URL.Query().Get("group_model")
	if groupVariant == "" {
		groupVariant = ml.VariantKMeans
	}
	revenueVariant := r.URL.Query().Get("rev_model")
	if revenueVariant == "" {
		revenueVariant = ml.VariantXGBoost
	}

	start := time.Now()
	combined := a.service.PredictAll(groupVariant, revenueVariant, record, isDebug(r))
	elapsed := time.Since(start)
	a.observe(r, string(ml.TaskGrouping), groupVariant, record, combined.Group, elapsed, taskErr(combined.GroupError))
	a.observe(r, string(ml.TaskRevenue), revenueVariant, record, combined.Revenue, elapsed, taskErr(combined.RevenueError))

	// 两个任务都失败时按客户端错误处理，只要有一个成功就返回部分结果
	if combined.Group == nil && combined.Revenue == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"group_error":   combined.GroupError,
			"revenue_error": combined.RevenueError,
		})
		return
	}

	response := map[string]interface{}{
		"input_data": record,
		"request_id": GetRequestID(r.Context()),
	}
	if combined.Group != nil {
		response["model_used_group"] = combined.Group.ModelUsed
		response["predicted_group"] = combined.Group.PredictedGroup
		response["group_info"] = combined.Group.GroupInfo
	} else {
		response["group_error"] = combined.GroupError
	}
	if combined.Revenue != nil {
		response["model_used_revenue"] = combined.Revenue.ModelUsed
		response["next_month_revenue"] = combined.Revenue.NextMonthRevenue
		if combined.Revenue.Debug != nil {
			response["debug"] = combined.Revenue.Debug
		}
	} else {
		response["revenue_error"] = combined.RevenueError
	}
	writeJSON(w, response)
}

func (a *API) handleRecentPredictions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	records, err := db.QueryRecentPredictions(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"data": records})
}

func (a *API) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.metrics.Snapshot())
}

// observe records one task outcome across the observability collaborators.
// It never affects the response.
func (a *API) observe(r *http.Request, task, variant string, record ml.Record, result interface{}, latency time.Duration, err error) {
	if a.metrics != nil {
		a.metrics.RecordPrediction(task, variant, latency, err == nil)
	}
	if err != nil {
		return
	}

	requestID := GetRequestID(r.Context())
	resultJSON, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		return
	}

	event := monitoring.PredictionEvent{
		RequestID: requestID,
		Task:      task,
		Variant:   variant,
		Result:    resultJSON,
		LatencyMs: float64(latency.Microseconds()) / 1000.0,
		Timestamp: time.Now(),
	}
	if a.recent != nil {
		a.recent.Add(event)
	}
	if a.hub != nil {
		a.hub.PublishPrediction(event)
	}
	if a.persist {
		inputJSON, _ := json.Marshal(record)
		saveErr := db.SavePrediction(db.PredictionRecord{
			RequestID: requestID,
			Task:      task,
			Variant:   variant,
			Input:     string(inputJSON),
			Result:    string(resultJSON),
			LatencyMs: event.LatencyMs,
		})
		if saveErr != nil {
			a.logger.Warn("failed to persist prediction", zap.Error(saveErr))
		}
	}
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (ml.Record, bool) {
	var record ml.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return nil, false
	}
	return record, true
}

func isDebug(r *http.Request) bool {
	switch r.URL.Query().Get("debug") {
	case "1", "true", "True":
		return true
	}
	return false
}

func taskErr(message string) error {
	if message == "" {
		return nil
	}
	return errors.New(message)
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// writePredictError maps pipeline errors to status codes: bad input is the
// caller's fault, anything else is ours.
func writePredictError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var unknown *ml.UnknownModelError
	var missing *ml.MissingFieldError
	var invalid *ml.InvalidValueError
	if errors.As(err, &unknown) || errors.As(err, &missing) || errors.As(err, &invalid) {
		status = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
