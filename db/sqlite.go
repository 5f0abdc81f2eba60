package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InitDB initializes the SQLite database used for prediction history
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        request_id TEXT NOT NULL,
        task VARCHAR(20) NOT NULL,
        variant VARCHAR(30) NOT NULL,
        input_json TEXT NOT NULL,
        result_json TEXT NOT NULL,
        latency_ms REAL DEFAULT 0,
        created_at DATETIME NOT NULL,
        UNIQUE(request_id, task)
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
    `

	_, err = database.Exec(query)
	return err
}

// Close closes the database connection
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// PredictionRecord is one persisted prediction
type PredictionRecord struct {
	ID        int64     `json:"id"`
	RequestID string    `json:"request_id"`
	Task      string    `json:"task"`
	Variant   string    `json:"variant"`
	Input     string    `json:"input"`
	Result    string    `json:"result"`
	LatencyMs float64   `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// SavePrediction persists one prediction outcome
func SavePrediction(record PredictionRecord) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err := database.Exec(
		`INSERT OR IGNORE INTO predictions (request_id, task, variant, input_json, result_json, latency_ms, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.RequestID, record.Task, record.Variant, record.Input, record.Result, record.LatencyMs, record.CreatedAt,
	)
	return err
}

// QueryRecentPredictions returns the most recent predictions, newest first
func QueryRecentPredictions(limit int) ([]PredictionRecord, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := database.Query(
		`SELECT id, request_id, task, variant, input_json, result_json, latency_ms, created_at
         FROM predictions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PredictionRecord
	for rows.Next() {
		var record PredictionRecord
		if err := rows.Scan(&record.ID, &record.RequestID, &record.Task, &record.Variant,
			&record.Input, &record.Result, &record.LatencyMs, &record.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
