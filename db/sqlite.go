package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"airbnbprice/ml"
	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

var ErrNotInitialized = errors.New("database not initialized")

// PredictionRecord is one row of the prediction history.
type PredictionRecord struct {
	ID        string     `json:"id"`
	Listing   ml.Listing `json:"listing"`
	Price     float64    `json:"price"`
	ModelName string     `json:"model_name"`
	CreatedAt time.Time  `json:"created_at"`
}

// InitDB opens the SQLite history log at path, creating its directory and schema.
func InitDB(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	// SQLite serialises writers; one connection avoids "database is locked" under concurrent requests.
	conn.SetMaxOpenConns(1)

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id TEXT PRIMARY KEY,
        neighbourhood_group TEXT NOT NULL,
        room_type TEXT NOT NULL,
        latitude REAL NOT NULL,
        longitude REAL NOT NULL,
        minimum_nights INTEGER NOT NULL,
        number_of_reviews INTEGER NOT NULL,
        availability_365 INTEGER NOT NULL,
        price REAL NOT NULL,
        model_name TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
    `
	if _, err := conn.Exec(query); err != nil {
		conn.Close()
		return err
	}

	if database != nil {
		database.Close()
	}
	database = conn
	return nil
}

func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

func Enabled() bool {
	return database != nil
}

func SavePrediction(ctx context.Context, rec PredictionRecord) error {
	if database == nil {
		return ErrNotInitialized
	}
	if rec.ID == "" {
		return errors.New("prediction id required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	l := rec.Listing
	_, err := database.ExecContext(ctx, `
        INSERT INTO predictions (
            id, neighbourhood_group, room_type, latitude, longitude,
            minimum_nights, number_of_reviews, availability_365,
            price, model_name, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, l.NeighbourhoodGroup, l.RoomType, l.Latitude, l.Longitude,
		l.MinimumNights, l.NumberOfReviews, l.Availability365,
		rec.Price, rec.ModelName, rec.CreatedAt.UTC())
	return err
}

// QueryPredictions returns the most recent predictions, newest first.
func QueryPredictions(ctx context.Context, limit int) ([]PredictionRecord, error) {
	if database == nil {
		return nil, ErrNotInitialized
	}
	rows, err := database.QueryContext(ctx, `
        SELECT id, neighbourhood_group, room_type, latitude, longitude,
               minimum_nights, number_of_reviews, availability_365,
               price, model_name, created_at
        FROM predictions
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0)
	for rows.Next() {
		var r PredictionRecord
		l := &r.Listing
		if err := rows.Scan(&r.ID, &l.NeighbourhoodGroup, &l.RoomType, &l.Latitude, &l.Longitude,
			&l.MinimumNights, &l.NumberOfReviews, &l.Availability365,
			&r.Price, &r.ModelName, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
