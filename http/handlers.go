package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"airbnbprice/db"
	"airbnbprice/estimate"
	"airbnbprice/ml"
	"airbnbprice/monitoring"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	codeMissingField     = "missing_field"
	codeUnexpectedField  = "unexpected_field"
	codeInvalidValue     = "invalid_value"
	codeUnknownCategory  = "unknown_category"
	codeModelUnavailable = "model_unavailable"
	codeBodyTooLarge     = "body_too_large"
	codeInvalidLimit     = "invalid_limit"
	codeHistoryDisabled  = "history_disabled"
	codeFeedUnavailable  = "feed_unavailable"
	codeRateLimited      = "rate_limited"
	codeInternal         = "internal_error"

	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

var (
	model  *ml.Bundle
	feed   *monitoring.Hub
	logger = zap.NewNop()
)

// SetModel installs the bundle served by every prediction route. nil makes them answer 503.
func SetModel(b *ml.Bundle) {
	model = b
}

func SetFeed(h *monitoring.Hub) {
	feed = h
}

func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/options", handleOptions)
	mux.HandleFunc("GET /api/model", handleModel)
	mux.HandleFunc("POST /api/predict", handlePredict)
	mux.HandleFunc("GET /api/predictions", handlePredictions)
	mux.HandleFunc("GET /api/ws/predictions", handleFeed)
}

type modelRef struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type predictionResult struct {
	ID       string            `json:"id"`
	Price    float64           `json:"price"`
	Estimate estimate.Estimate `json:"estimate"`
	Listing  ml.Listing        `json:"listing"`
	Model    modelRef          `json:"model"`
}

type bounds struct {
	Min float64  `json:"min"`
	Max *float64 `json:"max,omitempty"`
}

func bounded(min, max float64) bounds { return bounds{Min: min, Max: &max} }

var numericBounds = map[string]bounds{
	ml.FieldLatitude:        bounded(-90, 90),
	ml.FieldLongitude:       bounded(-180, 180),
	ml.FieldMinimumNights:   {Min: 1},
	ml.FieldNumberOfReviews: {Min: 0},
	ml.FieldAvailability365: bounded(0, 365),
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"model_loaded": model != nil,
		"history":      db.Enabled(),
	})
}

func handleOptions(w http.ResponseWriter, r *http.Request) {
	b := model
	if b == nil {
		writeError(w, http.StatusServiceUnavailable, codeModelUnavailable, ml.ErrModelNotLoaded.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		ml.FieldNeighbourhoodGroup: b.Categories(ml.FieldNeighbourhoodGroup),
		ml.FieldRoomType:           b.Categories(ml.FieldRoomType),
		"defaults":                 ml.ExampleListing(),
		"bounds":                   numericBounds,
	})
}

func handleModel(w http.ResponseWriter, r *http.Request) {
	b := model
	if b == nil {
		writeError(w, http.StatusServiceUnavailable, codeModelUnavailable, ml.ErrModelNotLoaded.Error())
		return
	}
	writeJSON(w, http.StatusOK, b.Info())
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, codeInvalidValue, "could not read request body")
		return
	}

	record, err := ml.ParseRecord(body)
	if err != nil {
		monitoring.RecordPrediction("api", monitoring.OutcomeInvalidInput, 0, "", 0)
		writeError(w, http.StatusBadRequest, codeInvalidValue, err.Error())
		return
	}

	result, err := runPrediction(r.Context(), "api", record)
	if err != nil {
		status, code, message := classifyError(err)
		if status == http.StatusInternalServerError {
			logger.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		}
		writeError(w, status, code, message)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func handlePredictions(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, codeInvalidLimit, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	if !db.Enabled() {
		writeError(w, http.StatusServiceUnavailable, codeHistoryDisabled, "prediction history is disabled")
		return
	}
	records, err := db.QueryPredictions(r.Context(), limit)
	if err != nil {
		logger.Error("query prediction history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "could not read prediction history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"predictions": records,
		"count":       len(records),
	})
}

func handleFeed(w http.ResponseWriter, r *http.Request) {
	if feed == nil {
		writeError(w, http.StatusServiceUnavailable, codeFeedUnavailable, "prediction feed is not running")
		return
	}
	feed.ServeWS(w, r)
}

// runPrediction scores record against the installed bundle, then records the outcome in metrics,
// the history log and the live feed. Only the scoring can fail the call.
func runPrediction(ctx context.Context, source string, record ml.Record) (*predictionResult, error) {
	b := model
	if b == nil {
		monitoring.RecordPrediction(source, monitoring.OutcomeNoModel, 0, "", 0)
		return nil, ml.ErrModelNotLoaded
	}

	start := time.Now()
	listing, price, err := ml.PredictListing(b, record)
	elapsed := time.Since(start)
	if err != nil {
		outcome := monitoring.OutcomeError
		if ml.IsInputError(err) {
			outcome = monitoring.OutcomeInvalidInput
		}
		monitoring.RecordPrediction(source, outcome, elapsed, "", 0)
		return nil, err
	}
	monitoring.RecordPrediction(source, monitoring.OutcomeSuccess, elapsed, listing.RoomType, price)

	result := &predictionResult{
		ID:       uuid.NewString(),
		Price:    price,
		Estimate: estimate.Build(price, listing),
		Listing:  listing,
		Model:    modelRef{Name: b.Name, Version: b.Version},
	}

	if db.Enabled() {
		err := db.SavePrediction(ctx, db.PredictionRecord{
			ID:        result.ID,
			Listing:   listing,
			Price:     price,
			ModelName: b.Name,
			CreatedAt: time.Now(),
		})
		if err != nil {
			monitoring.HistoryWriteErrors.Inc()
			logger.Warn("save prediction", zap.String("prediction_id", result.ID), zap.Error(err))
		}
	}
	if feed != nil {
		if err := feed.Broadcast(monitoring.MessagePrediction, result); err != nil {
			logger.Debug("broadcast prediction", zap.Error(err))
		}
	}

	logger.Debug("prediction",
		zap.String("prediction_id", result.ID),
		zap.String("source", source),
		zap.Float64("price", price),
		zap.Duration("duration", elapsed),
	)
	return result, nil
}

func classifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, ml.ErrModelNotLoaded):
		return http.StatusServiceUnavailable, codeModelUnavailable, err.Error()
	case errors.Is(err, ml.ErrMissingField):
		return http.StatusBadRequest, codeMissingField, err.Error()
	case errors.Is(err, ml.ErrUnexpectedField):
		return http.StatusBadRequest, codeUnexpectedField, err.Error()
	case errors.Is(err, ml.ErrUnknownCategory):
		return http.StatusBadRequest, codeUnknownCategory, err.Error()
	case errors.Is(err, ml.ErrInvalidValue):
		return http.StatusBadRequest, codeInvalidValue, err.Error()
	default:
		return http.StatusInternalServerError, codeInternal, "prediction failed"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "error": message})
}
