package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/sjkim/vega/internal/api/handlers"
	"github.com/sjkim/vega/pkg/database"
	"github.com/sjkim/vega/pkg/logger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	db *database.DB,
	backtestHandler *handlers.BacktestHandler,
	thresholdHandler *handlers.ThresholdHandler,
	scoreHandler *handlers.ScoreHandler,
	liquidityHandler *handlers.LiquidityHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(db)).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Backtest endpoints
	api.HandleFunc("/backtest/run", backtestHandler.Run).Methods("POST")
	api.HandleFunc("/backtest/walkforward", backtestHandler.WalkForward).Methods("POST")
	api.HandleFunc("/backtest/results", backtestHandler.Results).Methods("GET")

	// Threshold endpoints
	api.HandleFunc("/thresholds/rolling", thresholdHandler.GetRolling).Methods("GET")
	api.HandleFunc("/thresholds/sector/{sector}", thresholdHandler.GetSector).Methods("GET")

	// Scoring endpoints
	api.HandleFunc("/score/preview", scoreHandler.Preview).Methods("POST")

	// Liquidity endpoints
	api.HandleFunc("/liquidity/check", liquidityHandler.Check).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	api.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(10), 20), log))

	return r
}

// healthCheckHandler returns server health status, including database
// connectivity and pool statistics when a database is attached.
func healthCheckHandler(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"status":  "ok",
			"service": "vega-api",
		}
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				resp["status"] = "degraded"
				resp["database"] = "unreachable"
			} else {
				resp["database"] = db.Stats()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware throttles the API endpoints. Backtest runs hold a
// database connection for their whole duration, so the limiter is shared
// across all routes rather than per-client.
func rateLimitMiddleware(limiter *rate.Limiter, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.WithFields(map[string]interface{}{
					"path": r.URL.Path,
				}).Warn("Rate limit exceeded")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
