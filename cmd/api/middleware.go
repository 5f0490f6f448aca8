// cmd/api/middleware.go

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/common/utils"
	"github.com/imadgeboyega/kiekky-couples/internal/games/spectrum"
)

// requestLogger logs every request with its status and duration
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote", r.RemoteAddr,
			)
		})
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// healthCheck reports database and Redis reachability plus live socket count
func healthCheck(db *sqlx.DB, redisClient *redis.Client, hub *spectrum.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := map[string]string{"database": "ok", "redis": "disabled"}
		if err := db.PingContext(ctx); err != nil {
			checks["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
		if redisClient != nil {
			checks["redis"] = "ok"
			if err := redisClient.Ping(ctx).Err(); err != nil {
				// Redis is optional, report but stay healthy
				checks["redis"] = "unreachable"
			}
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		utils.RespondWithJSON(w, status, map[string]interface{}{
			"status":           state,
			"checks":           checks,
			"spectrum_sockets": hub.ActiveConnections(),
			"timestamp":        time.Now().Format(time.RFC3339),
			"uptime":           time.Since(startTime).String(),
		})
	}
}
