package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"shortr/internal/pkg/errors"
)

// pinger is implemented by caches backed by a remote server.
type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    *sql.DB
	cache interface{}
}

// NewHealthHandler checks db and, when it can be pinged, the link cache.
func NewHealthHandler(db *sql.DB, cache interface{}) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"database": probe(h.db.PingContext(ctx))}
	if p, ok := h.cache.(pinger); ok {
		checks["cache"] = probe(p.Ping(ctx))
	}

	status, code := "healthy", http.StatusOK
	for _, v := range checks {
		if v != "healthy" {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	errors.WriteJSON(w, code, struct {
		Status    string            `json:"status"`
		Timestamp int64             `json:"timestamp"`
		Checks    map[string]string `json:"checks"`
	}{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Checks:    checks,
	})
}

func probe(err error) string {
	if err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}
