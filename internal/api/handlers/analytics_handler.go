package handlers

import (
	"net/http"
	"strconv"

	"shortr/internal/engine/analytics"
	"shortr/internal/pkg/errors"
)

type AnalyticsHandler struct {
	analytics *analytics.Service
}

func NewAnalyticsHandler(svc *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: svc}
}

func (h *AnalyticsHandler) GetLinkAnalytics(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	report, err := h.analytics.Report(r.Context(), param(r, "shortcode"), limit)
	if err != nil {
		writeLinkError(w, err)
		return
	}

	errors.WriteJSON(w, http.StatusOK, report)
}

func (h *AnalyticsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.analytics.Overview(r.Context())
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to compute overview", nil)
		return
	}

	errors.WriteJSON(w, http.StatusOK, overview)
}
