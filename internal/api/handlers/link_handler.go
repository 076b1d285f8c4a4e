package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"shortr/internal/engine/links"
	"shortr/internal/engine/redirect"
	"shortr/internal/pkg/errors"
	"shortr/internal/pkg/parser"
)

const maxBatchSize = 100

type LinkHandler struct {
	links    *links.Service
	recorder *redirect.ClickRecorder
}

func NewLinkHandler(svc *links.Service, recorder *redirect.ClickRecorder) *LinkHandler {
	return &LinkHandler{links: svc, recorder: recorder}
}

func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req links.Candidate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	link, err := h.links.Shorten(r.Context(), req)
	if err != nil {
		writeLinkError(w, err)
		return
	}

	errors.WriteJSON(w, http.StatusCreated, link)
}

type batchResponse struct {
	*links.BatchResult
	IssuedCount int `json:"issued_count"`
	FailedCount int `json:"failed_count"`
}

func (h *LinkHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URLs []links.Candidate `json:"urls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if len(req.URLs) == 0 || len(req.URLs) > maxBatchSize {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Batch must contain between 1 and 100 URLs", errors.FieldError{Field: "urls"})
		return
	}

	result := h.links.ShortenBatch(r.Context(), req.URLs)
	issued, failed := result.Counts()

	errors.WriteJSON(w, http.StatusOK, batchResponse{
		BatchResult: result,
		IssuedCount: issued,
		FailedCount: failed,
	})
}

func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	linksList, err := h.links.ListLinks(r.Context(), limit, offset)
	if err != nil {
		writeLinkError(w, err)
		return
	}
	total, err := h.links.CountLinks(r.Context())
	if err != nil {
		writeLinkError(w, err)
		return
	}

	errors.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"links": linksList,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.GetLink(r.Context(), param(r, "shortcode"))
	if err != nil {
		writeLinkError(w, err)
		return
	}

	errors.WriteJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.GetLink(r.Context(), param(r, "shortcode"))
	if err != nil {
		writeLinkError(w, err)
		return
	}

	size := 0
	if s := r.URL.Query().Get("size"); s != "" {
		if size, err = strconv.Atoi(s); err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid size", errors.FieldError{Field: "size"})
			return
		}
	}

	png, err := links.GenerateQRCode(link.ShortURL, size)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), errors.FieldError{Field: "size"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(png)
}

// RecordClick simulates a visit without redirecting.
func (h *LinkHandler) RecordClick(w http.ResponseWriter, r *http.Request) {
	click, err := h.recorder.Record(r.Context(), param(r, "shortcode"), parser.ClientIP(r), r.UserAgent())
	if err != nil {
		writeLinkError(w, err)
		return
	}

	errors.WriteJSON(w, http.StatusCreated, click)
}
