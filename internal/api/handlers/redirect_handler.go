package handlers

import (
	"net/http"

	"shortr/internal/engine/links"
	"shortr/internal/engine/redirect"
	"shortr/internal/pkg/errors"
	"shortr/internal/pkg/parser"
)

type RedirectHandler struct {
	redirects *redirect.Service
}

func NewRedirectHandler(svc *redirect.Service) *RedirectHandler {
	return &RedirectHandler{redirects: svc}
}

// Handle sends the visitor to the original URL and records the click in the
// background. Expired links still redirect. HEAD requests are answered
// without counting a click.
func (h *RedirectHandler) Handle(w http.ResponseWriter, r *http.Request) {
	shortCode := param(r, "shortcode")
	if links.ValidateShortcode(shortCode) != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Link not found", nil)
		return
	}

	var (
		target *redirect.CachedLink
		err    error
	)
	if r.Method == http.MethodHead {
		target, err = h.redirects.Resolve(r.Context(), shortCode)
	} else {
		target, err = h.redirects.Visit(r.Context(), shortCode, parser.ClientIP(r), r.UserAgent())
	}
	if err != nil {
		writeLinkError(w, err)
		return
	}

	http.Redirect(w, r, target.OriginalURL, http.StatusFound)
}
