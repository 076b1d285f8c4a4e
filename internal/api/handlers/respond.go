package handlers

import (
	stderrors "errors"
	"net/http"

	apiContext "shortr/internal/api/context"
	"shortr/internal/engine/links"
	"shortr/internal/pkg/errors"
)

func param(r *http.Request, name string) string {
	return apiContext.RouteParam(r.Context(), name)
}

// writeLinkError maps link domain errors onto HTTP responses.
func writeLinkError(w http.ResponseWriter, err error) {
	var validationErr *links.ValidationError
	switch {
	case stderrors.As(err, &validationErr):
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, validationErr.Message, errors.FieldError{Field: validationErr.Field})
	case stderrors.Is(err, links.ErrCodeExists):
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Shortcode already exists", nil)
	case stderrors.Is(err, links.ErrNotFound):
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Link not found", nil)
	case stderrors.Is(err, links.ErrExhaustedCodeSpace):
		errors.WriteError(w, http.StatusServiceUnavailable, errors.ErrCodeCodeSpace, "Could not generate a unique shortcode", nil)
	default:
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error", nil)
	}
}
