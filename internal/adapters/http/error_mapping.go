package httpadapter

import (
	"net/http"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrConfiguration):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrExternalService),
		domain.IsKind(err, domain.ErrTemporary),
		domain.IsKind(err, domain.ErrInsufficientData):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
