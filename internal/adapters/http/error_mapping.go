package httpadapter

import (
	"net/http"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput),
		domain.IsKind(err, domain.ErrInvalidStrategy):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrEmptyInput):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
