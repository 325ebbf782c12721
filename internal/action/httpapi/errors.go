package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tracklane/actionledger/internal/action/domain"
)

// Error kinds exposed on the wire. They map 1:1 to the domain taxonomy so
// clients can branch without parsing messages.
const (
	kindInvalidArgument = "invalid_argument"
	kindServiceUnknown  = "service_unknown"
	kindNotFound        = "not_found"
	kindAlreadyClosed   = "already_closed"
	kindInternal        = "internal"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Kind: kind, Message: message}})
}

// writeDomainError maps domain error kinds to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var unknownService domain.UnknownServiceError
	if errors.As(err, &unknownService) {
		writeError(w, http.StatusConflict, kindServiceUnknown, unknownService.Error())
		return
	}
	var notFound domain.NotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, kindNotFound, notFound.Error())
		return
	}
	var alreadyClosed domain.AlreadyClosedError
	if errors.As(err, &alreadyClosed) {
		writeError(w, http.StatusConflict, kindAlreadyClosed, alreadyClosed.Error())
		return
	}
	switch {
	case errors.Is(err, domain.ErrServiceRequired),
		errors.Is(err, domain.ErrActionIDRequired),
		errors.Is(err, domain.ErrEmptyUpdate):
		writeError(w, http.StatusBadRequest, kindInvalidArgument, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, kindInternal, err.Error())
	}
}
