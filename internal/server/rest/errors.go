package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// errorStatus maps service sentinels to HTTP status codes. The response body
// carries the sentinel text only.
var errorStatus = []struct {
	err    error
	status int
}{
	{common.ErrorAlreadyExists, http.StatusConflict},
	{common.ErrorNotFound, http.StatusNotFound},
	{common.ErrorInvalidCredential, http.StatusBadRequest},
	{common.ErrorUnauthorized, http.StatusUnauthorized},
	{common.ErrInvalidToken, http.StatusUnauthorized},
	{common.ErrTokenExpired, http.StatusUnauthorized},
	{common.ErrorTooManyRequests, http.StatusTooManyRequests},
	{common.ErrorDependencyFailure, http.StatusBadGateway},
	{common.ErrorValidation, http.StatusBadRequest},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: reqErr.msg, Fields: reqErr.fields})
		return
	}

	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			writeJSON(w, e.status, errorResponse{Error: e.err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: common.ErrorInternal.Error()})
}
