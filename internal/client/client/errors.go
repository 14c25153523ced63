package client

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrInvalid         = errors.New("invalid request")
	ErrTooManyRequests = errors.New("too many requests")
	ErrNotLoggedIn     = errors.New("not logged in")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	}

	names := make([]string, 0, len(e.Fields))
	for name, rule := range e.Fields {
		names = append(names, name+": "+rule)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Message, strings.Join(names, ", "), e.StatusCode)
}

// Is matches the sentinel for the response status.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusConflict:
		return target == ErrConflict
	case http.StatusBadRequest:
		return target == ErrInvalid
	case http.StatusTooManyRequests:
		return target == ErrTooManyRequests
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return target == ErrUnavailable
	}
	return false
}
