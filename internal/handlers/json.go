package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"pagebuilder/internal/pages"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}

type errResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// decodeJSON reads a JSON body into dst and runs its validation rules.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst validation.Validatable) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &badRequestError{err: err}
	}
	return dst.Validate()
}

type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return "invalid request body: " + e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

// writeError maps domain and validation errors to HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		badReq *badRequestError
		fields validation.Errors
		cycle  *pages.CycleError
	)
	switch {
	case errors.As(err, &badReq):
		writeJSON(w, http.StatusBadRequest, errorBody(badReq.Error()))
	case errors.As(err, &fields):
		body := errorBody("validation failed")
		body.Fields = make(map[string]string, len(fields))
		for name, ferr := range fields {
			body.Fields[name] = ferr.Error()
		}
		writeJSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, pages.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("page not found"))
	case errors.As(err, &cycle):
		writeJSON(w, http.StatusConflict, errorBody(cycle.Error()))
	default:
		slog.Error("page request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
