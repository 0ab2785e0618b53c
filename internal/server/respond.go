package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperr "github.com/matzehuels/netdraw/pkg/errors"
	"github.com/matzehuels/netdraw/pkg/session"
	"github.com/matzehuels/netdraw/pkg/storage"
)

// maxRequestSize bounds JSON request bodies.
const maxRequestSize = 1 << 20

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, status := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: apperr.UserMessage(err)}})
}

// classify maps an error to its code and HTTP status.
func classify(err error) (apperr.Code, int) {
	switch {
	case errors.Is(err, session.ErrInvalidID):
		return apperr.ErrCodeInvalidInput, http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return apperr.ErrCodeSessionNotFound, http.StatusNotFound
	case errors.Is(err, storage.ErrNotFound):
		return apperr.ErrCodeDocumentNotFound, http.StatusNotFound
	}

	code := apperr.GetCode(err)
	switch code.Kind() {
	case apperr.KindInvalid:
		return code, http.StatusBadRequest
	case apperr.KindNotFound:
		return code, http.StatusNotFound
	case apperr.KindConflict:
		return code, http.StatusConflict
	case apperr.KindUnsupported:
		return code, http.StatusNotImplemented
	}
	return apperr.ErrCodeInternal, http.StatusInternalServerError
}

// decodeJSON reads a JSON body into v. An empty body leaves v unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
