package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"storefront/internal/database"
	"storefront/internal/domain"
	"storefront/pkg/logger"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every non-2xx response. Detail is either a
// message or, for validation failures, the list of offending fields.
type errorResponse struct {
	Detail interface{} `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var (
		verr *domain.ValidationError
		nf   *domain.NotFoundError
		cerr *domain.ConnectionError
	)

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: verr.Fields})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: nf.Error()})
	case errors.Is(err, domain.ErrConstraintViolation):
		log.WarnContext(r.Context(), "Kısıt ihlali", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusConflict, errorResponse{Detail: "request conflicts with existing data"})
	case errors.Is(err, domain.ErrStorageBusy):
		log.WarnContext(r.Context(), "Veritabanı meşgul", map[string]interface{}{"error": err.Error()})
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "storage busy, retry the request"})
	case errors.As(err, &cerr), errors.Is(err, domain.ErrSessionClosed):
		log.ErrorContext(r.Context(), "Veritabanı kullanılamıyor", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "storage unavailable"})
	case errors.Is(err, context.Canceled):
		log.WarnContext(r.Context(), "İstek iptal edildi", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "request cancelled"})
	default:
		log.ErrorContext(r.Context(), "Beklenmeyen hata", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "internal server error"})
	}
}

// decodeJSON reads a single JSON object into dst. Malformed bodies become
// validation errors so the client learns which field was wrong.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	err := dec.Decode(dst)
	if err == nil {
		if dec.More() {
			return bodyError("body must contain a single JSON object")
		}
		return nil
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		sizeErr   *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return bodyError("request body required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return bodyError("malformed JSON")
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		verr := &domain.ValidationError{}
		verr.Add(field, fmt.Sprintf("expected %s", describeType(typeErr)))
		return verr
	case errors.As(err, &sizeErr):
		return bodyError(fmt.Sprintf("body larger than %d bytes", sizeErr.Limit))
	default:
		return bodyError(err.Error())
	}
}

func describeType(e *json.UnmarshalTypeError) string {
	kind := e.Type.Kind().String()
	if strings.HasPrefix(kind, "int") || strings.HasPrefix(kind, "uint") {
		return "an integer"
	}
	if kind == "struct" {
		return "an object"
	}
	return "a " + kind
}

func bodyError(message string) error {
	verr := &domain.ValidationError{}
	verr.Add("body", message)
	return verr
}

// session resolves the request's unit-of-work session.
func session(r *http.Request) (*database.Session, error) {
	return database.SessionFrom(r.Context())
}
