package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/raahi/backend/internal/domain"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errBadRequest marks a request rejected before it reached the service
// layer, e.g. a missing or malformed body.
var errBadRequest = errors.New("bad request")

// writeError maps err onto a status and error body. Unknown errors become a
// generic 500 and are logged with the request id; their text never reaches
// the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, http.StatusBadRequest, "validation_error", unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, errBadRequest):
		writeErrorBody(w, http.StatusBadRequest, "validation_error", unwrapMessage(err, errBadRequest))
	case errors.Is(err, domain.ErrConflict):
		writeErrorBody(w, http.StatusBadRequest, "conflict", unwrapMessage(err, domain.ErrConflict))
	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorBody(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
	case errors.Is(err, domain.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, "not_found", "travel card not found")
	case errors.As(err, &tooLarge):
		writeErrorBody(w, http.StatusRequestEntityTooLarge, "payload_too_large",
			fmt.Sprintf("request body must not exceed %d bytes", tooLarge.Limit))
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"error", err,
		)
		writeErrorBody(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) notFound(w http.ResponseWriter, _ *http.Request) {
	writeErrorBody(w, http.StatusNotFound, "not_found", "route not found")
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeErrorBody(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}

// unwrapMessage extracts the human-readable part that follows sentinel in a
// wrapped error chain.
// e.g. "service.TravelCardService.Create: validation error: hotel_name is required (hotels[0])"
// → "hotel_name is required (hotels[0])"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if _, rest, ok := strings.Cut(msg, marker); ok && rest != "" {
		return rest
	}
	return sentinel.Error()
}

// decodeJSON reads the request body into dst. A body over the size limit
// yields *http.MaxBytesError; every other failure wraps errBadRequest.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}
	var (
		tooLarge  *http.MaxBytesError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		dateErr   *time.ParseError
	)
	switch {
	case errors.As(err, &tooLarge):
		return tooLarge
	case errors.Is(err, io.EOF):
		return fmt.Errorf("%w: request body is required", errBadRequest)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return fmt.Errorf("%w: %s has the wrong type", errBadRequest, typeErr.Field)
	case errors.As(err, &dateErr):
		return fmt.Errorf("%w: dates must be formatted YYYY-MM-DD", errBadRequest)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: malformed JSON body", errBadRequest)
	default:
		return fmt.Errorf("%w: %s", errBadRequest, err.Error())
	}
}

// validateStruct runs the validator over v and turns the first field error
// into an errBadRequest. prefix is prepended to the field path.
func (s *Server) validateStruct(v any, prefix string) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %s", errBadRequest, err.Error())
	}
	return fmt.Errorf("%w: %s", errBadRequest, describe(fieldErrs[0], prefix))
}

func describe(fe validator.FieldError, prefix string) string {
	// Namespace is "structName.field[0].sub"; drop the struct name.
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	if field == "" {
		field = fe.Field()
	}
	field = prefix + field
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
