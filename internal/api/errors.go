package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
	"github.com/nerrad567/colo-planner-core/internal/tilespace"
	"github.com/nerrad567/colo-planner-core/internal/workspace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeInternal   = "internal_error"
	ErrCodeValidation = "validation_error"
	ErrCodeTooLarge   = "request_too_large"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps a domain error onto a status and code. Errors
// not recognised here are reported as internal with fallback as message.
func writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, colo.ErrColoNotFound),
		errors.Is(err, colo.ErrDataCenterNotFound),
		errors.Is(err, reservation.ErrDataCenterNotFound),
		errors.Is(err, reservation.ErrGroupNotFound),
		errors.Is(err, workspace.ErrSessionNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, colo.ErrInvalidSnapshot),
		errors.Is(err, colo.ErrInvalidRack),
		errors.Is(err, reservation.ErrInvalidReservation),
		errors.Is(err, tilespace.ErrInvalidFrame),
		errors.Is(err, tilespace.ErrInvalidLabel),
		errors.Is(err, tilespace.ErrLabelRange),
		errors.Is(err, tilespace.ErrInvalidRow),
		errors.Is(err, tilespace.ErrDiagonalSpan):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	default:
		writeInternalError(w, fallback)
	}
}

// errEmptyBody is returned by readBody for a blank request body.
var errEmptyBody = errors.New("request body is empty")

// readBody reads the whole request body. Size limit violations keep their
// *http.MaxBytesError type so callers can answer 413.
func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptyBody
	}
	return data, nil
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	data, err := readBody(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeBodyError answers a request whose body could not be read or parsed.
func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
		return
	}
	writeBadRequest(w, "invalid request body: "+err.Error())
}
