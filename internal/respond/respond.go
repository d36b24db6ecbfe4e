// internal/respond/respond.go
package respond

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"libris/internal/apperr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON writes v as a JSON body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Error maps the error's kind to an HTTP status and writes a JSON error
// body. Unclassified errors become 500 with a generic message so internal
// detail never leaks to clients.
func Error(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)

	var status int
	msg := err.Error()
	switch kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindTransient:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
		msg = "internal server error"
	}

	JSON(w, status, errorBody{Error: msg, Kind: kind.String()})
}
