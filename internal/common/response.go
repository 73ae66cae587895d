package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"catalog_api/internal/platform/logger"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithServiceError writes err using its mapped status. Validation
// failures are answered with the bare field map; internal errors are logged
// and hidden from the client.
func RespondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		RespondWithJSON(w, http.StatusBadRequest, verr.Fields)
		return
	}

	code := HTTPStatusFromError(err)
	if code >= http.StatusInternalServerError {
		logger.WithError(err).WithFields(map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		RespondWithError(w, code, http.StatusText(code))
		return
	}
	RespondWithError(w, code, err.Error())
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
