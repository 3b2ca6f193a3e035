package followtest

import (
	"encoding/json"
	"net/http"
)

// timestamps are sent without a timezone, as the real service does
const timestampFormat = "2006-01-02T15:04:05.000000"

type validationError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func respondWithError(w http.ResponseWriter, statusCode int, detail string) {
	respondWithJSON(w, statusCode, map[string]string{"detail": detail})
}

// respondWithValidationError reports missing request fields the way the service's request validation does
func respondWithValidationError(w http.ResponseWriter, location string, fields ...string) {
	errs := make([]validationError, 0, len(fields))
	for _, field := range fields {
		errs = append(errs, validationError{
			Loc:  []string{location, field},
			Msg:  "field required",
			Type: "value_error.missing",
		})
	}
	respondWithJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": errs})
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
