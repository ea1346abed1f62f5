package middlewares

import (
	"encoding/json"
	"net/http"
)

// Response status values shared with the handlers.
const (
	statusFail  = "fail"
	statusError = "error"
)

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
