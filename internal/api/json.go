package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// envelope is the uniform response body: {success, data?, message?, count?}.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func respondDataMessage(w http.ResponseWriter, status int, data any, msg string) {
	writeJSON(w, status, envelope{Success: true, Message: msg, Data: data})
}

func respondList(w http.ResponseWriter, data any, count int) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Count: &count, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: true, Message: msg})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Message: msg})
}
