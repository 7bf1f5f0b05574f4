package routes

import (
	"aquanqa/aquanqa/services/chatbot"
	"aquanqa/aquanqa/services/knowledge"
	"encoding/json"
	"errors"
	"net/http"
)

// handleJSON wraps a handler returning (payload, status, error) into the
// {"status": "success"|"error"} envelope the API speaks.
func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			writeError(w, statusFor(err, status), err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": res})
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"status": "error", "error": err.Error()})
}

// statusFor maps service errors to HTTP codes; the passed status wins
// when the handler already chose one.
func statusFor(err error, status int) int {
	if status != 0 && status != http.StatusOK {
		return status
	}
	switch {
	case errors.Is(err, chatbot.ErrInvalidQuestion),
		errors.Is(err, knowledge.ErrInvalidData),
		errors.Is(err, knowledge.ErrDuplicateQuestion):
		return http.StatusBadRequest
	case errors.Is(err, knowledge.ErrNotFound),
		errors.Is(err, knowledge.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatbot.ErrModelUnavailable),
		errors.Is(err, chatbot.ErrNoKnowledgeIndexed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
