package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spf13/cast"

	"github.com/mind-engage/mindengage-grader/internal/assessment"
	"github.com/mind-engage/mindengage-grader/internal/grading"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, grading.ErrUnsupportedQuestionType) && !errors.Is(err, assessment.ErrInvalidQuestion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, assessment.ErrInvalidQuestion), errors.Is(err, assessment.ErrInvalidSubmission):
		return http.StatusBadRequest
	case assessment.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	http.Error(w, msg, status)
}

// parseIntDefault reads a non-negative integer query value, falling back to def.
func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := cast.ToIntE(s); err == nil && v >= 0 {
		return v
	}
	return def
}
