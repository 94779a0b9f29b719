package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-grader/internal/assessment"
	"github.com/mind-engage/mindengage-grader/internal/grading"
)

type gradeReq struct {
	Type string `json:"type"`
	grading.Documents
}

// POST /grade
func GradeHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gradeReq
		if !decodeBody(w, r, &req) {
			return
		}
		res, err := svc.GradeOne(r.Context(), req.Type, req.Documents)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type gradeAttemptReq struct {
	UserID    string                     `json:"user_id"`
	Responses map[string]json.RawMessage `json:"responses"`
}

// POST /attempts/{attemptID}/grade
func GradeAttemptHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := strings.TrimSpace(chi.URLParam(r, "attemptID"))
		if attemptID == "" {
			http.Error(w, "attemptID required", http.StatusBadRequest)
			return
		}
		var req gradeAttemptReq
		if !decodeBody(w, r, &req) {
			return
		}
		res, err := svc.GradeAttempt(r.Context(), assessment.Submission{
			AttemptID: attemptID,
			UserID:    req.UserID,
			Responses: req.Responses,
		})
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type practiceReq struct {
	QuestionID string          `json:"question_id"`
	Response   json.RawMessage `json:"response"`
}

// POST /practice/check
func PracticeCheckHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req practiceReq
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.QuestionID) == "" {
			http.Error(w, "question_id required", http.StatusBadRequest)
			return
		}
		res, err := svc.PracticeCheck(r.Context(), req.QuestionID, req.Response)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
