package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-grader/internal/assessment"
	"github.com/mind-engage/mindengage-grader/internal/rbac"
)

// POST /questions
func CreateQuestionHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q assessment.Question
		if !decodeBody(w, r, &q) {
			return
		}
		q.CreatedAt = 0
		stored, err := svc.PutQuestion(r.Context(), q)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, stored)
	}
}

// GET /questions/{questionID}
// The answer key is only returned to roles holding question:view-key.
func GetQuestionHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "questionID"))
		q, err := svc.GetQuestion(r.Context(), id)
		if err != nil {
			fail(w, err)
			return
		}
		if !rbac.Can(r.Context(), rbac.PermQuestionKey) {
			q = q.Public()
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// GET /questions?type=&limit=&offset=
func ListQuestionsHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs := r.URL.Query()
		list, err := svc.ListQuestions(r.Context(), assessment.ListOpts{
			Type:   strings.TrimSpace(qs.Get("type")),
			Limit:  parseIntDefault(qs.Get("limit"), 50),
			Offset: parseIntDefault(qs.Get("offset"), 0),
		})
		if err != nil {
			fail(w, err)
			return
		}
		if !rbac.Can(r.Context(), rbac.PermQuestionKey) {
			for i := range list {
				list[i] = list[i].Public()
			}
		}
		writeJSON(w, http.StatusOK, list)
	}
}
