package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-grader/internal/assessment"
	"github.com/mind-engage/mindengage-grader/internal/rbac"
)

// GET /attempts/{attemptID}/result
// Callers without result:view-all only see results they own.
func GetAttemptResultHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := strings.TrimSpace(chi.URLParam(r, "attemptID"))
		res, err := svc.GetAttemptResult(r.Context(), attemptID)
		if err != nil {
			fail(w, err)
			return
		}
		ctx := r.Context()
		owner := res.UserID != "" && res.UserID == rbac.SubjectFromContext(ctx)
		if !rbac.Can(ctx, rbac.PermResultViewAll) && !(owner && rbac.Can(ctx, rbac.PermResultViewOwn)) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
