package http

import (
	"context"
	"net/http"

	"github.com/spf13/cast"

	syncx "github.com/mind-engage/mindengage-grader/internal/sync"
)

type EventLister interface {
	List(ctx context.Context, after int64, limit int) ([]syncx.Event, error)
}

// GET /events?after=&limit=
func ListEventsHandler(events EventLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs := r.URL.Query()
		after := cast.ToInt64(qs.Get("after"))
		if after < 0 {
			after = 0
		}
		list, err := events.List(r.Context(), after, parseIntDefault(qs.Get("limit"), 100))
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
