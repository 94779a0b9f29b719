package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	api "github.com/mind-engage/mindengage-grader/internal/api/http"
	"github.com/mind-engage/mindengage-grader/internal/assessment"
	auth "github.com/mind-engage/mindengage-grader/internal/auth/middleware"
	"github.com/mind-engage/mindengage-grader/internal/grading"
	"github.com/mind-engage/mindengage-grader/internal/metrics"
	syncx "github.com/mind-engage/mindengage-grader/internal/sync"
)

const scheme4 = `{"data":{"totalMark":4,"negativeMark":1,"negativeMarkingPercentage":100}}`

type memEvents struct{ events []syncx.Event }

func (m *memEvents) Append(_ context.Context, e syncx.Event) error {
	e.Seq = int64(len(m.events) + 1)
	m.events = append(m.events, e)
	return nil
}

func (m *memEvents) List(_ context.Context, after int64, limit int) ([]syncx.Event, error) {
	out := []syncx.Event{}
	for _, e := range m.events {
		if e.Seq > after && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

type harness struct {
	t       *testing.T
	handler http.Handler
	auth    *auth.AuthService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	events := &memEvents{}
	m := metrics.New(prometheus.NewRegistry())
	svc := assessment.NewService(assessment.NewInMemoryStore(),
		assessment.WithEvents(events), assessment.WithMetrics(m))
	a := auth.NewAuthService("test-secret")
	h := api.NewRouter(api.Deps{
		Service:         svc,
		Events:          events,
		Auth:            a,
		Metrics:         m,
		EnableLocalAuth: true,
		Login:           auth.LoginOptions{AllowDevLogins: true},
		CORSOrigins:     []string{"http://localhost:3000"},
		Ready:           func(context.Context) error { return nil },
	})
	return &harness{t: t, handler: h, auth: a}
}

func (h *harness) do(method, path, role, sub, body string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if role != "" {
		tok, err := h.auth.IssueJWT(sub, role)
		if err != nil {
			h.t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestGradeEndpoint(t *testing.T) {
	h := newHarness(t)

	body := `{"type":"NUMERIC","scheme":` + scheme4 + `,"answer":{"data":{"validAnswers":[2.5]}},"response":{"data":{"validAnswer":2.5}}}`
	rec := h.do(http.MethodPost, "/grade", "teacher", "t1", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	res := decode[grading.Result](t, rec)
	if res.Marks != 4 || res.Status != grading.StatusCorrect {
		t.Fatalf("result = %+v", res)
	}

	cases := []struct {
		name, role, body string
		status           int
	}{
		{"unsupported type", "teacher", `{"type":"ESSAY","scheme":null,"answer":null,"response":null}`, http.StatusUnprocessableEntity},
		{"bad json", "teacher", `{"type":`, http.StatusBadRequest},
		{"student forbidden", "student", body, http.StatusForbidden},
		{"anonymous", "", body, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := h.do(http.MethodPost, "/grade", tc.role, "u", tc.body); rec.Code != tc.status {
				t.Fatalf("status %d, want %d: %s", rec.Code, tc.status, rec.Body.String())
			}
		})
	}
}

func TestQuestionsAndAttemptFlow(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/questions", "teacher", "t1",
		`{"id":"q1","type":"MCQS","scheme":`+scheme4+`,"answer":{"data":{"correctOptionIds":["A"]}}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	if rec := h.do(http.MethodPost, "/questions", "teacher", "t1",
		`{"id":"bad","type":"ESSAY","scheme":`+scheme4+`,"answer":{}}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid question: %d", rec.Code)
	}
	if rec := h.do(http.MethodPost, "/questions", "student", "s1", `{}`); rec.Code != http.StatusForbidden {
		t.Fatalf("student create: %d", rec.Code)
	}

	// students never see the key
	student := decode[assessment.Question](t, h.do(http.MethodGet, "/questions/q1", "student", "s1", ""))
	if student.Answer != nil {
		t.Fatalf("answer leaked to student: %s", student.Answer)
	}
	teacher := decode[assessment.Question](t, h.do(http.MethodGet, "/questions/q1", "teacher", "t1", ""))
	if teacher.Answer == nil {
		t.Fatal("teacher should see the key")
	}
	if rec := h.do(http.MethodGet, "/questions/missing", "teacher", "t1", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing question: %d", rec.Code)
	}
	list := decode[[]assessment.Question](t, h.do(http.MethodGet, "/questions?type=MCQS&limit=x", "student", "s1", ""))
	if len(list) != 1 || list[0].Answer != nil {
		t.Fatalf("list = %+v", list)
	}

	rec = h.do(http.MethodPost, "/attempts/att-1/grade", "teacher", "t1",
		`{"user_id":"s1","responses":{"q1":{"data":{"optionIds":["A"]}}}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("grade attempt: %d %s", rec.Code, rec.Body.String())
	}
	if res := decode[assessment.AttemptResult](t, rec); res.TotalMarks != 4 {
		t.Fatalf("attempt = %+v", res)
	}
	if rec := h.do(http.MethodPost, "/attempts/att-2/grade", "teacher", "t1", `{"responses":{}}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing user_id: %d", rec.Code)
	}

	// result visibility: owner and teacher yes, other student no
	for _, tc := range []struct {
		role, sub string
		status    int
	}{
		{"student", "s1", http.StatusOK},
		{"student", "s2", http.StatusForbidden},
		{"teacher", "t1", http.StatusOK},
	} {
		if rec := h.do(http.MethodGet, "/attempts/att-1/result", tc.role, tc.sub, ""); rec.Code != tc.status {
			t.Fatalf("%s/%s: status %d, want %d", tc.role, tc.sub, rec.Code, tc.status)
		}
	}
	if rec := h.do(http.MethodGet, "/attempts/nope/result", "teacher", "t1", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing result: %d", rec.Code)
	}

	events := decode[[]syncx.Event](t, h.do(http.MethodGet, "/events?after=0&limit=10", "teacher", "t1", ""))
	if len(events) != 2 || events[0].Type != syncx.TypeQuestionStored || events[1].Type != syncx.TypeAttemptGraded {
		t.Fatalf("events = %+v", events)
	}
	tail := decode[[]syncx.Event](t, h.do(http.MethodGet, "/events?after=1", "teacher", "t1", ""))
	if len(tail) != 1 {
		t.Fatalf("tail = %+v", tail)
	}
}

func TestPracticeCheckEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodPost, "/questions", "teacher", "t1",
		`{"id":"m1","type":"MCQM","scheme":`+scheme4+`,"answer":{"data":{"correctOptionIds":["A","B"]}}}`)

	rec := h.do(http.MethodPost, "/practice/check", "student", "s1",
		`{"question_id":"m1","response":{"data":{"optionIds":["B","A"]}}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("practice: %d %s", rec.Code, rec.Body.String())
	}
	if res := decode[grading.Result](t, rec); res.Status != grading.StatusCorrect {
		t.Fatalf("practice = %+v", res)
	}
	if rec := h.do(http.MethodPost, "/practice/check", "student", "s1", `{"response":null}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing id: %d", rec.Code)
	}
	if rec := h.do(http.MethodPost, "/practice/check", "student", "s1", `{"question_id":"zz"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown question: %d", rec.Code)
	}
}

func TestLoginHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/auth/login", "", "", `{"username":"t1","password":"t1","role":"teacher"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d", rec.Code)
	}
	tok := decode[map[string]string](t, rec)["access_token"]
	req := httptest.NewRequest(http.MethodGet, "/questions", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	out := httptest.NewRecorder()
	h.handler.ServeHTTP(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("token from login rejected: %d", out.Code)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := h.do(http.MethodGet, path, "", "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: %d", path, rec.Code)
		}
	}

	h.do(http.MethodPost, "/grade", "teacher", "t1", `{"type":"ONE_WORD","scheme":`+scheme4+`,"answer":{"data":{"answer":"x"}},"response":{"data":{"answer":"x"}}}`)
	rec = h.do(http.MethodGet, "/metrics", "", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `grading_responses_total{status="CORRECT",type="ONE_WORD"} 1`) {
		t.Fatalf("metrics output:\n%s", rec.Body.String())
	}
}

func TestReadyzReportsFailure(t *testing.T) {
	h := api.NewRouter(api.Deps{
		Service: assessment.NewService(assessment.NewInMemoryStore()),
		Auth:    auth.NewAuthService("x"),
		Ready:   func(context.Context) error { return errors.New("db down") },
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz: %d", rec.Code)
	}
}
