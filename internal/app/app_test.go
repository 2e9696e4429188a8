package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sems_backend/internal/config"
	"sems_backend/pkg/database"
	"testing"
	"time"
)

type testServer struct {
	t   *testing.T
	app *App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		Database:  config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:", LogLevel: "silent"},
		JWT:       config.JWTConfig{Secret: "app-test-secret", ExpireTime: time.Hour},
		Storage:   config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Bootstrap: config.BootstrapConfig{SupervisorNationalID: "100", SupervisorPassword: "supervisor-pass"},
		Import:    config.ImportConfig{MaxUploadMB: 1},
	}
	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	a := New(cfg, db, nil)
	if err := a.services.auth.EnsureBootstrapSupervisor(context.Background()); err != nil {
		t.Fatalf("bootstrap supervisor: %v", err)
	}
	return &testServer{t: t, app: a}
}

// do sends body as JSON and decodes the response into out when out is non-nil.
func (s *testServer) do(method, path, token string, body interface{}, wantStatus int, out interface{}) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	if w.Code != wantStatus {
		s.t.Fatalf("%s %s = %d, want %d: %s", method, path, w.Code, wantStatus, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			s.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
}

func (s *testServer) login(nationalID, password string) string {
	s.t.Helper()
	var res struct {
		Token string `json:"token"`
	}
	s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"national_id": nationalID, "password": password}, http.StatusOK, &res)
	return res.Token
}

type examPayload struct {
	ID        uint `json:"id"`
	Questions []struct {
		ID      uint `json:"id"`
		Answers []struct {
			ID        uint  `json:"id"`
			IsCorrect *bool `json:"is_correct"`
		} `json:"answers"`
	} `json:"questions"`
}

func TestExamLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	sup := s.login("100", "supervisor-pass")

	var subject struct{ ID uint }
	s.do(http.MethodPost, "/api/subjects", sup, map[string]string{"name": "Mathematics"}, http.StatusCreated, &subject)

	var exam struct{ ID uint }
	s.do(http.MethodPost, "/api/exams", sup, map[string]interface{}{"name": "Math-1", "subject_id": subject.ID}, http.StatusCreated, &exam)

	for _, text := range []string{"1 + 1 = ?", "2 + 2 = ?"} {
		s.do(http.MethodPost, fmt.Sprintf("/api/exams/%d/questions", exam.ID), sup, map[string]interface{}{
			"question_text": text,
			"answers": []map[string]interface{}{
				{"answer_text": "right", "is_correct": true},
				{"answer_text": "wrong"},
			},
		}, http.StatusCreated, nil)
	}

	s.do(http.MethodPost, "/api/students", sup, map[string]interface{}{
		"full_name": "Sara Hassan", "national_id": "200", "password": "student-pass",
	}, http.StatusCreated, nil)
	stu := s.login("200", "student-pass")

	var keyed examPayload
	s.do(http.MethodGet, fmt.Sprintf("/api/exams/%d", exam.ID), sup, nil, http.StatusOK, &keyed)
	if len(keyed.Questions) != 2 || keyed.Questions[0].Answers[0].IsCorrect == nil {
		t.Fatalf("supervisor view missing answer key: %+v", keyed)
	}

	var started examPayload
	s.do(http.MethodPost, fmt.Sprintf("/api/exams/%d/start", exam.ID), stu, nil, http.StatusOK, &started)
	for _, q := range started.Questions {
		for _, a := range q.Answers {
			if a.IsCorrect != nil {
				t.Fatalf("student view leaked is_correct on question %d", q.ID)
			}
		}
	}

	var preview examPayload
	s.do(http.MethodPost, fmt.Sprintf("/api/exams/%d/start", exam.ID), sup, nil, http.StatusOK, &preview)
	if len(preview.Questions) != 2 || preview.Questions[0].Answers[0].IsCorrect == nil {
		t.Fatalf("supervisor start preview missing answer key: %+v", preview)
	}

	answers := []map[string]uint{
		{"question_id": keyed.Questions[0].ID, "answer_id": keyed.Questions[0].Answers[0].ID},
		{"question_id": keyed.Questions[1].ID, "answer_id": keyed.Questions[1].Answers[1].ID},
	}
	var submitted struct {
		Result struct {
			Score      int     `json:"score"`
			Percentage float64 `json:"percentage"`
		} `json:"result"`
	}
	s.do(http.MethodPost, fmt.Sprintf("/api/exams/%d/submit", exam.ID), stu, map[string]interface{}{"answers": answers}, http.StatusCreated, &submitted)
	if submitted.Result.Score != 1 || submitted.Result.Percentage != 50 {
		t.Errorf("submit result = %+v, want 1 and 50%%", submitted.Result)
	}
	s.do(http.MethodPost, fmt.Sprintf("/api/exams/%d/submit", exam.ID), stu, map[string]interface{}{"answers": answers}, http.StatusForbidden, nil)
	s.do(http.MethodPost, fmt.Sprintf("/api/exams/%d/start", exam.ID), stu, nil, http.StatusForbidden, nil)
	// staff previews skip the reattempt check
	s.do(http.MethodPost, fmt.Sprintf("/api/exams/%d/start", exam.ID), sup, nil, http.StatusOK, nil)

	var mine []map[string]interface{}
	s.do(http.MethodGet, "/api/exams/my/results", stu, nil, http.StatusOK, &mine)
	if len(mine) != 1 {
		t.Errorf("my results = %d, want 1", len(mine))
	}

	s.do(http.MethodPost, fmt.Sprintf("/api/guest/exams/%d/submit", exam.ID), "", map[string]interface{}{
		"guest_name": "Visitor", "answers": answers,
	}, http.StatusCreated, nil)

	var stats []struct {
		TotalAttempts int64   `json:"total_attempts"`
		AvgPercentage float64 `json:"avg_percentage"`
	}
	s.do(http.MethodGet, "/api/reports/performance", sup, nil, http.StatusOK, &stats)
	if len(stats) != 1 || stats[0].TotalAttempts != 1 {
		t.Errorf("performance = %+v, want the guest attempt excluded", stats)
	}
	s.do(http.MethodGet, "/api/reports/performance", stu, nil, http.StatusForbidden, nil)
	s.do(http.MethodGet, "/api/reports/export/pdf", sup, nil, http.StatusNotImplemented, nil)
}

func TestAuthAndRoleGuards(t *testing.T) {
	s := newTestServer(t)

	s.do(http.MethodGet, "/api/exams", "", nil, http.StatusUnauthorized, nil)
	s.do(http.MethodGet, "/api/exams", "not-a-token", nil, http.StatusUnauthorized, nil)
	s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"national_id": "100", "password": "nope"}, http.StatusUnauthorized, nil)

	var reg struct {
		Token string `json:"token"`
	}
	s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"national_id": "300", "username": "self", "password": "secret123",
	}, http.StatusCreated, &reg)

	s.do(http.MethodPost, "/api/subjects", reg.Token, map[string]string{"name": "Nope"}, http.StatusForbidden, nil)
	s.do(http.MethodGet, "/api/students", reg.Token, nil, http.StatusForbidden, nil)
	s.do(http.MethodPut, "/api/auth/update-profile", reg.Token, map[string]string{"password": "another1"}, http.StatusForbidden, nil)
	s.do(http.MethodGet, "/api/auth/me", reg.Token, nil, http.StatusOK, nil)
}

func TestHealthAndGuestList(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/api/health", "", nil, http.StatusOK, nil)

	var exams []interface{}
	s.do(http.MethodGet, "/api/guest/exams", "", nil, http.StatusOK, &exams)
	if len(exams) != 0 {
		t.Errorf("guest exams = %v, want none", exams)
	}
	s.do(http.MethodGet, "/api/guest/exams/999/start", "", nil, http.StatusNotFound, nil)
}
