package util

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sems_backend/internal/model"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", NewValidationError("bad %s", "input"), http.StatusBadRequest, `{"error":"bad input"}`},
		{"forbidden sentinel", ErrReattemptNotAllowed, http.StatusForbidden, `{"error":"reattempt not permitted for this exam"}`},
		{"wrapped not found", fmt.Errorf("load: %w", ErrExamNotFound), http.StatusNotFound, `{"error":"exam template not found"}`},
		{"conflict", ErrSubjectHasExams, http.StatusConflict, `{"error":"subject still has exam templates; delete them first"}`},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound, `{"error":"resource not found"}`},
		{"duplicate key", gorm.ErrDuplicatedKey, http.StatusConflict, `{"error":"record already exists (duplicate value)"}`},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: subjects.name (2067)"), http.StatusConflict, `{"error":"record already exists (duplicate value)"}`},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, `{"error":"unexpected server error"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleError(c, tc.err)

			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
			if got := w.Body.String(); got != tc.body {
				t.Fatalf("body = %s, want %s", got, tc.body)
			}
		})
	}
}

func TestAppErrorIsSurvivesWrap(t *testing.T) {
	wrapped := ErrStudentProfileMissing.Wrap(gorm.ErrRecordNotFound)
	if !errors.Is(wrapped, ErrStudentProfileMissing) {
		t.Fatal("wrapped error should match its sentinel")
	}
	if !errors.Is(wrapped, gorm.ErrRecordNotFound) {
		t.Fatal("wrapped error should expose its cause")
	}
	if errors.Is(wrapped, ErrExamNotFound) {
		t.Fatal("different sentinels of the same kind must not match")
	}
}

func TestSniffSpreadsheet(t *testing.T) {
	zipHeader := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0}, 60)...)
	if _, err := SniffSpreadsheet(bytes.NewReader(zipHeader)); err != nil {
		t.Fatalf("zip payload rejected: %v", err)
	}
	if _, err := SniffSpreadsheet(bytes.NewReader([]byte("name,score\nx,1\n"))); KindOf(err) != KindValidation {
		t.Fatalf("csv payload should be a validation error, got %v", err)
	}
}

func TestNewPageResponse(t *testing.T) {
	p := NewPageResponse([]int{1}, 41, 2, 20)
	if p.Pages != 3 {
		t.Fatalf("pages = %d, want 3", p.Pages)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 42}, Role: model.RoleSupervisor}
	token, err := GenerateJWT(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 42 || claims.Role != model.RoleSupervisor {
		t.Errorf("claims = %+v", claims)
	}

	parts := strings.Split(token, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if raw["user_id"] != float64(42) {
		t.Errorf("payload = %s, want user_id 42", payload)
	}

	if _, err := ParseJWT(token, "other-secret"); err == nil {
		t.Error("token verified with the wrong secret")
	}
}
