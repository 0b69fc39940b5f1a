package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/idea2sns-backend/internal/data/repos/testutil"
	"github.com/yungbote/idea2sns-backend/internal/services"
)

const testSecret = "app-test-secret"

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := defaultConfig()
	cfg.Env = "test"
	cfg.LLM.Mock = true
	cfg.Auth.JWTSecret = testSecret
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	a, err := NewWithDB(context.Background(), cfg, testutil.Logger(t), testutil.DB(t))
	if err != nil {
		t.Fatalf("NewWithDB: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func bearer(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, services.JWTClaims{
		Role: "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + tok
}

type apiResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func call(t *testing.T, a *App, auth, method, path, body string) (int, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	var out apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, out
}

func TestGeneratePostEndToEnd(t *testing.T) {
	a := newTestApp(t)
	auth := bearer(t, uuid.New())
	body := `{"type":"simple","topic":"Spring launch","tone":"upbeat","platforms":["twitter","linkedin"]}`

	code, res := call(t, a, auth, http.MethodPost, "/api/generate-post", body)
	if code != http.StatusOK {
		t.Fatalf("status=%d res=%+v", code, res)
	}
	var gen struct {
		GenerationID uuid.UUID `json:"generation_id"`
		Outputs      map[string]struct {
			Content  string `json:"content"`
			Provider string `json:"provider"`
		} `json:"outputs"`
	}
	if err := json.Unmarshal(res.Data, &gen); err != nil {
		t.Fatalf("data: %v", err)
	}
	for _, p := range []string{"twitter", "linkedin"} {
		if !strings.HasPrefix(gen.Outputs[p].Content, "mock "+p) || gen.Outputs[p].Provider != "mock" {
			t.Fatalf("%s output=%+v", p, gen.Outputs[p])
		}
	}

	code, res = call(t, a, auth, http.MethodGet, "/api/generations/"+gen.GenerationID.String(), "")
	if code != http.StatusOK {
		t.Fatalf("history get status=%d", code)
	}

	code, res = call(t, a, auth, http.MethodGet, "/api/me/usage", "")
	var usage struct {
		Plan      string `json:"plan"`
		DailyUsed int64  `json:"daily_used"`
	}
	if err := json.Unmarshal(res.Data, &usage); err != nil || code != http.StatusOK {
		t.Fatalf("usage: %d %v", code, err)
	}
	if usage.Plan != "free" || usage.DailyUsed != 1 {
		t.Fatalf("usage=%+v", usage)
	}
}

func TestDailyQuotaEndToEnd(t *testing.T) {
	a := newTestApp(t)
	auth := bearer(t, uuid.New())
	body := `{"type":"simple","topic":"Quota","tone":"dry","platforms":["twitter"]}`

	for i := 0; i < 5; i++ {
		if code, res := call(t, a, auth, http.MethodPost, "/api/generate-post", body); code != http.StatusOK {
			t.Fatalf("call %d: status=%d res=%+v", i, code, res)
		}
	}
	code, res := call(t, a, auth, http.MethodPost, "/api/generate-post", body)
	if code != http.StatusTooManyRequests || res.Error.Code != "QUOTA_EXCEEDED" || res.Error.Details["reason"] != "daily_limit" {
		t.Fatalf("status=%d res=%+v", code, res)
	}

	code, res = call(t, a, auth, http.MethodGet, "/api/generations?limit=2", "")
	var page struct {
		Total int64             `json:"total"`
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(res.Data, &page); err != nil || code != http.StatusOK {
		t.Fatalf("history: %d %v", code, err)
	}
	if page.Total != 5 || len(page.Items) != 2 {
		t.Fatalf("page total=%d items=%d", page.Total, len(page.Items))
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestApp(t)
	for _, path := range []string{"/api/me/usage", "/api/generations", "/api/brand-voices", "/api/social-accounts"} {
		code, res := call(t, a, "", http.MethodGet, path, "")
		if code != http.StatusUnauthorized || res.Error.Code != "AUTH_REQUIRED" {
			t.Fatalf("%s: status=%d res=%+v", path, code, res)
		}
	}
}
