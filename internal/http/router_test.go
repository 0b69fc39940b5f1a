package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	httpH "github.com/yungbote/idea2sns-backend/internal/http/handlers"
	httpMW "github.com/yungbote/idea2sns-backend/internal/http/middleware"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
	"github.com/yungbote/idea2sns-backend/internal/services"
)

type countingGenerations struct{ calls int }

func (c *countingGenerations) Generate(ctx context.Context, userID uuid.UUID, req types.GenerationRequest) (*services.GenerationResult, error) {
	c.calls++
	return &services.GenerationResult{GenerationID: uuid.New()}, nil
}

func testRouter(gen services.GenerationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	auth := services.NewAuthService(log, "jwt-secret", "")
	return NewRouter(RouterConfig{
		Log:               log,
		MaxBodyBytes:      1 << 20,
		AuthMiddleware:    httpMW.NewAuthMiddleware(log, auth),
		GenerationHandler: httpH.NewGenerationHandler(log, gen, nil),
		HealthHandler:     httpH.NewHealthHandler(),
	})
}

func TestRouterRejectsMissingBearerBeforeHandler(t *testing.T) {
	gen := &countingGenerations{}
	r := testRouter(gen)

	for _, header := range []string{"", "Basic abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodPost, "/api/generate-post",
			strings.NewReader(`{"type":"simple","topic":"a","tone":"b","platforms":["twitter"]}`))
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), `"AUTH_REQUIRED"`) {
			t.Fatalf("%q: status=%d body=%s", header, w.Code, w.Body.String())
		}
	}
	if gen.calls != 0 {
		t.Fatalf("handler reached %d times", gen.calls)
	}
}

func TestRouterHealthAndPreflight(t *testing.T) {
	r := testRouter(&countingGenerations{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("health: %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-post", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("preflight: %d %v", w.Code, w.Header())
	}
	if w.Body.Len() != 0 {
		t.Fatalf("preflight body=%q", w.Body.String())
	}
}

func TestRouterUnknownRouteEnvelope(t *testing.T) {
	r := testRouter(&countingGenerations{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"NOT_FOUND"`) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}
