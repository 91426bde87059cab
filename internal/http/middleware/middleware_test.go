package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/paperrec-backend/internal/platform/apierr"
	"github.com/yungbote/paperrec-backend/internal/platform/ctxutil"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

type fakeAuth struct{}

func (fakeAuth) IssueToken(context.Context, uint, string) (string, error) { return "", nil }
func (fakeAuth) GetAccessTTL() time.Duration                              { return time.Minute }
func (fakeAuth) SetContextFromToken(ctx context.Context, tok string) (context.Context, error) {
	id, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return ctx, errors.Join(apierr.ErrUnauthorized, err)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: uint(id)}), nil
}

func whoami(c *gin.Context) {
	c.String(http.StatusOK, strconv.FormatUint(uint64(ctxutil.UserID(c.Request.Context())), 10))
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.NewNop(), fakeAuth{})
	r := gin.New()
	r.GET("/optional", am.OptionalAuth(), whoami)
	r.GET("/required", am.RequireAuth(), whoami)

	cases := []struct {
		path, token string
		status      int
		body        string
	}{
		{"/optional", "", http.StatusOK, "0"},
		{"/optional", "7", http.StatusOK, "7"},
		{"/optional", "garbage", http.StatusUnauthorized, ""},
		{"/required", "", http.StatusUnauthorized, ""},
		{"/required", "7", http.StatusOK, "7"},
		{"/required", "0", http.StatusForbidden, ""},
	}
	for _, tc := range cases {
		rec := serve(r, http.MethodGet, tc.path, tc.token)
		if rec.Code != tc.status {
			t.Fatalf("%s token=%q: status got=%d want=%d", tc.path, tc.token, rec.Code, tc.status)
		}
		if tc.body != "" && rec.Body.String() != tc.body {
			t.Fatalf("%s token=%q: body got=%q want=%q", tc.path, tc.token, rec.Body.String(), tc.body)
		}
	}
}

func TestRateLimiterPerCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 2)
	am := NewAuthMiddleware(logger.NewNop(), fakeAuth{})
	r := gin.New()
	r.POST("/actions", am.RequireAuth(), rl.Middleware(), whoami)

	for i := 0; i < 2; i++ {
		if rec := serve(r, http.MethodPost, "/actions", "1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status=%d", i, rec.Code)
		}
	}
	rec := serve(r, http.MethodPost, "/actions", "1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}
	if rec := serve(r, http.MethodPost, "/actions", "2"); rec.Code != http.StatusOK {
		t.Fatalf("other user should have its own bucket, got %d", rec.Code)
	}
}

func TestRateLimiterSweep(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.Allow("a")
	rl.now = func() time.Time { return now.Add(2 * time.Hour) }
	rl.Allow("b")
	if n := rl.Sweep(); n != 1 {
		t.Fatalf("swept %d buckets, want 1", n)
	}
	if !NewRateLimiter(0, 0).Allow("anyone") {
		t.Fatalf("disabled limiter must allow")
	}
}

func TestProcessTimeHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext(), ProcessTime())
	r.GET("/slow", func(c *gin.Context) {
		time.Sleep(5 * time.Millisecond)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	rec := serve(r, http.MethodGet, "/slow", "")
	raw := rec.Header().Get(headerProcessTime)
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		t.Fatalf("bad %s header %q: %v", headerProcessTime, raw, err)
	}
	if secs < 0.005 {
		t.Fatalf("process time %f shorter than handler sleep", secs)
	}
	if rec.Header().Get(headerRequestID) == "" || rec.Header().Get(headerTraceID) == "" {
		t.Fatalf("missing trace headers: %v", rec.Header())
	}
}
