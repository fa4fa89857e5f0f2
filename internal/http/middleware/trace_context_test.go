package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprint-backend/internal/pkg/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen *ctxutil.TraceData
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "abc-123")
	req.Header.Set(headerTraceID, strings.Repeat("t", maxIDLen+1))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil {
		t.Fatal("trace data not attached")
	}
	if seen.RequestID != "abc-123" || rec.Header().Get(headerRequestID) != "abc-123" {
		t.Fatalf("request id not propagated: %+v", seen)
	}
	if seen.TraceID != "abc-123" {
		t.Fatalf("oversized trace header should fall back to request id, got %q", seen.TraceID)
	}
}

func TestClientID(t *testing.T) {
	if clientID(" ok-1 ") != "ok-1" {
		t.Fatal("expected trimmed id")
	}
	if clientID("bad id") != "" {
		t.Fatal("expected space to be rejected")
	}
}
