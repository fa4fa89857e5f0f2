package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/yungbote/sprint-backend/internal/pkg/errors"
)

func TestRequirePulseSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		secret string
		header string
		query  string
		want   int
	}{
		{"header match", "s3cret", "s3cret", "", http.StatusOK},
		{"query string ignored", "s3cret", "", "s3cret", http.StatusUnauthorized},
		{"mismatch", "s3cret", "nope", "", http.StatusUnauthorized},
		{"missing", "s3cret", "", "", http.StatusUnauthorized},
		{"unconfigured rejects", "", "", "", http.StatusUnauthorized},
		{"unconfigured rejects any value", "", "anything", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reached := false
			r := gin.New()
			r.GET("/api/pulse", RequirePulseSecret(tc.secret), func(c *gin.Context) {
				reached = true
				c.Status(http.StatusOK)
			})

			target := "/api/pulse"
			if tc.query != "" {
				target += "?secret=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set(HeaderPulseSecret, tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status: got=%d want=%d", rec.Code, tc.want)
			}
			if reached != (tc.want == http.StatusOK) {
				t.Fatalf("handler reached=%v for status %d", reached, rec.Code)
			}
		})
	}
}

func TestBadPulseSecretIsUnauthorized(t *testing.T) {
	if !errors.Is(errBadPulseSecret, pkgerrors.ErrUnauthorized) {
		t.Fatalf("errBadPulseSecret should wrap ErrUnauthorized")
	}
}
