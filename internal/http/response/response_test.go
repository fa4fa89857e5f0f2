package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/sprint-backend/internal/pkg/ctxutil"
)

func TestRespondError_IncludesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request = req.WithContext(ctxutil.WithTraceData(req.Context(), &ctxutil.TraceData{RequestID: "req-1"}))

	RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("nope"))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.True(t, c.IsAborted())
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, APIError{Message: "nope", Code: "unauthorized", RequestID: "req-1"}, env.Error)
}
