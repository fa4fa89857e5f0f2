package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprint-backend/internal/http/response"
	pkgerrors "github.com/yungbote/sprint-backend/internal/pkg/errors"
)

const (
	HeaderPulseSecret   = "X-Pulse-Secret"
	HeaderManualTrigger = "X-Manual-Trigger"

	ContextKeyTelegramUser = "telegram_user_id"
)

var errBadPulseSecret = fmt.Errorf("%w: missing or invalid pulse secret", pkgerrors.ErrUnauthorized)

// RequirePulseSecret guards the pulse trigger. The secret is read from the
// header only. An empty configured secret rejects every request.
func RequirePulseSecret(secret string) gin.HandlerFunc {
	want := []byte(strings.TrimSpace(secret))
	return func(c *gin.Context) {
		got := strings.TrimSpace(c.GetHeader(HeaderPulseSecret))
		if len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errBadPulseSecret)
			c.Abort()
			return
		}
		c.Next()
	}
}
