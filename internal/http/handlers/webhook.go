package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprint-backend/internal/clients/telegram"
	"github.com/yungbote/sprint-backend/internal/conversation"
	"github.com/yungbote/sprint-backend/internal/http/middleware"
	"github.com/yungbote/sprint-backend/internal/http/response"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

var errBadWebhookSecret = errors.New("invalid webhook secret token")

type WebhookHandler struct {
	log    *logger.Logger
	router conversation.Router
	secret string
}

// NewWebhookHandler wires the Telegram webhook to the conversation router. An
// empty secret disables the secret token check.
func NewWebhookHandler(log *logger.Logger, router conversation.Router, secret string) *WebhookHandler {
	return &WebhookHandler{
		log:    log.With("handler", "WebhookHandler"),
		router: router,
		secret: strings.TrimSpace(secret),
	}
}

type webhookAck struct {
	OK      bool   `json:"ok"`
	Handled bool   `json:"handled"`
	Stage   string `json:"stage,omitempty"`
}

// POST /api/webhook
//
// Anything other than a secret mismatch answers 200. Telegram redelivers on
// any other status and a poisoned update would loop forever.
func (h *WebhookHandler) Handle(c *gin.Context) {
	if h.secret != "" {
		got := c.GetHeader(telegram.HeaderSecretToken)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errBadWebhookSecret)
			return
		}
	}

	var upd telegram.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		h.log.Warn("Undecodable webhook update", "error", err)
		response.RespondOK(c, webhookAck{OK: true})
		return
	}
	msg := upd.Message
	if msg == nil || msg.Chat.ID == 0 || (msg.From != nil && msg.From.IsBot) {
		response.RespondOK(c, webhookAck{OK: true})
		return
	}

	in := conversation.Inbound{
		ChatID:    msg.Chat.ID,
		UserID:    msg.SenderID(),
		Text:      msg.Text,
		FirstName: msg.SenderFirstName(),
	}
	c.Set(middleware.ContextKeyTelegramUser, in.UserID)

	res, err := h.router.Handle(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		h.log.Error("Route failed", "update_id", upd.UpdateID, "user_id", in.UserID, "error", err)
		response.RespondOK(c, webhookAck{OK: true, Handled: false})
		return
	}
	response.RespondOK(c, webhookAck{OK: true, Handled: true, Stage: res.Stage.String()})
}
