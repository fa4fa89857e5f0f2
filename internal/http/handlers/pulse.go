package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprint-backend/internal/http/middleware"
	"github.com/yungbote/sprint-backend/internal/http/response"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"github.com/yungbote/sprint-backend/internal/pulse"
)

type PulseHandler struct {
	log       *logger.Logger
	scheduler pulse.Scheduler
}

func NewPulseHandler(log *logger.Logger, scheduler pulse.Scheduler) *PulseHandler {
	return &PulseHandler{log: log.With("handler", "PulseHandler"), scheduler: scheduler}
}

// GET|POST /api/pulse
func (h *PulseHandler) Trigger(c *gin.Context) {
	manual := isManual(c.GetHeader(middleware.HeaderManualTrigger))
	// A cron caller hanging up must not abort a half-finished batch.
	report, err := h.scheduler.Run(context.WithoutCancel(c.Request.Context()), manual)
	if err != nil {
		h.log.Error("Pulse failed", "manual", manual, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "pulse_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}

func isManual(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
