package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/sprint-backend/internal/clients/telegram"
	"github.com/yungbote/sprint-backend/internal/conversation"
	"github.com/yungbote/sprint-backend/internal/http/middleware"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"github.com/yungbote/sprint-backend/internal/pulse"
)

type mockRouter struct{ mock.Mock }

func (m *mockRouter) Handle(ctx context.Context, in conversation.Inbound) (conversation.Result, error) {
	args := m.Called(in)
	return args.Get(0).(conversation.Result), args.Error(1)
}

type mockScheduler struct{ mock.Mock }

func (m *mockScheduler) Run(ctx context.Context, manual bool) (pulse.Report, error) {
	args := m.Called(manual)
	return args.Get(0).(pulse.Report), args.Error(1)
}

func serve(t *testing.T, method, path string, h gin.HandlerFunc, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Handle(method, path, h)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const textUpdate = `{"update_id":7,"message":{"message_id":1,"date":0,
	"chat":{"id":42,"first_name":"Chat"},
	"from":{"id":42,"first_name":"Ada"},
	"text":"buy milk"}}`

func TestWebhook_RoutesTextMessage(t *testing.T) {
	r := new(mockRouter)
	r.On("Handle", conversation.Inbound{ChatID: 42, UserID: 42, Text: "buy milk", FirstName: "Ada"}).
		Return(conversation.Result{Stage: conversation.StageActive}, nil).Once()
	h := NewWebhookHandler(logger.Nop(), r, "")

	rec := serve(t, http.MethodPost, "/api/webhook", h.Handle, textUpdate, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var ack webhookAck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	require.True(t, ack.Handled)
	require.Equal(t, conversation.StageActive.String(), ack.Stage)
	r.AssertExpectations(t)
}

func TestWebhook_IgnoresNonMessageUpdates(t *testing.T) {
	r := new(mockRouter)
	h := NewWebhookHandler(logger.Nop(), r, "")

	for _, body := range []string{
		`{"update_id":8,"edited_message":{"message_id":1,"chat":{"id":42}}}`,
		`{"update_id":9,"message":{"message_id":1,"chat":{"id":42},"from":{"id":99,"is_bot":true},"text":"hi"}}`,
		`not json`,
	} {
		rec := serve(t, http.MethodPost, "/api/webhook", h.Handle, body, nil)
		require.Equal(t, http.StatusOK, rec.Code, body)
	}
	r.AssertNotCalled(t, "Handle", mock.Anything)
}

func TestWebhook_RouterErrorStillAcknowledges(t *testing.T) {
	r := new(mockRouter)
	r.On("Handle", mock.Anything).Return(conversation.Result{}, errors.New("send failed")).Once()
	h := NewWebhookHandler(logger.Nop(), r, "")

	rec := serve(t, http.MethodPost, "/api/webhook", h.Handle, textUpdate, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var ack webhookAck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	require.False(t, ack.Handled)
}

func TestWebhook_SecretToken(t *testing.T) {
	r := new(mockRouter)
	r.On("Handle", mock.Anything).Return(conversation.Result{}, nil).Once()
	h := NewWebhookHandler(logger.Nop(), r, "tok")

	rec := serve(t, http.MethodPost, "/api/webhook", h.Handle, textUpdate,
		map[string]string{telegram.HeaderSecretToken: "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, http.MethodPost, "/api/webhook", h.Handle, textUpdate,
		map[string]string{telegram.HeaderSecretToken: "tok"})
	require.Equal(t, http.StatusOK, rec.Code)
	r.AssertExpectations(t)
}

func TestPulse_ManualHeader(t *testing.T) {
	s := new(mockScheduler)
	s.On("Run", true).Return(pulse.Report{Manual: true, Due: 2, Delivered: 2}, nil).Once()
	s.On("Run", false).Return(pulse.Report{}, nil).Once()
	h := NewPulseHandler(logger.Nop(), s)

	rec := serve(t, http.MethodPost, "/api/pulse", h.Trigger, "",
		map[string]string{middleware.HeaderManualTrigger: "true"})
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Report pulse.Report `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Report.Manual)
	require.Equal(t, 2, body.Report.Delivered)

	rec = serve(t, http.MethodGet, "/api/pulse", h.Trigger, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s.AssertExpectations(t)
}

type ctxScheduler struct{ err error }

func (s *ctxScheduler) Run(ctx context.Context, manual bool) (pulse.Report, error) {
	s.err = ctx.Err()
	return pulse.Report{Manual: manual}, nil
}

func TestPulse_RunOutlivesCallerDisconnect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := &ctxScheduler{err: errors.New("not called")}
	h := NewPulseHandler(logger.Nop(), s)
	r := gin.New()
	r.POST("/api/pulse", h.Trigger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/pulse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, s.err)
}

func TestPulse_SchedulerError(t *testing.T) {
	s := new(mockScheduler)
	s.On("Run", false).Return(pulse.Report{}, errors.New("store down")).Once()
	h := NewPulseHandler(logger.Nop(), s)

	rec := serve(t, http.MethodPost, "/api/pulse", h.Trigger, "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "pulse_failed")
}

func TestHealthCheck_NoDB(t *testing.T) {
	rec := serve(t, http.MethodGet, "/healthcheck", NewHealthHandler(nil).HealthCheck, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}
