package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

func TestComplete_UsesJSONMode(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{\"briefing\":\"ok\"}"}]}]}`))
	}))
	defer srv.Close()

	c, err := New(logger.Nop(), Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "m", Timeout: time.Second})
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "Return JSON")
	require.NoError(t, err)
	assert.Equal(t, `{"briefing":"ok"}`, out)
	assert.Equal(t, "m", got["model"])
	format := got["text"].(map[string]any)["format"].(map[string]any)
	assert.Equal(t, "json_object", format["type"])
}

func TestComplete_Refusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[],"refusal":"no"}`))
	}))
	defer srv.Close()

	c, err := New(logger.Nop(), Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), "x")
	require.Error(t, err)
}

func TestComplete_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New(logger.Nop(), Config{APIKey: "k", BaseURL: srv.URL, MaxRetries: 3})
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
