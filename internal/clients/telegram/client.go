package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/sprint-backend/internal/messaging"
	"github.com/yungbote/sprint-backend/internal/pkg/ctxutil"
	"github.com/yungbote/sprint-backend/internal/pkg/httpx"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"github.com/yungbote/sprint-backend/internal/utils"
)

const ParseModeMarkdown = "Markdown"

type Client interface {
	messaging.Sender
	SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error)
	SetWebhook(ctx context.Context, url, secretToken string) error
}

type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
	// MaxRetries applies to sendMessage only. A retried send can reach the
	// chat twice, so it stays 0 unless an operator opts in.
	MaxRetries int
}

const webhookRetries = 3

func ConfigFromEnv() Config {
	return Config{
		Token:      strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		BaseURL:    strings.TrimSpace(os.Getenv("TELEGRAM_BASE_URL")),
		Timeout:    utils.GetEnvAsDuration("TELEGRAM_TIMEOUT", 15*time.Second, nil),
		MaxRetries: utils.GetEnvAsInt("TELEGRAM_MAX_RETRIES", 0, nil),
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.Token == "" {
		return nil, fmt.Errorf("missing TELEGRAM_TOKEN")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &client{
		log:        log.With("client", "TelegramClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sendRetry:  httpx.RetryPolicy{MaxRetries: cfg.MaxRetries, Base: 500 * time.Millisecond, Max: 10 * time.Second},
		hookRetry:  httpx.RetryPolicy{MaxRetries: webhookRetries, Base: 500 * time.Millisecond, Max: 10 * time.Second},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	sendRetry  httpx.RetryPolicy
	hookRetry  httpx.RetryPolicy
}

type SendMessageRequest struct {
	ChatID      int64  `json:"chat_id"`
	Text        string `json:"text"`
	ParseMode   string `json:"parse_mode,omitempty"`
	ReplyMarkup any    `json:"reply_markup,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Date      int64  `json:"date"`
	Chat      Chat   `json:"chat"`
	From      *User  `json:"from,omitempty"`
	Text      string `json:"text,omitempty"`
}

type Chat struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

type KeyboardButton struct {
	Text string `json:"text"`
}

type ReplyKeyboardMarkup struct {
	Keyboard        [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard,omitempty"`
	OneTimeKeyboard bool               `json:"one_time_keyboard,omitempty"`
	IsPersistent    bool               `json:"is_persistent,omitempty"`
}

type ReplyKeyboardRemove struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
}

// ReplyMarkup converts a transport-neutral keyboard into Telegram's wire shape.
func ReplyMarkup(kb *messaging.Keyboard) any {
	if kb == nil {
		return nil
	}
	if kb.Remove {
		return ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	rows := make([][]KeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, KeyboardButton{Text: label})
		}
		rows = append(rows, buttons)
	}
	return ReplyKeyboardMarkup{
		Keyboard:        rows,
		ResizeKeyboard:  kb.Resize,
		OneTimeKeyboard: kb.OneTime,
		IsPersistent:    kb.Persistent,
	}
}

func (c *client) Send(ctx context.Context, msg messaging.Outbound) error {
	req := SendMessageRequest{
		ChatID:      msg.ChatID,
		Text:        msg.Text,
		ReplyMarkup: ReplyMarkup(msg.Keyboard),
	}
	if !msg.Plain {
		req.ParseMode = ParseModeMarkdown
	}
	_, err := c.SendMessage(ctx, req)
	return err
}

func (c *client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("telegram client unavailable")
	}
	if req.ChatID == 0 {
		return nil, fmt.Errorf("telegram: chat_id required")
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("telegram: text required")
	}
	return doJSON[Message](c, ctx, "sendMessage", c.sendRetry, req)
}

func (c *client) SetWebhook(ctx context.Context, url, secretToken string) error {
	body := map[string]any{"url": strings.TrimSpace(url)}
	if s := strings.TrimSpace(secretToken); s != "" {
		body["secret_token"] = s
	}
	_, err := doJSON[bool](c, ctx, "setWebhook", c.hookRetry, body)
	return err
}

type apiResponse[T any] struct {
	OK          bool   `json:"ok"`
	Result      T      `json:"result"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}

type HTTPError struct {
	StatusCode  int
	Description string
	Wait        time.Duration
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "telegram: <nil error>"
	}
	msg := strings.TrimSpace(e.Description)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 4000 {
		msg = msg[:4000] + "..."
	}
	return fmt.Sprintf("telegram http %d: %s", e.StatusCode, msg)
}

// RetryAfter is Telegram's flood-control wait, zero when absent.
func (e *HTTPError) RetryAfter() time.Duration {
	if e == nil {
		return 0
	}
	return e.Wait
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.cfg.BaseURL, c.cfg.Token, method)
}

func doJSON[T any](c *client, ctx context.Context, method string, policy httpx.RetryPolicy, body any) (*T, error) {
	var out *T
	err := httpx.Retry(ctxutil.Default(ctx), c.log, "telegram."+method, policy, func(ctx context.Context) (*http.Response, error) {
		res, resp, err := doJSONOnce[T](c, ctx, method, body)
		out = res
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func doJSONOnce[T any](c *client, ctx context.Context, method string, body any) (*T, *http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("telegram encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resp, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}

	var out apiResponse[T]
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !out.OK {
		he := &HTTPError{StatusCode: resp.StatusCode, Description: string(raw)}
		if decodeErr == nil && out.Description != "" {
			he.Description = out.Description
			if out.Parameters != nil && out.Parameters.RetryAfter > 0 {
				he.Wait = time.Duration(out.Parameters.RetryAfter) * time.Second
			}
		}
		if he.StatusCode >= 200 && he.StatusCode < 300 {
			he.StatusCode = http.StatusBadRequest
		}
		return nil, resp, he
	}
	if decodeErr != nil {
		return nil, resp, fmt.Errorf("telegram decode error: %w", decodeErr)
	}
	return &out.Result, resp, nil
}
