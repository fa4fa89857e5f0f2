package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

// RetryPolicy bounds Retry. Zero values fall back to one retry with a 500ms
// base backoff capped at 10s.
type RetryPolicy struct {
	MaxRetries int
	Base       time.Duration
	Max        time.Duration
}

// RetryHinter lets an error carry a server-provided wait (for example a
// retry_after field in a JSON body).
type RetryHinter interface {
	RetryAfter() time.Duration
}

// Retry calls attempt until it succeeds, fails with a non-retryable error or
// the policy is exhausted. attempt may return the response it got so the
// Retry-After header can be honoured.
func Retry(ctx context.Context, log *logger.Logger, label string, p RetryPolicy, attempt func(ctx context.Context) (*http.Response, error)) error {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.Base <= 0 {
		p.Base = 500 * time.Millisecond
	}
	if p.Max <= 0 {
		p.Max = 10 * time.Second
	}
	backoff := p.Base

	for i := 0; i <= p.MaxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, err := attempt(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryableError(err) || i == p.MaxRetries {
			return err
		}

		sleepFor := RetryAfterDuration(resp, backoff, p.Max)
		var hint RetryHinter
		if errors.As(err, &hint) && hint.RetryAfter() > 0 {
			sleepFor = min(hint.RetryAfter(), p.Max)
		}
		sleepFor = JitterSleep(sleepFor)

		if log != nil {
			log.Warn("Request retrying",
				"request", label,
				"attempt", i+1,
				"max_retries", p.MaxRetries,
				"sleep", sleepFor.String(),
				"error", err.Error(),
			)
		}
		if err := Sleep(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}
	return fmt.Errorf("%s: retry loop exhausted", label)
}
