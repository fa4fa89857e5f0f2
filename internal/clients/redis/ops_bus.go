package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/sprint-backend/internal/messaging"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

// OpsBus fans operator reports out over a Redis pub/sub channel so that any
// number of tails can watch pulse failures.
type OpsBus interface {
	messaging.Notifier
	StartForwarder(ctx context.Context, onMsg func(r messaging.OperatorReport)) error
	Close() error
}

type opsBus struct {
	log     *logger.Logger
	rdb     goredis.UniversalClient
	channel string
}

func NewOpsBus(log *logger.Logger) (OpsBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewOpsBusWithClient(log, rdb, strings.TrimSpace(os.Getenv("REDIS_OPS_CHANNEL"))), nil
}

func NewOpsBusWithClient(log *logger.Logger, rdb goredis.UniversalClient, channel string) OpsBus {
	if channel == "" {
		channel = "sprint:ops"
	}
	return &opsBus{
		log:     log.With("service", "RedisOpsBus"),
		rdb:     rdb,
		channel: channel,
	}
}

func (b *opsBus) Notify(ctx context.Context, report messaging.OperatorReport) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis ops bus not initialized")
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *opsBus) StartForwarder(ctx context.Context, onMsg func(r messaging.OperatorReport)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis ops bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var r messaging.OperatorReport
				if err := json.Unmarshal([]byte(m.Payload), &r); err != nil {
					b.log.Warn("bad ops payload", "error", err)
					continue
				}
				onMsg(r)
			}
		}
	}()

	return nil
}

func (b *opsBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
