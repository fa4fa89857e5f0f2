package pulse

import (
	"context"
	"errors"

	"github.com/yungbote/sprint-backend/internal/messaging"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

// AdminChatNotifier forwards operator reports to a chat as plain text.
type AdminChatNotifier struct {
	Sender messaging.Sender
	ChatID int64
}

func (n AdminChatNotifier) Notify(ctx context.Context, r messaging.OperatorReport) error {
	if n.Sender == nil || n.ChatID == 0 {
		return nil
	}
	return n.Sender.Send(ctx, messaging.Outbound{ChatID: n.ChatID, Text: r.Text(), Plain: true})
}

// LogNotifier writes reports to the log; it is the fallback when no operator
// channel is configured.
type LogNotifier struct {
	Log *logger.Logger
}

func (n LogNotifier) Notify(_ context.Context, r messaging.OperatorReport) error {
	if n.Log != nil {
		n.Log.Error("pulse failure", "user_id", r.UserID, "stage", r.Stage, "error", r.Error, "manual", r.Manual)
	}
	return nil
}

// MultiNotifier fans a report out to every notifier and joins their errors.
type MultiNotifier []messaging.Notifier

func (m MultiNotifier) Notify(ctx context.Context, r messaging.OperatorReport) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
