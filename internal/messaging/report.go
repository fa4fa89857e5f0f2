package messaging

import (
	"context"
	"fmt"
	"time"
)

// OperatorReport describes one per-user failure surfaced to the operator.
type OperatorReport struct {
	UserID int64  `json:"user_id"`
	Stage  string `json:"stage"`
	Error  string `json:"error"`
	Manual bool   `json:"manual,omitempty"`
	// Transient marks store failures likely to clear on the next pulse.
	Transient bool      `json:"transient,omitempty"`
	Occurred  time.Time `json:"occurred"`
}

func (r OperatorReport) Text() string {
	text := fmt.Sprintf("⚠️ Pulse failure\nuser: %d\nstage: %s\nerror: %s", r.UserID, r.Stage, r.Error)
	if r.Transient {
		text += "\nkind: transient store error"
	}
	return text
}

type Notifier interface {
	Notify(ctx context.Context, report OperatorReport) error
}
