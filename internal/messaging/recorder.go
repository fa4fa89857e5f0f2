package messaging

import (
	"context"
	"sync"
)

// Recorder is an in-memory Sender. It keeps every message it was asked to send,
// including the ones FailWhen rejected.
type Recorder struct {
	mu   sync.Mutex
	sent []Outbound

	// FailWhen, when set, decides per message whether Send returns an error.
	FailWhen func(msg Outbound) error
}

func (r *Recorder) Send(_ context.Context, msg Outbound) error {
	r.mu.Lock()
	r.sent = append(r.sent, msg)
	fail := r.FailWhen
	r.mu.Unlock()
	if fail != nil {
		return fail(msg)
	}
	return nil
}

func (r *Recorder) Sent() []Outbound {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Outbound, len(r.sent))
	copy(out, r.sent)
	return out
}

// To returns the messages addressed to chatID in send order.
func (r *Recorder) To(chatID int64) []Outbound {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Outbound
	for _, m := range r.sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (r *Recorder) Last() (Outbound, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return Outbound{}, false
	}
	return r.sent[len(r.sent)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.sent = nil
	r.mu.Unlock()
}
