package messaging

import "context"

// Keyboard is a reply keyboard attached to an outbound message. A keyboard with
// Remove set hides whatever keyboard the chat is currently showing.
type Keyboard struct {
	Rows       [][]string
	Resize     bool
	OneTime    bool
	Persistent bool
	Remove     bool
}

// RemoveKeyboard hides the current keyboard.
func RemoveKeyboard() *Keyboard {
	return &Keyboard{Remove: true}
}

type Outbound struct {
	ChatID   int64
	Text     string
	Keyboard *Keyboard
	// Plain disables Markdown rendering.
	Plain bool
}

type Sender interface {
	Send(ctx context.Context, msg Outbound) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Outbound) error

func (f SenderFunc) Send(ctx context.Context, msg Outbound) error { return f(ctx, msg) }
