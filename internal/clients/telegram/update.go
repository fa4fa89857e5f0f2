package telegram

import "strings"

// Update is the subset of a webhook update the bot acts on. Edited messages,
// callbacks and channel posts decode with Message == nil.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// HeaderSecretToken carries the secret registered through setWebhook.
const HeaderSecretToken = "X-Telegram-Bot-Api-Secret-Token"

// SenderID returns the user the message came from, falling back to the chat
// id for private chats where From is absent.
func (m *Message) SenderID() int64 {
	if m.From != nil && m.From.ID != 0 {
		return m.From.ID
	}
	return m.Chat.ID
}

// SenderFirstName prefers the user's first name over the chat's.
func (m *Message) SenderFirstName() string {
	if m.From != nil {
		if n := strings.TrimSpace(m.From.FirstName); n != "" {
			return n
		}
	}
	return strings.TrimSpace(m.Chat.FirstName)
}
