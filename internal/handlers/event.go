package handlers

import (
	"strings"

	tgmodels "github.com/go-telegram/bot/models"
)

// Event is one inbound message or button press in a private chat.
type Event struct {
	UpdateID       int64
	ChatID         int64
	SenderID       int64
	SenderUsername string

	// Message events.
	MessageID       int
	Text            string
	ContactUserID   int64
	ForwardedFromID int64

	// Callback events.
	CallbackID      string
	CallbackData    string
	SourceMessageID int
}

func (e Event) IsCallback() bool {
	return e.CallbackID != ""
}

// TargetUserID is the user referenced by a shared contact, else by a forward.
func (e Event) TargetUserID() int64 {
	if e.ContactUserID != 0 {
		return e.ContactUserID
	}
	return e.ForwardedFromID
}

// Command returns the bot command in the text without a bot mention, or "".
func (e Event) Command() string {
	if !strings.HasPrefix(e.Text, "/") {
		return ""
	}
	name := strings.Fields(e.Text)[0]
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	return name
}

// EventFromUpdate converts an update. Only private-chat messages and
// callbacks with a known sender are accepted.
func EventFromUpdate(update *tgmodels.Update) (Event, bool) {
	switch {
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || msg.Chat.Type != tgmodels.ChatTypePrivate {
			return Event{}, false
		}
		ev := Event{
			UpdateID:       update.ID,
			ChatID:         msg.Chat.ID,
			SenderID:       msg.From.ID,
			SenderUsername: msg.From.Username,
			MessageID:      msg.ID,
			Text:           msg.Text,
		}
		if msg.Contact != nil {
			ev.ContactUserID = msg.Contact.UserID
		}
		if msg.ForwardOrigin != nil && msg.ForwardOrigin.MessageOriginUser != nil {
			ev.ForwardedFromID = msg.ForwardOrigin.MessageOriginUser.SenderUser.ID
		}
		return ev, true

	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		ev := Event{
			UpdateID:       update.ID,
			SenderID:       cq.From.ID,
			SenderUsername: cq.From.Username,
			CallbackID:     cq.ID,
			CallbackData:   cq.Data,
		}
		switch {
		case cq.Message.Message != nil:
			if cq.Message.Message.Chat.Type != tgmodels.ChatTypePrivate {
				return Event{}, false
			}
			ev.ChatID = cq.Message.Message.Chat.ID
			ev.SourceMessageID = cq.Message.Message.ID
		case cq.Message.InaccessibleMessage != nil:
			if cq.Message.InaccessibleMessage.Chat.Type != tgmodels.ChatTypePrivate {
				return Event{}, false
			}
			ev.ChatID = cq.Message.InaccessibleMessage.Chat.ID
			ev.SourceMessageID = cq.Message.InaccessibleMessage.MessageID
		default:
			return Event{}, false
		}
		return ev, true
	}
	return Event{}, false
}
