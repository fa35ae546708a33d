package services

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/ad/go-telegram-gorbushka/internal/logging"
	"github.com/ad/go-telegram-gorbushka/internal/telegram"
)

// ErrorManager reports handler panics to the log and, when configured, to an alert chat.
type ErrorManager struct {
	messenger   Messenger
	alertChatID int64
}

func NewErrorManager(messenger Messenger, alertChatID int64) *ErrorManager {
	return &ErrorManager{
		messenger:   messenger,
		alertChatID: alertChatID,
	}
}

func (e *ErrorManager) NotifyPanic(ctx context.Context, panicValue interface{}, chatID, userID int64) {
	stack := string(debug.Stack())
	logging.FromContext(ctx).WithFields(logging.Fields{
		"event": "panic",
		"panic": fmt.Sprint(panicValue),
		"stack": stack,
	}).Error("handler panicked")

	if e.alertChatID == 0 {
		return
	}

	msg := fmt.Sprintf("🚨 Panic in handler\nChat: [%d]\nUser: [%d]\nError: %v\n\nStack trace:\n%s",
		chatID, userID, panicValue, stack)

	if len(msg) > 4000 {
		msg = msg[:4000] + "\n... (truncated)"
	}

	_, _ = e.messenger.SendMessage(ctx, e.alertChatID, telegram.View{Text: msg})
}
