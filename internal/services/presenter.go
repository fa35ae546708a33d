package services

import (
	"context"
	"errors"

	"github.com/ad/go-telegram-gorbushka/internal/logging"
	"github.com/ad/go-telegram-gorbushka/internal/session"
	"github.com/ad/go-telegram-gorbushka/internal/telegram"
)

// Messenger is the part of the platform the presenter needs.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, view telegram.View) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, view telegram.View) error
	DeleteMessages(ctx context.Context, chatID int64, messageIDs []int) error
}

// Presenter keeps one live message per chat and cleans up stray messages.
type Presenter struct {
	messenger Messenger
	sessions  *session.Store
}

func NewPresenter(messenger Messenger, sessions *session.Store) *Presenter {
	return &Presenter{
		messenger: messenger,
		sessions:  sessions,
	}
}

// Present edits editTargetID in place, or sends a new message when it is 0
// or no longer exists. The rendered message becomes the chat's live message.
func (p *Presenter) Present(ctx context.Context, chatID int64, view telegram.View, editTargetID int) (int, error) {
	if editTargetID != 0 {
		err := p.messenger.EditMessage(ctx, chatID, editTargetID, view)
		if err == nil {
			p.sessions.SetLiveMessageID(chatID, editTargetID)
			return editTargetID, nil
		}
		if !errors.Is(err, telegram.ErrMessageNotFound) {
			return 0, err
		}
		logging.FromContext(ctx).WithField("message_id", editTargetID).Debug("live message is gone, sending a new one")
	}

	messageID, err := p.messenger.SendMessage(ctx, chatID, view)
	if err != nil {
		return 0, err
	}
	p.sessions.SetLiveMessageID(chatID, messageID)
	return messageID, nil
}

// PresentLive renders into the chat's current live message.
func (p *Presenter) PresentLive(ctx context.Context, chatID int64, view telegram.View) (int, error) {
	return p.Present(ctx, chatID, view, p.sessions.Get(chatID).LiveMessageID)
}

// Notify sends a standalone message that is not tracked as live.
func (p *Presenter) Notify(ctx context.Context, chatID int64, view telegram.View) (int, error) {
	return p.messenger.SendMessage(ctx, chatID, view)
}

// Complete deletes the trigger message (0 for none) and every queued stray
// message in one call. The queue is cleared even if the deletion fails.
func (p *Presenter) Complete(ctx context.Context, chatID int64, triggerID int) {
	ids := p.sessions.DrainPendingDeletes(chatID)
	if triggerID != 0 {
		ids = append([]int{triggerID}, ids...)
	}
	if len(ids) == 0 {
		return
	}
	if err := p.messenger.DeleteMessages(ctx, chatID, ids); err != nil {
		logging.FromContext(ctx).WithError(err).WithFields(logging.Fields{
			"event":    "cleanup",
			"messages": len(ids),
		}).Warn("stray message cleanup failed")
	}
}

// Reject answers invalid input with a visible error and queues the user's
// message for deletion on the next completed transition.
func (p *Presenter) Reject(ctx context.Context, chatID int64, triggerID int, text string) error {
	if triggerID != 0 {
		p.sessions.AppendPendingDelete(chatID, triggerID)
	}
	_, err := p.messenger.SendMessage(ctx, chatID, telegram.View{Text: text})
	return err
}
