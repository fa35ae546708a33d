package handlers

import (
	"context"
	"fmt"

	"github.com/ad/go-telegram-gorbushka/internal/fsm"
	"github.com/ad/go-telegram-gorbushka/internal/logging"
	"github.com/ad/go-telegram-gorbushka/internal/telegram"
)

// screen is a rendered view together with the state it leaves the chat in.
type screen struct {
	view  telegram.View
	state fsm.State
}

func newScreen(state fsm.State, text string, rows ...[]telegram.Button) *screen {
	return &screen{
		view:  telegram.View{Text: text, Keyboard: rows},
		state: state,
	}
}

// render presents scr as the live message, records its state and, since the
// event completed a transition, deletes the trigger and queued stray messages.
func render(ctx context.Context, d Deps, ev Event, scr *screen, editTarget int) error {
	if _, err := d.Presenter.Present(ctx, ev.ChatID, scr.view, editTarget); err != nil {
		return fmt.Errorf("render %s: %w", scr.state, err)
	}
	d.Sessions.SetState(ev.ChatID, scr.state)
	d.Presenter.Complete(ctx, ev.ChatID, ev.MessageID)
	return nil
}

// rejectInput answers invalid input without changing state.
func rejectInput(ctx context.Context, d Deps, ev Event, text string) error {
	logging.FromContext(ctx).WithFields(logging.Fields{
		"state":  d.Sessions.Get(ev.ChatID).State,
		"reason": text,
	}).Debug("input rejected")
	return d.Presenter.Reject(ctx, ev.ChatID, ev.MessageID, text)
}
