package handlers

import (
	"context"
	"fmt"

	"github.com/ad/go-telegram-gorbushka/internal/logging"
	"github.com/ad/go-telegram-gorbushka/internal/services"
	"github.com/ad/go-telegram-gorbushka/internal/telegram"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

const textBlocked = "Вы находитесь в черном списке"

type Role int

const (
	RoleUser Role = iota
	RoleAdmin
	RoleBlocked
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleBlocked:
		return "blocked"
	default:
		return "user"
	}
}

// Router resolves the sender role once per event and hands the event to a flow.
type Router struct {
	deps   Deps
	admin  *AdminFlow
	user   *UserFlow
	errMgr *services.ErrorManager
}

func NewRouter(deps Deps, admin *AdminFlow, user *UserFlow, errMgr *services.ErrorManager) *Router {
	return &Router{
		deps:   deps,
		admin:  admin,
		user:   user,
		errMgr: errMgr,
	}
}

// HandleUpdate is the bot.HandlerFunc registered with the long-polling client.
func (r *Router) HandleUpdate(ctx context.Context, _ *bot.Bot, update *tgmodels.Update) {
	ev, ok := EventFromUpdate(update)
	if !ok {
		return
	}

	entry := logging.FromContext(ctx).WithFields(logging.Fields{
		"trace_id":  uuid.NewString(),
		"update_id": ev.UpdateID,
		"chat_id":   ev.ChatID,
		"user_id":   ev.SenderID,
	})
	ctx = logging.WithEntry(ctx, entry)

	defer r.recoverPanic(ctx, ev)

	if ev.IsCallback() {
		if err := r.deps.Platform.AnswerCallback(ctx, ev.CallbackID); err != nil {
			entry.WithError(err).Debug("answer callback failed")
		}
	}

	if err := r.Dispatch(ctx, ev); err != nil {
		logging.FromContext(ctx).WithError(err).Error("event dropped")
	}
}

func (r *Router) recoverPanic(ctx context.Context, ev Event) {
	if v := recover(); v != nil {
		r.errMgr.NotifyPanic(ctx, v, ev.ChatID, ev.SenderID)
	}
}

// ResolveRole checks the black list before the admin roster, so a
// blacklisted admin is blocked.
func (r *Router) ResolveRole(userID int64) (Role, error) {
	blocked, err := r.deps.BlackList.ExistsByUserID(userID)
	if err != nil {
		return RoleUser, fmt.Errorf("check black list: %w", err)
	}
	if blocked {
		return RoleBlocked, nil
	}

	admin, err := r.deps.Admins.ExistsByUserID(userID)
	if err != nil {
		return RoleUser, fmt.Errorf("check admin roster: %w", err)
	}
	if admin {
		return RoleAdmin, nil
	}
	return RoleUser, nil
}

func (r *Router) Dispatch(ctx context.Context, ev Event) error {
	role, err := r.ResolveRole(ev.SenderID)
	if err != nil {
		return err
	}
	ctx = logging.WithEntry(ctx, logging.FromContext(ctx).WithField("role", role.String()))

	switch role {
	case RoleBlocked:
		logging.FromContext(ctx).Debug("sender is blacklisted")
		_, err := r.deps.Presenter.Notify(ctx, ev.ChatID, telegram.View{Text: textBlocked})
		return err
	case RoleAdmin:
		return r.admin.Handle(ctx, ev)
	default:
		return r.user.Handle(ctx, ev)
	}
}
