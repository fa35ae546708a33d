package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ad/go-telegram-gorbushka/internal/callback"
	"github.com/ad/go-telegram-gorbushka/internal/fsm"
	"github.com/ad/go-telegram-gorbushka/internal/logging"
	"github.com/ad/go-telegram-gorbushka/internal/models"
	"github.com/ad/go-telegram-gorbushka/internal/services"
	"github.com/ad/go-telegram-gorbushka/internal/telegram"
)

const textTelegramUnknown = "Не указан"

func backToAdminList() []telegram.Button {
	return telegram.Row(telegram.CallbackButton("↩️ Вернуться в список администраторов", callback.AdminList{}))
}

func backToBlackList() []telegram.Button {
	return telegram.Row(telegram.CallbackButton("↩️ Вернуться в чёрный список", callback.BlackList{Page: 1}))
}

// profile looks a user up for display. Lookup failures degrade to an
// id-only profile so one unreachable user does not break a whole list.
func (a *AdminFlow) profile(ctx context.Context, userID int64) models.Profile {
	p, err := a.deps.Platform.GetChatMember(ctx, userID, userID)
	if err != nil {
		logging.FromContext(ctx).WithError(err).WithField("target_id", userID).Warn("profile lookup failed")
		return models.Profile{UserID: userID}
	}
	return p
}

func (a *AdminFlow) rosterCardText(p models.Profile, dateLabel string, at time.Time) string {
	mention := p.Mention()
	if mention == "" {
		mention = textTelegramUnknown
	}
	return strings.Join([]string{
		"ФИО: " + p.FullName(),
		"Telegram: " + mention,
		dateLabel + ": " + services.FormatDateTime(at, a.deps.location()),
	}, "\n")
}

func (a *AdminFlow) adminList(ctx context.Context) (*screen, error) {
	admins, err := a.deps.Admins.FindAll()
	if err != nil {
		return nil, fmt.Errorf("load admins: %w", err)
	}

	addRow := telegram.Row(telegram.CallbackButton("➕ Добавить", callback.AddAdmin{}))
	if len(admins) == 0 {
		return newScreen(fsm.StateAdminList, "Администраторы не найдены", addRow, backToMenu()), nil
	}

	kb := make(telegram.Keyboard, 0, len(admins)+2)
	for _, admin := range admins {
		label := a.profile(ctx, admin.UserID).ListLabel()
		kb = append(kb, telegram.Row(telegram.CallbackButton(label, callback.AdminCard{ID: admin.ID})))
	}
	kb = append(kb, addRow, backToMenu())

	return &screen{
		view:  telegram.View{Text: "Список администраторов:", Keyboard: kb},
		state: fsm.StateAdminList,
	}, nil
}

// adminCard hides the demote control on the viewer's own card.
func (a *AdminFlow) adminCard(ctx context.Context, viewerID, id int64) (*screen, error) {
	admin, err := a.deps.Admins.FindByID(id)
	if errors.Is(err, models.ErrNotFound) {
		return newScreen(fsm.StateAdminCardError, "Администратор не найден", backToAdminList()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load admin %d: %w", id, err)
	}

	text := a.rosterCardText(a.profile(ctx, admin.UserID), "Дата выдачи прав", admin.CreatedAt)
	var kb telegram.Keyboard
	if admin.UserID != viewerID {
		kb = append(kb, telegram.Row(telegram.CallbackButton("❌ Удалить из администраторов", callback.DemoteAdmin{ID: admin.ID})))
	}
	kb = append(kb, backToAdminList())

	return &screen{view: telegram.View{Text: text, Keyboard: kb}, state: fsm.StateAdminCard}, nil
}

func (a *AdminFlow) addAdminPrompt() *screen {
	return newScreen(fsm.StateAdminAdd, textUserPrompt,
		telegram.Row(telegram.CallbackButton("❌ Отмена", callback.AdminList{})))
}

func (a *AdminFlow) addAdmin(userID int64) (*screen, error) {
	exists, err := a.deps.Admins.ExistsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("check admin %d: %w", userID, err)
	}
	if !exists {
		if err := a.deps.Admins.Save(&models.AdminEntry{UserID: userID, CreatedAt: a.deps.now()}); err != nil {
			return nil, fmt.Errorf("save admin %d: %w", userID, err)
		}
	}
	return newScreen(fsm.StateAdminAddSuccess, "Администратор успешно добавлен", backToAdminList()), nil
}

func (a *AdminFlow) demoteAdmin(id int64) (*screen, error) {
	if err := a.deps.Admins.DeleteByID(id); err != nil {
		return nil, fmt.Errorf("delete admin %d: %w", id, err)
	}
	return newScreen(fsm.StateAdminDemoteSuccess, "Администратор успешно удален", backToAdminList()), nil
}

func (a *AdminFlow) blackList(ctx context.Context, page int, filter string) (*screen, error) {
	entries, err := a.deps.BlackList.FindAll()
	if err != nil {
		return nil, fmt.Errorf("load black list: %w", err)
	}

	addRow := telegram.Row(telegram.CallbackButton("➕ Добавить", callback.AddToBlackList{}))
	if len(entries) == 0 {
		return newScreen(fsm.StateAdminBlackList, "Чёрный список пуст", addRow, backToMenu()), nil
	}

	items := make([]services.ListItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, services.ListItem{ID: entry.ID, Label: a.profile(ctx, entry.UserID).ListLabel()})
	}
	p := services.Paginate(items, page, filter)

	kb := listKeyboard(p,
		func(id int64) callback.Command { return callback.BlackListCard{ID: id} },
		func(n int, f string) callback.Command { return callback.BlackList{Page: n, Filter: f} },
		callback.BlackListFilter{},
		addRow,
	)
	return &screen{
		view:  telegram.View{Text: listText("Чёрный список", p), Keyboard: kb},
		state: fsm.StateAdminBlackList,
	}, nil
}

func (a *AdminFlow) blackListFilterPrompt() *screen {
	return newScreen(fsm.StateAdminBlackListFilter, textFilterPrompt, backToBlackList())
}

func (a *AdminFlow) blackListCard(ctx context.Context, id int64) (*screen, error) {
	entry, err := a.deps.BlackList.FindByID(id)
	if errors.Is(err, models.ErrNotFound) {
		return newScreen(fsm.StateAdminBlackListCardError, "Запись в чёрном списке не найдена", backToBlackList()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load black list entry %d: %w", id, err)
	}

	text := a.rosterCardText(a.profile(ctx, entry.UserID), "Дата блокировки", entry.CreatedAt)
	return newScreen(fsm.StateAdminBlackListCard, text,
		telegram.Row(telegram.CallbackButton("❌ Разблокировать", callback.RemoveFromBlackList{UserID: entry.UserID})),
		backToBlackList(),
	), nil
}

func (a *AdminFlow) blackListAddPrompt() *screen {
	return newScreen(fsm.StateAdminBlackListAdd, textUserPrompt,
		telegram.Row(telegram.CallbackButton("❌ Отмена", callback.BlackList{Page: 1})))
}

// memberChats is the order bans and unbans are applied in.
func (a *AdminFlow) memberChats() []int64 {
	return []int64{a.deps.Targets.Main, a.deps.Targets.Communication, a.deps.Targets.Price}
}

// addToBlackList bans the user everywhere before recording the entry. The
// first failed ban aborts; bans already applied stay in place.
func (a *AdminFlow) addToBlackList(ctx context.Context, userID int64) (*screen, error) {
	exists, err := a.deps.BlackList.ExistsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("check black list %d: %w", userID, err)
	}
	if !exists {
		for _, chatID := range a.memberChats() {
			if err := a.deps.Platform.BanChatMember(ctx, chatID, userID); err != nil {
				return nil, fmt.Errorf("ban %d in chat %d: %w", userID, chatID, err)
			}
		}
		if err := a.deps.BlackList.Save(&models.BlackListEntry{UserID: userID, CreatedAt: a.deps.now()}); err != nil {
			return nil, fmt.Errorf("save black list entry %d: %w", userID, err)
		}
		logging.FromContext(ctx).WithFields(logging.Fields{"event": "ban", "target_id": userID}).Info("user blacklisted")
	}
	return newScreen(fsm.StateAdminBlackListAddSuccess, "Пользователь успешно добавлен в чёрный список", backToBlackList()), nil
}

func (a *AdminFlow) removeFromBlackList(ctx context.Context, userID int64) (*screen, error) {
	for _, chatID := range a.memberChats() {
		if err := a.deps.Platform.UnbanChatMember(ctx, chatID, userID); err != nil {
			return nil, fmt.Errorf("unban %d in chat %d: %w", userID, chatID, err)
		}
	}
	if err := a.deps.BlackList.DeleteByUserID(userID); err != nil {
		return nil, fmt.Errorf("delete black list entry %d: %w", userID, err)
	}
	logging.FromContext(ctx).WithFields(logging.Fields{"event": "unban", "target_id": userID}).Info("user removed from black list")
	return newScreen(fsm.StateAdminBlackListRemoveSuccess, "Пользователь успешно убран из чёрного списка", backToBlackList()), nil
}
