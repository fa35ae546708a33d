package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/ad/go-telegram-gorbushka/internal/callback"
	"github.com/ad/go-telegram-gorbushka/internal/fsm"
	"github.com/ad/go-telegram-gorbushka/internal/logging"
	"github.com/ad/go-telegram-gorbushka/internal/services"
	"github.com/ad/go-telegram-gorbushka/internal/telegram"
)

const (
	menuApplicationsText     = "📋 Заявки"
	menuUpdateCategoriesText = "🔄 Обновить категории"
	menuAdminListText        = "🔐 Администраторы"
	menuBlackListText        = "🚫 Чёрный список"

	textInvalidData  = "Некорректные данные"
	textSendText     = "Пожалуйста, пришлите текст"
	textSendContact  = "Пожалуйста, пришлите контакт или перешлите сообщение"
	textFilterPrompt = "Введите фильтр для поиска"
	textFilterLong   = "Фильтр слишком длинный, сократите его"
	textUserPrompt   = "Пожалуйста, пришлите пользователя как контакт или перешлите сообщения от него"
)

var adminCommands = []telegram.Command{
	{Name: "/applications", Description: menuApplicationsText},
	{Name: "/update_categories", Description: menuUpdateCategoriesText},
	{Name: "/admin_list", Description: menuAdminListText},
	{Name: "/black_list", Description: menuBlackListText},
}

// AdminFlow is the moderation state machine. Commands and callbacks are
// accepted in any state; the state only decides how free text is read.
type AdminFlow struct {
	deps Deps
}

func NewAdminFlow(deps Deps) *AdminFlow {
	return &AdminFlow{deps: deps}
}

func (a *AdminFlow) Handle(ctx context.Context, ev Event) error {
	if ev.IsCallback() {
		return a.handleCallback(ctx, ev)
	}
	return a.handleMessage(ctx, ev)
}

func (a *AdminFlow) handleCallback(ctx context.Context, ev Event) error {
	cmd, err := callback.Parse(ev.CallbackData)
	if err != nil {
		logging.FromContext(ctx).WithError(err).WithField("data", ev.CallbackData).Warn("unrecognized callback")
		return nil
	}

	scr, err := a.execute(ctx, ev, cmd)
	if err != nil {
		return err
	}
	if scr == nil {
		return nil
	}
	return a.show(ctx, ev, scr, ev.SourceMessageID)
}

func (a *AdminFlow) handleMessage(ctx context.Context, ev Event) error {
	var (
		scr *screen
		err error
	)

	switch ev.Command() {
	case "/start", "/menu":
		if err := a.deps.Platform.SetMyCommands(ctx, ev.ChatID, adminCommands); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("set admin commands failed")
		}
		scr = a.menu()
	case "/applications":
		scr, err = a.applicationList(1, "")
	case "/update_categories":
		scr, err = a.updateCategories(ctx)
	case "/admin_list":
		scr, err = a.adminList(ctx)
	case "/black_list":
		scr, err = a.blackList(ctx, 1, "")
	default:
		return a.handleInput(ctx, ev)
	}
	if err != nil {
		return err
	}

	return a.show(ctx, ev, scr, a.deps.Sessions.Get(ev.ChatID).LiveMessageID)
}

// handleInput interprets free text and shared contacts according to the
// current state. Anything unexpected is rejected and left for cleanup.
func (a *AdminFlow) handleInput(ctx context.Context, ev Event) error {
	var (
		scr *screen
		err error
	)

	text := strings.TrimSpace(ev.Text)
	state := a.deps.Sessions.Get(ev.ChatID).State
	switch state {
	case fsm.StateAdminApplicationListFilter, fsm.StateAdminBlackListFilter:
		switch {
		case text == "":
			return a.reject(ctx, ev, textSendText)
		case len(text) > callback.MaxFilterLen:
			return a.reject(ctx, ev, textFilterLong)
		}
		if state == fsm.StateAdminApplicationListFilter {
			scr, err = a.applicationList(1, text)
		} else {
			scr, err = a.blackList(ctx, 1, text)
		}
	case fsm.StateAdminAdd:
		target := ev.TargetUserID()
		if target == 0 {
			return a.reject(ctx, ev, textSendContact)
		}
		scr, err = a.addAdmin(target)
	case fsm.StateAdminBlackListAdd:
		target := ev.TargetUserID()
		if target == 0 {
			return a.reject(ctx, ev, textSendContact)
		}
		scr, err = a.addToBlackList(ctx, target)
	default:
		return a.reject(ctx, ev, textInvalidData)
	}
	if err != nil {
		return err
	}

	return a.show(ctx, ev, scr, a.deps.Sessions.Get(ev.ChatID).LiveMessageID)
}

func (a *AdminFlow) execute(ctx context.Context, ev Event, cmd callback.Command) (*screen, error) {
	switch c := cmd.(type) {
	case callback.Menu:
		return a.menu(), nil
	case callback.ApplicationList:
		return a.applicationList(c.Page, c.Filter)
	case callback.ApplicationFilter:
		return a.applicationFilterPrompt(), nil
	case callback.ApplicationCard:
		return a.applicationCard(c.ID)
	case callback.ApproveApplication:
		return a.approve(ctx, ev.SenderID, c.ID)
	case callback.RejectApplication:
		return a.rejectApplication(ctx, ev.SenderID, c.ID)
	case callback.UpdateCategories:
		return a.updateCategories(ctx)
	case callback.AdminList:
		return a.adminList(ctx)
	case callback.AdminCard:
		return a.adminCard(ctx, ev.SenderID, c.ID)
	case callback.AddAdmin:
		return a.addAdminPrompt(), nil
	case callback.DemoteAdmin:
		return a.demoteAdmin(c.ID)
	case callback.BlackList:
		return a.blackList(ctx, c.Page, c.Filter)
	case callback.BlackListFilter:
		return a.blackListFilterPrompt(), nil
	case callback.BlackListCard:
		return a.blackListCard(ctx, c.ID)
	case callback.AddToBlackList:
		return a.blackListAddPrompt(), nil
	case callback.RemoveFromBlackList:
		return a.removeFromBlackList(ctx, c.UserID)
	}

	// Intake buttons pressed by an admin.
	logging.FromContext(ctx).WithField("data", ev.CallbackData).Debug("callback not handled by admin flow")
	return nil, nil
}

func (a *AdminFlow) show(ctx context.Context, ev Event, scr *screen, editTarget int) error {
	return render(ctx, a.deps, ev, scr, editTarget)
}

func (a *AdminFlow) reject(ctx context.Context, ev Event, text string) error {
	return rejectInput(ctx, a.deps, ev, text)
}

func (a *AdminFlow) menu() *screen {
	return newScreen(fsm.StateAdminMenu, "Меню администратора",
		telegram.Row(telegram.CallbackButton(menuApplicationsText, callback.ApplicationList{Page: 1})),
		telegram.Row(telegram.CallbackButton(menuUpdateCategoriesText, callback.UpdateCategories{})),
		telegram.Row(telegram.CallbackButton(menuAdminListText, callback.AdminList{})),
		telegram.Row(telegram.CallbackButton(menuBlackListText, callback.BlackList{Page: 1})),
	)
}

func backToMenu() []telegram.Button {
	return telegram.Row(telegram.CallbackButton("↩️ Вернуться в меню администратора", callback.Menu{}))
}

// listKeyboard lays out one page: an entry per row, the page controls, the
// search button, any extra rows and finally the way back to the menu.
func listKeyboard(
	p services.ListPage,
	open func(id int64) callback.Command,
	page func(n int, filter string) callback.Command,
	search callback.Command,
	extra ...[]telegram.Button,
) telegram.Keyboard {
	kb := make(telegram.Keyboard, 0, len(p.Items)+3+len(extra))
	for _, item := range p.Items {
		kb = append(kb, telegram.Row(telegram.CallbackButton(item.Label, open(item.ID))))
	}

	var nav []telegram.Button
	if p.HasPrev() {
		nav = append(nav, telegram.CallbackButton("⬅️ Назад", page(p.Page-1, p.Filter)))
	}
	if p.HasNext() {
		nav = append(nav, telegram.CallbackButton("➡️ Вперед", page(p.Page+1, p.Filter)))
	}
	if len(nav) > 0 {
		kb = append(kb, nav)
	}

	kb = append(kb, telegram.Row(telegram.CallbackButton("🔎 Поиск", search)))
	kb = append(kb, extra...)
	return append(kb, backToMenu())
}

func listText(title string, p services.ListPage) string {
	lines := []string{
		title,
		fmt.Sprintf("Страница: %d из %d", p.Page, p.TotalPages),
	}
	if strings.TrimSpace(p.Filter) != "" {
		lines = append(lines, "Фильтр: "+p.Filter)
	}
	return strings.Join(lines, "\n")
}
