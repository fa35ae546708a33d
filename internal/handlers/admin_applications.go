package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/ad/go-telegram-gorbushka/internal/callback"
	"github.com/ad/go-telegram-gorbushka/internal/fsm"
	"github.com/ad/go-telegram-gorbushka/internal/logging"
	"github.com/ad/go-telegram-gorbushka/internal/models"
	"github.com/ad/go-telegram-gorbushka/internal/services"
	"github.com/ad/go-telegram-gorbushka/internal/telegram"
)

const (
	textApplicationNotFound = "Заявка не найдена"
	textAlreadyDecided      = "Заявка уже обработана"
	textApproved            = "Заявка была успешно одобрена"
	textRejected            = "Заявка была успешно отклонена"

	textRejectedNotice = "К сожалению, ваша заявка была отклонена. ❌\nВы можете подать заявку заново, нажав кнопку ниже через 5 минут"
	textCategoriesList = "Выберите категорию (лист) из таблицы:"
)

func backToApplications() []telegram.Button {
	return telegram.Row(telegram.CallbackButton("↩️ Вернуться в список заявок", callback.ApplicationList{Page: 1}))
}

func (a *AdminFlow) applicationList(page int, filter string) (*screen, error) {
	apps, err := a.deps.Applications.FindAllByStatus(models.ApplicationStatusNew)
	if err != nil {
		return nil, fmt.Errorf("load pending applications: %w", err)
	}
	if len(apps) == 0 {
		return newScreen(fsm.StateAdminApplicationList, "Заявки не найдены", backToMenu()), nil
	}

	items := make([]services.ListItem, 0, len(apps))
	for _, app := range apps {
		items = append(items, services.ListItem{ID: app.ID, Label: services.ApplicationLabel(app)})
	}
	p := services.Paginate(items, page, filter)

	kb := listKeyboard(p,
		func(id int64) callback.Command { return callback.ApplicationCard{ID: id} },
		func(n int, f string) callback.Command { return callback.ApplicationList{Page: n, Filter: f} },
		callback.ApplicationFilter{},
	)
	return &screen{
		view:  telegram.View{Text: listText("Список заявок", p), Keyboard: kb},
		state: fsm.StateAdminApplicationList,
	}, nil
}

func (a *AdminFlow) applicationFilterPrompt() *screen {
	return newScreen(fsm.StateAdminApplicationListFilter, textFilterPrompt, backToApplications())
}

func (a *AdminFlow) applicationCard(id int64) (*screen, error) {
	app, err := a.deps.Applications.FindByID(id)
	if errors.Is(err, models.ErrNotFound) {
		return newScreen(fsm.StateAdminApplicationCardError, textApplicationNotFound, backToApplications()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load application %d: %w", id, err)
	}

	return newScreen(fsm.StateAdminApplicationCard, services.ApplicationText(app),
		telegram.Row(
			telegram.CallbackButton("✅ Одобрить", callback.ApproveApplication{ID: app.ID}),
			telegram.CallbackButton("❌ Отклонить", callback.RejectApplication{ID: app.ID}),
		),
		backToApplications(),
	), nil
}

// decide loads the application and applies the transition. A nil
// application with a screen means the guard failed and the screen explains why.
func (a *AdminFlow) decide(id int64, errState fsm.State, transition func(*models.Application) error) (*models.Application, *screen, error) {
	app, err := a.deps.Applications.FindByID(id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, newScreen(errState, textApplicationNotFound, backToApplications()), nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load application %d: %w", id, err)
	}

	err = transition(app)
	if err == nil {
		err = a.deps.Applications.Decide(app)
	}
	switch {
	case err == nil:
		return app, nil, nil
	case errors.Is(err, models.ErrAlreadyDecided):
		return nil, newScreen(errState, textAlreadyDecided, backToApplications()), nil
	case errors.Is(err, models.ErrNotFound):
		return nil, newScreen(errState, textApplicationNotFound, backToApplications()), nil
	}
	return nil, nil, fmt.Errorf("decide application %d: %w", id, err)
}

func (a *AdminFlow) approve(ctx context.Context, adminID, id int64) (*screen, error) {
	app, guard, err := a.decide(id, fsm.StateAdminApplicationApproveErr, func(app *models.Application) error {
		return app.Approve(adminID, a.deps.now())
	})
	if err != nil || guard != nil {
		return guard, err
	}

	log := logging.FromContext(ctx).WithFields(logging.Fields{
		"event":          "approve",
		"application_id": app.ID,
		"applicant_id":   app.UserID,
	})

	links := make([]string, 0, 3)
	for _, chatID := range []int64{a.deps.Targets.Main, a.deps.Targets.Price, a.deps.Targets.Communication} {
		link, err := a.deps.Platform.CreateInviteLink(ctx, chatID, 1)
		if err != nil {
			return nil, fmt.Errorf("invite link for chat %d: %w", chatID, err)
		}
		links = append(links, link)
	}

	notice := fmt.Sprintf("✅ Ваша заявка одобрена!\n"+
		"Вот ваши уникальные ссылки для вступления в группы (одноразовые):\n\n"+
		"Союз основной:\n%s\n\n"+
		"Союз цены:\n%s\n\n"+
		"Союз общение:\n%s", links[0], links[1], links[2])
	if _, err := a.deps.Presenter.Notify(ctx, app.UserID, telegram.View{Text: notice}); err != nil {
		return nil, fmt.Errorf("notify applicant: %w", err)
	}

	if err := a.deps.Sheet.AddApprovedApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("export approved application: %w", err)
	}

	log.Info("application approved")
	return newScreen(fsm.StateAdminApplicationApproved, textApproved, backToApplications()), nil
}

func (a *AdminFlow) rejectApplication(ctx context.Context, adminID, id int64) (*screen, error) {
	app, guard, err := a.decide(id, fsm.StateAdminApplicationRejectErr, func(app *models.Application) error {
		return app.Reject(adminID, a.deps.now())
	})
	if err != nil || guard != nil {
		return guard, err
	}

	notice := telegram.View{
		Text:     textRejectedNotice,
		Keyboard: telegram.Keyboard{telegram.Row(telegram.CallbackButton("Заполнить заново 🔄", callback.Fill{}))},
	}
	if _, err := a.deps.Presenter.Notify(ctx, app.UserID, notice); err != nil {
		return nil, fmt.Errorf("notify applicant: %w", err)
	}

	logging.FromContext(ctx).WithFields(logging.Fields{
		"event":          "reject",
		"application_id": app.ID,
		"applicant_id":   app.UserID,
	}).Info("application rejected")
	return newScreen(fsm.StateAdminApplicationRejected, textRejected, backToApplications()), nil
}

// updateCategories replaces the pinned category message in the main chat.
func (a *AdminFlow) updateCategories(ctx context.Context) (*screen, error) {
	categories, err := a.deps.Sheet.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if len(categories) == 0 {
		return newScreen(fsm.StateAdminUpdateCategoriesError, "Категории не найдены", backToMenu()), nil
	}

	mainChat := a.deps.Targets.Main
	pinned, err := a.deps.Pinned.FindAllByChatID(mainChat)
	if err != nil {
		return nil, fmt.Errorf("load pinned messages: %w", err)
	}
	for _, pm := range pinned {
		if err := a.deps.Platform.DeleteMessages(ctx, mainChat, []int{pm.MessageID}); err != nil {
			logging.FromContext(ctx).WithError(err).WithField("message_id", pm.MessageID).Warn("delete old category message failed")
		}
		if err := a.deps.Pinned.DeleteByID(pm.ID); err != nil {
			return nil, fmt.Errorf("drop pinned message %d: %w", pm.ID, err)
		}
	}

	kb := make(telegram.Keyboard, 0, (len(categories)+1)/2)
	for i := 0; i < len(categories); i += 2 {
		row := telegram.Row(telegram.URLButton(categories[i].Name, categories[i].Link))
		if i+1 < len(categories) {
			row = append(row, telegram.URLButton(categories[i+1].Name, categories[i+1].Link))
		}
		kb = append(kb, row)
	}

	messageID, err := a.deps.Presenter.Notify(ctx, mainChat, telegram.View{Text: textCategoriesList, Keyboard: kb})
	if err != nil {
		return nil, fmt.Errorf("send categories: %w", err)
	}
	if err := a.deps.Platform.PinChatMessage(ctx, mainChat, messageID); err != nil {
		return nil, fmt.Errorf("pin categories: %w", err)
	}
	if err := a.deps.Pinned.Save(&models.PinnedMessage{ChatID: mainChat, MessageID: messageID}); err != nil {
		return nil, fmt.Errorf("record pinned message: %w", err)
	}

	logging.FromContext(ctx).WithField("categories", len(categories)).Info("categories updated")
	return newScreen(fsm.StateAdminUpdateCategoriesSuccess, "Категории обновлены!", backToMenu()), nil
}
