package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlekSi/pointer"
	"github.com/ad/go-telegram-gorbushka/internal/callback"
	"github.com/ad/go-telegram-gorbushka/internal/fsm"
	"github.com/ad/go-telegram-gorbushka/internal/logging"
	"github.com/ad/go-telegram-gorbushka/internal/models"
	"github.com/ad/go-telegram-gorbushka/internal/services"
	"github.com/ad/go-telegram-gorbushka/internal/session"
	"github.com/ad/go-telegram-gorbushka/internal/telegram"
)

// Form field keys kept in the session while the applicant fills the form.
const (
	fieldFIO           = "fio"
	fieldPhone         = "phone"
	fieldRole          = "role"
	fieldOfficeNumber  = "office_number"
	fieldApplicationID = "application_id"
)

const (
	textWelcome          = "Добро пожаловать в систему!"
	textBadFormat        = "Ошибка: Некорректный формат сообщения"
	textBadFIO           = "Ошибка: ФИО должно содержать только буквы и пробелы"
	textBadPhone         = "Ошибка: Введите корректный номер телефона (формат: +71234567891)"
	textUnexpectedText   = "Ошибка: Отправка сообщений недопустима"
	textVerificationFail = "⚠️ Ошибка при верификации. Заполните анкету снова"
	textSaving           = "⏳ Сохраняем данные..."
	textSubmitted        = "✅ Заявка успешно отправлена! Ожидайте подтверждения"
	textSubmitFailed     = "⚠️ Ошибка при отправке. Попробуйте позже"
)

// UserFlow is the application intake state machine:
// FIO, phone, role, office number for sellers, verification, submitted.
type UserFlow struct {
	deps Deps
	gate *services.EligibilityGate
}

func NewUserFlow(deps Deps, gate *services.EligibilityGate) *UserFlow {
	return &UserFlow{deps: deps, gate: gate}
}

func (u *UserFlow) Handle(ctx context.Context, ev Event) error {
	reason, err := u.gate.Check(ev.SenderID)
	if err != nil {
		return err
	}
	if reason != "" {
		logging.FromContext(ctx).WithField("reason", reason).Debug("intake blocked")
		_, err := u.deps.Presenter.Notify(ctx, ev.ChatID, telegram.View{Text: reason})
		return err
	}

	if ev.IsCallback() {
		return u.handleCallback(ctx, ev)
	}
	return u.handleMessage(ctx, ev)
}

func (u *UserFlow) handleMessage(ctx context.Context, ev Event) error {
	if ev.Command() == "/start" {
		if err := u.deps.Platform.DeleteMyCommands(ctx, ev.ChatID); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("delete commands failed")
		}
		u.deps.Sessions.ResetFields(ev.ChatID)
		scr := newScreen(fsm.StateUserWelcome, textWelcome,
			telegram.Row(telegram.CallbackButton("Перейти к верификации", callback.Fill{})))
		return render(ctx, u.deps, ev, scr, 0)
	}

	text := strings.TrimSpace(ev.Text)
	var scr *screen

	switch u.deps.Sessions.Get(ev.ChatID).State {
	case fsm.StateUserFIO:
		switch {
		case text == "":
			return rejectInput(ctx, u.deps, ev, textBadFormat)
		case !services.ValidFIO(text):
			return rejectInput(ctx, u.deps, ev, textBadFIO)
		}
		u.setFields(ev.ChatID, map[string]*string{fieldFIO: pointer.ToString(text)})
		scr = phonePrompt()

	case fsm.StateUserPhone:
		if text == "" {
			return rejectInput(ctx, u.deps, ev, textBadFormat)
		}
		phone, ok := services.NormalizePhone(text)
		if !ok {
			return rejectInput(ctx, u.deps, ev, textBadPhone)
		}
		u.setFields(ev.ChatID, map[string]*string{fieldPhone: pointer.ToString(phone)})
		scr = rolePrompt()

	case fsm.StateUserOfficeNumber:
		if text == "" {
			return rejectInput(ctx, u.deps, ev, textBadFormat)
		}
		u.setFields(ev.ChatID, map[string]*string{fieldOfficeNumber: pointer.ToString(text)})
		scr = u.verification(ev.ChatID)

	default:
		return rejectInput(ctx, u.deps, ev, textUnexpectedText)
	}

	return render(ctx, u.deps, ev, scr, u.deps.Sessions.Get(ev.ChatID).LiveMessageID)
}

func (u *UserFlow) handleCallback(ctx context.Context, ev Event) error {
	cmd, err := callback.Parse(ev.CallbackData)
	if err != nil {
		logging.FromContext(ctx).WithError(err).WithField("data", ev.CallbackData).Warn("unrecognized callback")
		return nil
	}

	var scr *screen
	switch cmd.(type) {
	case callback.Fill:
		u.deps.Sessions.ResetFields(ev.ChatID)
		scr = fioPrompt()
	case callback.ChooseSeller:
		u.setFields(ev.ChatID, map[string]*string{fieldRole: pointer.ToString(models.RoleSeller), fieldOfficeNumber: nil})
		scr = officePrompt()
	case callback.ChooseBuyer:
		u.setFields(ev.ChatID, map[string]*string{fieldRole: pointer.ToString(models.RoleBuyer), fieldOfficeNumber: nil})
		scr = u.verification(ev.ChatID)
	case callback.BackFromPhone:
		scr = fioPrompt()
	case callback.BackFromRole:
		scr = phonePrompt()
	case callback.BackFromOfficeNumber:
		scr = rolePrompt()
	case callback.Submit:
		return u.submit(ctx, ev)
	default:
		logging.FromContext(ctx).WithField("data", ev.CallbackData).Debug("callback not handled by user flow")
		return nil
	}

	return render(ctx, u.deps, ev, scr, ev.SourceMessageID)
}

// setFields merges a form patch. Any edit invalidates a remembered
// application id so a later submit persists the new data.
func (u *UserFlow) setFields(chatID int64, patch map[string]*string) {
	patch[fieldApplicationID] = nil
	u.deps.Sessions.MergeFields(chatID, patch)
}

func fioPrompt() *screen {
	return newScreen(fsm.StateUserFIO, "Введите ваше ФИО:")
}

func phonePrompt() *screen {
	return newScreen(fsm.StateUserPhone, "Введите номер вашего телефона:",
		telegram.Row(telegram.CallbackButton("⬅️ Назад", callback.BackFromPhone{})))
}

func rolePrompt() *screen {
	return newScreen(fsm.StateUserRole, "Выберите свою роль:",
		telegram.Row(
			telegram.CallbackButton(models.RoleSeller, callback.ChooseSeller{}),
			telegram.CallbackButton(models.RoleBuyer, callback.ChooseBuyer{}),
		),
		telegram.Row(telegram.CallbackButton("⬅️ Назад", callback.BackFromRole{})),
	)
}

func officePrompt() *screen {
	return newScreen(fsm.StateUserOfficeNumber, "Введите номер вашего офиса:",
		telegram.Row(telegram.CallbackButton("⬅️ Назад", callback.BackFromOfficeNumber{})))
}

type form struct {
	fio, phone, role, office string
}

func readForm(s session.Session) (form, bool) {
	var f form
	var ok bool
	if f.fio, ok = s.Field(fieldFIO); !ok {
		return f, false
	}
	if f.phone, ok = s.Field(fieldPhone); !ok {
		return f, false
	}
	if f.role, ok = s.Field(fieldRole); !ok {
		return f, false
	}
	f.office, _ = s.Field(fieldOfficeNumber)
	return f, true
}

func verificationFailed(state fsm.State) *screen {
	return newScreen(state, textVerificationFail,
		telegram.Row(telegram.CallbackButton("Заполнить заново", callback.Fill{})))
}

// verification renders the filled form for confirmation. With required
// fields missing the chat keeps its state and is asked to start over.
func (u *UserFlow) verification(chatID int64) *screen {
	s := u.deps.Sessions.Get(chatID)
	f, ok := readForm(s)
	if !ok {
		return verificationFailed(s.State)
	}

	return &screen{
		view: telegram.View{
			Text: services.VerificationText(f.fio, f.phone, f.role, f.office),
			HTML: true,
			Keyboard: telegram.Keyboard{
				telegram.Row(telegram.CallbackButton("Заполнить заново", callback.Fill{})),
				telegram.Row(telegram.CallbackButton("Отправить", callback.Submit{})),
			},
		},
		state: fsm.StateUserVerification,
	}
}

// submit persists the application and exports it. On failure the form stays
// in the session and the applicant gets a retry button; a retry after the
// row was already stored only repeats the export.
func (u *UserFlow) submit(ctx context.Context, ev Event) error {
	s := u.deps.Sessions.Get(ev.ChatID)
	f, ok := readForm(s)
	if !ok {
		return render(ctx, u.deps, ev, verificationFailed(s.State), ev.SourceMessageID)
	}

	placeholderID, err := u.deps.Presenter.Present(ctx, ev.ChatID, telegram.View{Text: textSaving}, ev.SourceMessageID)
	if err != nil {
		return fmt.Errorf("render placeholder: %w", err)
	}

	if err := u.store(ctx, ev, s, f); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("event", "submit").Error("application submit failed")
		failed := newScreen(s.State, textSubmitFailed,
			telegram.Row(telegram.CallbackButton("Повторить отправку", callback.Submit{})))
		return render(ctx, u.deps, ev, failed, placeholderID)
	}

	u.deps.Sessions.ResetFields(ev.ChatID)
	return render(ctx, u.deps, ev, newScreen(fsm.StateUserSubmitted, textSubmitted), placeholderID)
}

func (u *UserFlow) store(ctx context.Context, ev Event, s session.Session, f form) error {
	var app *models.Application

	if raw, ok := s.Field(fieldApplicationID); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("remembered application id %q: %w", raw, err)
		}
		app, err = u.deps.Applications.FindByID(id)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return err
		}
	}

	if app == nil {
		app = &models.Application{
			UserID:       ev.SenderID,
			Username:     pointer.ToStringOrNil(ev.SenderUsername),
			FIO:          f.fio,
			Phone:        f.phone,
			Role:         f.role,
			OfficeNumber: pointer.ToStringOrNil(f.office),
			Status:       models.ApplicationStatusNew,
			CreatedAt:    u.deps.now(),
		}
		if err := u.deps.Applications.Save(app); err != nil {
			return fmt.Errorf("save application: %w", err)
		}
		u.deps.Sessions.MergeFields(ev.ChatID, map[string]*string{
			fieldApplicationID: pointer.ToString(strconv.FormatInt(app.ID, 10)),
		})
	}

	if err := u.deps.Sheet.AddApplication(ctx, app); err != nil {
		return fmt.Errorf("export application %d: %w", app.ID, err)
	}

	logging.FromContext(ctx).WithField("application_id", app.ID).Info("application submitted")
	return nil
}
