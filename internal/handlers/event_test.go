package handlers

import (
	"testing"

	tgmodels "github.com/go-telegram/bot/models"
)

func TestEventFromUpdate_Message(t *testing.T) {
	ev, ok := EventFromUpdate(&tgmodels.Update{
		ID: 7,
		Message: &tgmodels.Message{
			ID:      12,
			From:    &tgmodels.User{ID: 500, Username: "ivan"},
			Chat:    tgmodels.Chat{ID: 500, Type: tgmodels.ChatTypePrivate},
			Contact: &tgmodels.Contact{UserID: 777},
			ForwardOrigin: &tgmodels.MessageOrigin{
				MessageOriginUser: &tgmodels.MessageOriginUser{SenderUser: tgmodels.User{ID: 888}},
			},
		},
	})
	if !ok {
		t.Fatal("expected private message to be accepted")
	}
	if ev.ChatID != 500 || ev.SenderID != 500 || ev.MessageID != 12 || ev.SenderUsername != "ivan" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.IsCallback() {
		t.Error("message must not be a callback")
	}
	if got := ev.TargetUserID(); got != 777 {
		t.Errorf("contact must win over forward, got %d", got)
	}

	ev.ContactUserID = 0
	if got := ev.TargetUserID(); got != 888 {
		t.Errorf("expected forwarded sender, got %d", got)
	}
}

func TestEventFromUpdate_Rejects(t *testing.T) {
	cases := map[string]*tgmodels.Update{
		"group message": {Message: &tgmodels.Message{
			From: &tgmodels.User{ID: 1},
			Chat: tgmodels.Chat{ID: -5, Type: tgmodels.ChatTypeGroup},
		}},
		"no sender": {Message: &tgmodels.Message{
			Chat: tgmodels.Chat{ID: 1, Type: tgmodels.ChatTypePrivate},
		}},
		"callback without message": {CallbackQuery: &tgmodels.CallbackQuery{ID: "q", From: tgmodels.User{ID: 1}}},
		"other update":             {},
	}
	for name, update := range cases {
		if _, ok := EventFromUpdate(update); ok {
			t.Errorf("%s: expected update to be ignored", name)
		}
	}
}

func TestEventFromUpdate_InaccessibleCallbackMessage(t *testing.T) {
	ev, ok := EventFromUpdate(&tgmodels.Update{
		CallbackQuery: &tgmodels.CallbackQuery{
			ID:   "q",
			From: tgmodels.User{ID: 1},
			Data: "menu",
			Message: tgmodels.MaybeInaccessibleMessage{
				InaccessibleMessage: &tgmodels.InaccessibleMessage{
					Chat:      tgmodels.Chat{ID: 1, Type: tgmodels.ChatTypePrivate},
					MessageID: 99,
				},
			},
		},
	})
	if !ok {
		t.Fatal("expected callback to be accepted")
	}
	if !ev.IsCallback() || ev.SourceMessageID != 99 || ev.CallbackData != "menu" {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestEvent_Command(t *testing.T) {
	cases := map[string]string{
		"/start":               "/start",
		"/start@gorbushka_bot": "/start",
		"/applications extra":  "/applications",
		"hello":                "",
		"":                     "",
	}
	for text, want := range cases {
		if got := (Event{Text: text}).Command(); got != want {
			t.Errorf("Command(%q) = %q, want %q", text, got, want)
		}
	}
}
