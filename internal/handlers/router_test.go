package handlers

import (
	"context"
	"testing"

	"github.com/ad/go-telegram-gorbushka/internal/callback"
	"github.com/ad/go-telegram-gorbushka/internal/fsm"
	"github.com/ad/go-telegram-gorbushka/internal/models"
	tgmodels "github.com/go-telegram/bot/models"
)

func TestRouter_ResolveRole(t *testing.T) {
	env := newTestEnv(t)
	if err := env.black.Save(&models.BlackListEntry{UserID: 900, CreatedAt: env.clock}); err != nil {
		t.Fatal(err)
	}
	if err := env.admins.Save(&models.AdminEntry{UserID: 900, CreatedAt: env.clock}); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		userID int64
		want   Role
	}{
		{testAdminID, RoleAdmin},
		{testApplicantID, RoleUser},
		{900, RoleBlocked},
	}
	for _, tc := range cases {
		got, err := env.router.ResolveRole(tc.userID)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("ResolveRole(%d) = %s, want %s", tc.userID, got, tc.want)
		}
	}
}

func TestRouter_BlockedSenderTouchesNoSession(t *testing.T) {
	env := newTestEnv(t)
	if err := env.black.Save(&models.BlackListEntry{UserID: testApplicantID, CreatedAt: env.clock}); err != nil {
		t.Fatal(err)
	}

	env.dispatch(t, env.text(testApplicantID, "/start"))
	env.dispatch(t, env.press(testApplicantID, callback.Fill{}))

	if got := env.fake.LastText(testApplicantID); got != textBlocked {
		t.Errorf("expected black list reply, got %q", got)
	}
	s := env.sessions.Get(testApplicantID)
	if s.State != fsm.StateNone || s.LiveMessageID != 0 || len(s.PendingDeleteIDs) != 0 {
		t.Errorf("session must stay untouched, got %+v", s)
	}
}

func TestRouter_HandleUpdateAnswersCallbacks(t *testing.T) {
	env := newTestEnv(t)

	env.router.HandleUpdate(context.Background(), nil, &tgmodels.Update{
		ID: 1,
		CallbackQuery: &tgmodels.CallbackQuery{
			ID:   "query-1",
			From: tgmodels.User{ID: testAdminID},
			Data: callback.Encode(callback.Menu{}),
			Message: tgmodels.MaybeInaccessibleMessage{
				Message: &tgmodels.Message{
					ID:   55,
					Chat: tgmodels.Chat{ID: testAdminID, Type: tgmodels.ChatTypePrivate},
				},
			},
		},
	})

	if len(env.fake.Answered) != 1 || env.fake.Answered[0] != "query-1" {
		t.Errorf("expected callback to be answered, got %v", env.fake.Answered)
	}
	if got := env.sessions.Get(testAdminID).State; got != fsm.StateAdminMenu {
		t.Errorf("expected menu state, got %q", got)
	}
	if len(env.fake.Edited) != 1 || env.fake.Edited[0].MessageID != 55 {
		t.Errorf("expected the pressed message to be edited, got %+v", env.fake.Edited)
	}
}

func TestRouter_HandleUpdateIgnoresGroupChats(t *testing.T) {
	env := newTestEnv(t)

	env.router.HandleUpdate(context.Background(), nil, &tgmodels.Update{
		ID: 2,
		Message: &tgmodels.Message{
			ID:   10,
			From: &tgmodels.User{ID: testAdminID},
			Chat: tgmodels.Chat{ID: testMainChat, Type: tgmodels.ChatTypeSupergroup},
			Text: "/start",
		},
	})

	if len(env.fake.Rendered) != 0 {
		t.Errorf("group updates must be ignored, got %+v", env.fake.Rendered)
	}
}

func TestRouter_UnknownCallbackIsDropped(t *testing.T) {
	env := newTestEnv(t)

	ev := env.press(testAdminID, callback.Menu{})
	ev.CallbackData = "bogus_payload"
	env.dispatch(t, ev)

	if len(env.fake.Rendered) != 0 {
		t.Errorf("unknown payload must not render, got %+v", env.fake.Rendered)
	}
}
