package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ad/go-telegram-gorbushka/internal/session"
	"github.com/ad/go-telegram-gorbushka/internal/telegram"
	"github.com/ad/go-telegram-gorbushka/internal/telegram/telegramtest"
	"pgregory.net/rapid"
)

func TestPresenter_EditSetsLive(t *testing.T) {
	fake := telegramtest.New()
	sessions := session.NewStore()
	p := NewPresenter(fake, sessions)

	id, err := p.Present(context.Background(), 1, telegram.View{Text: "menu"}, 77)
	if err != nil {
		t.Fatal(err)
	}
	if id != 77 || len(fake.Edited) != 1 || len(fake.Sent) != 0 {
		t.Fatalf("expected in-place edit of 77, got id=%d edited=%d sent=%d", id, len(fake.Edited), len(fake.Sent))
	}
	if sessions.Get(1).LiveMessageID != 77 {
		t.Errorf("expected live id 77, got %d", sessions.Get(1).LiveMessageID)
	}
}

func TestPresenter_SendWithoutTarget(t *testing.T) {
	fake := telegramtest.New()
	sessions := session.NewStore()
	p := NewPresenter(fake, sessions)

	id, err := p.Present(context.Background(), 1, telegram.View{Text: "hello"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(fake.Sent) != 1 || sessions.Get(1).LiveMessageID != id {
		t.Fatalf("expected a new live message, got sent=%d live=%d id=%d", len(fake.Sent), sessions.Get(1).LiveMessageID, id)
	}
}

func TestPresenter_MissingTargetFallsBackToSend(t *testing.T) {
	fake := telegramtest.New()
	fake.Fail["EditMessage"] = fmt.Errorf("edit: %w", telegram.ErrMessageNotFound)
	sessions := session.NewStore()
	p := NewPresenter(fake, sessions)

	id, err := p.Present(context.Background(), 1, telegram.View{Text: "x"}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if id == 5 || len(fake.Sent) != 1 || sessions.Get(1).LiveMessageID != id {
		t.Fatalf("expected fallback send, got id=%d sent=%d", id, len(fake.Sent))
	}
}

func TestPresenter_EditFailurePropagates(t *testing.T) {
	fake := telegramtest.New()
	fake.Fail["EditMessage"] = errors.New("forbidden")
	sessions := session.NewStore()
	sessions.SetLiveMessageID(1, 3)
	p := NewPresenter(fake, sessions)

	if _, err := p.Present(context.Background(), 1, telegram.View{Text: "x"}, 5); err == nil {
		t.Fatal("expected error")
	}
	if sessions.Get(1).LiveMessageID != 3 {
		t.Error("live id must not change on failure")
	}
}

func TestPresenter_Cleanup_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fake := telegramtest.New()
		if rapid.Bool().Draw(t, "deleteFails") {
			fake.Fail["DeleteMessages"] = errors.New("message can't be deleted")
		}
		sessions := session.NewStore()
		p := NewPresenter(fake, sessions)
		ctx := context.Background()

		rejected := rapid.SliceOfN(rapid.IntRange(1, 100000), 0, 10).Draw(t, "rejected")
		for _, id := range rejected {
			if err := p.Reject(ctx, 9, id, "Некорректные данные"); err != nil {
				t.Fatal(err)
			}
		}
		if got := len(sessions.Get(9).PendingDeleteIDs); got != len(rejected) {
			t.Fatalf("expected %d queued messages, got %d", len(rejected), got)
		}

		trigger := rapid.IntRange(0, 100000).Draw(t, "trigger")
		p.Complete(ctx, 9, trigger)

		if left := sessions.Get(9).PendingDeleteIDs; len(left) != 0 {
			t.Fatalf("pending list must be empty after a completed transition, got %v", left)
		}

		want := len(rejected)
		if trigger != 0 {
			want++
		}
		if want == 0 {
			if len(fake.Deleted) != 0 {
				t.Fatalf("nothing to delete, but a delete call was made")
			}
			return
		}
		if len(fake.Deleted) != 1 || len(fake.Deleted[0]) != want {
			t.Fatalf("expected one bulk delete of %d ids, got %v", want, fake.Deleted)
		}
		if trigger != 0 && fake.Deleted[0][0] != trigger {
			t.Fatalf("trigger must be deleted first, got %v", fake.Deleted[0])
		}
	})
}

func TestPresenter_RejectDoesNotTrackErrorPrompt(t *testing.T) {
	fake := telegramtest.New()
	sessions := session.NewStore()
	p := NewPresenter(fake, sessions)

	if err := p.Reject(context.Background(), 1, 50, "Ошибка"); err != nil {
		t.Fatal(err)
	}
	pending := sessions.Get(1).PendingDeleteIDs
	if len(pending) != 1 || pending[0] != 50 {
		t.Fatalf("only the user's message must be queued, got %v", pending)
	}
	if sessions.Get(1).LiveMessageID != 0 {
		t.Error("error prompt must not become the live message")
	}
}
