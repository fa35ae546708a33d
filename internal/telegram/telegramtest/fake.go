// Package telegramtest provides an in-memory messaging platform for tests.
package telegramtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/ad/go-telegram-gorbushka/internal/models"
	"github.com/ad/go-telegram-gorbushka/internal/telegram"
)

type SentMessage struct {
	ChatID    int64
	MessageID int
	View      telegram.View
}

type Ban struct {
	ChatID int64
	UserID int64
}

// Fake records every call. Set an entry in Fail to make that method return
// the error, e.g. Fail["EditMessage"].
type Fake struct {
	mu sync.Mutex

	nextID   int
	Sent     []SentMessage
	Edited   []SentMessage
	Rendered []SentMessage
	Deleted  [][]int
	Bans     []Ban
	Unbans   []Ban
	Invites  []string
	Pinned   []SentMessage
	Commands map[int64][]telegram.Command
	Answered []string
	Profiles map[int64]models.Profile
	Fail     map[string]error
}

func New() *Fake {
	return &Fake{
		nextID:   1000,
		Commands: make(map[int64][]telegram.Command),
		Profiles: make(map[int64]models.Profile),
		Fail:     make(map[string]error),
	}
}

func (f *Fake) SendMessage(_ context.Context, chatID int64, view telegram.View) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["SendMessage"]; err != nil {
		return 0, err
	}
	f.nextID++
	msg := SentMessage{ChatID: chatID, MessageID: f.nextID, View: view}
	f.Sent = append(f.Sent, msg)
	f.Rendered = append(f.Rendered, msg)
	return f.nextID, nil
}

func (f *Fake) EditMessage(_ context.Context, chatID int64, messageID int, view telegram.View) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["EditMessage"]; err != nil {
		return err
	}
	msg := SentMessage{ChatID: chatID, MessageID: messageID, View: view}
	f.Edited = append(f.Edited, msg)
	f.Rendered = append(f.Rendered, msg)
	return nil
}

func (f *Fake) DeleteMessages(_ context.Context, _ int64, messageIDs []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, append([]int(nil), messageIDs...))
	return f.Fail["DeleteMessages"]
}

func (f *Fake) BanChatMember(_ context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail[fmt.Sprintf("BanChatMember:%d", chatID)]; err != nil {
		return err
	}
	f.Bans = append(f.Bans, Ban{ChatID: chatID, UserID: userID})
	return nil
}

func (f *Fake) UnbanChatMember(_ context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["UnbanChatMember"]; err != nil {
		return err
	}
	f.Unbans = append(f.Unbans, Ban{ChatID: chatID, UserID: userID})
	return nil
}

func (f *Fake) CreateInviteLink(_ context.Context, chatID int64, memberLimit int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["CreateInviteLink"]; err != nil {
		return "", err
	}
	link := fmt.Sprintf("https://t.me/+invite_%d_%d_limit%d", chatID, len(f.Invites)+1, memberLimit)
	f.Invites = append(f.Invites, link)
	return link, nil
}

func (f *Fake) GetChatMember(_ context.Context, _, userID int64) (models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["GetChatMember"]; err != nil {
		return models.Profile{UserID: userID}, err
	}
	profile, ok := f.Profiles[userID]
	if !ok {
		return models.Profile{UserID: userID}, nil
	}
	profile.UserID = userID
	return profile, nil
}

func (f *Fake) PinChatMessage(_ context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["PinChatMessage"]; err != nil {
		return err
	}
	f.Pinned = append(f.Pinned, SentMessage{ChatID: chatID, MessageID: messageID})
	return nil
}

func (f *Fake) SetMyCommands(_ context.Context, chatID int64, commands []telegram.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Commands[chatID] = commands
	return f.Fail["SetMyCommands"]
}

func (f *Fake) DeleteMyCommands(_ context.Context, chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Commands, chatID)
	return f.Fail["DeleteMyCommands"]
}

func (f *Fake) AnswerCallback(_ context.Context, callbackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Answered = append(f.Answered, callbackID)
	return nil
}

// LastView returns the most recent send or edit in chatID.
func (f *Fake) LastView(chatID int64) (SentMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.Rendered) - 1; i >= 0; i-- {
		if f.Rendered[i].ChatID == chatID {
			return f.Rendered[i], true
		}
	}
	return SentMessage{}, false
}

func (f *Fake) LastText(chatID int64) string {
	msg, _ := f.LastView(chatID)
	return msg.View.Text
}

// SentTo returns every message sent (not edited) to chatID.
func (f *Fake) SentTo(chatID int64) []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SentMessage
	for _, m := range f.Sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}
