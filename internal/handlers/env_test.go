package handlers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ad/go-telegram-gorbushka/internal/callback"
	"github.com/ad/go-telegram-gorbushka/internal/config"
	"github.com/ad/go-telegram-gorbushka/internal/db"
	"github.com/ad/go-telegram-gorbushka/internal/models"
	"github.com/ad/go-telegram-gorbushka/internal/services"
	"github.com/ad/go-telegram-gorbushka/internal/session"
	"github.com/ad/go-telegram-gorbushka/internal/telegram/telegramtest"
	"github.com/jmoiron/sqlx"
)

const (
	testAdminID     int64 = 1
	testApplicantID int64 = 500

	testMainChat          int64 = -1001
	testPriceChat         int64 = -1002
	testCommunicationChat int64 = -1003
)

var dbCounter int64

// fataler is the part of testing.TB that rapid.T also provides.
type fataler interface {
	Helper()
	Fatalf(format string, args ...interface{})
}

type fakeSheet struct {
	mu         sync.Mutex
	categories []models.Category
	added      []*models.Application
	approved   []*models.Application
	failAdd    error
}

func (s *fakeSheet) GetCategories(context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories, nil
}

func (s *fakeSheet) AddApplication(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAdd != nil {
		return s.failAdd
	}
	s.added = append(s.added, app)
	return nil
}

func (s *fakeSheet) AddApprovedApplication(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approved = append(s.approved, app)
	return nil
}

type testEnv struct {
	sqlDB    *sqlx.DB
	fake     *telegramtest.Fake
	sheet    *fakeSheet
	sessions *session.Store
	apps     *db.ApplicationRepository
	admins   *db.AdminRepository
	black    *db.BlackListRepository
	pinned   *db.PinnedMessageRepository
	router   *Router
	deps     Deps
	clock    time.Time
	nextMsg  int
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	sqlDB, err := db.Open(config.DriverSQLite, dsn)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(sqlDB); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	queue := db.NewDBQueueForTest(sqlDB)
	t.Cleanup(func() {
		queue.Close()
		sqlDB.Close()
	})

	env := &testEnv{
		sqlDB:    sqlDB,
		fake:     telegramtest.New(),
		sheet:    &fakeSheet{},
		sessions: session.NewStore(),
		apps:     db.NewApplicationRepository(queue),
		admins:   db.NewAdminRepository(queue),
		black:    db.NewBlackListRepository(queue),
		pinned:   db.NewPinnedMessageRepository(queue),
		clock:    time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
		nextMsg:  100,
	}

	if err := env.admins.Save(&models.AdminEntry{UserID: testAdminID, CreatedAt: env.clock}); err != nil {
		t.Fatal(err)
	}

	deps := Deps{
		Platform:     env.fake,
		Presenter:    services.NewPresenter(env.fake, env.sessions),
		Sessions:     env.sessions,
		Applications: env.apps,
		Admins:       env.admins,
		BlackList:    env.black,
		Pinned:       env.pinned,
		Sheet:        env.sheet,
		Targets: TargetChats{
			Main:          testMainChat,
			Price:         testPriceChat,
			Communication: testCommunicationChat,
		},
		Location: time.UTC,
		Now:      func() time.Time { return env.clock },
	}
	env.deps = deps
	gate := services.NewEligibilityGate(env.apps, deps.Now)
	env.router = NewRouter(deps, NewAdminFlow(deps), NewUserFlow(deps, gate), services.NewErrorManager(env.fake, 0))
	return env
}

// text builds a private message from userID with a fresh message id.
func (e *testEnv) text(userID int64, text string) Event {
	e.nextMsg++
	return Event{
		ChatID:         userID,
		SenderID:       userID,
		SenderUsername: fmt.Sprintf("user%d", userID),
		MessageID:      e.nextMsg,
		Text:           text,
	}
}

// press builds a button press on the chat's current live message.
func (e *testEnv) press(userID int64, cmd callback.Command) Event {
	return Event{
		ChatID:          userID,
		SenderID:        userID,
		SenderUsername:  fmt.Sprintf("user%d", userID),
		CallbackID:      fmt.Sprintf("cb-%d", userID),
		CallbackData:    callback.Encode(cmd),
		SourceMessageID: e.sessions.Get(userID).LiveMessageID,
	}
}

func (e *testEnv) dispatch(t fataler, ev Event) {
	t.Helper()
	if err := e.router.Dispatch(context.Background(), ev); err != nil {
		t.Fatalf("Dispatch(%+v) failed: %v", ev, err)
	}
}

func (e *testEnv) insertApplication(t fataler, id, userID int64, fio string) {
	t.Helper()
	_, err := e.sqlDB.Exec(`INSERT INTO applications (id, user_id, username, fio, phone, role, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 'NEW', ?)`,
		id, userID, fmt.Sprintf("user%d", userID), fio, "79123456789", models.RoleBuyer, e.clock.Unix())
	if err != nil {
		t.Fatalf("insert application %d: %v", id, err)
	}
}

// fillBuyerForm walks a fresh applicant up to the verification card.
func (e *testEnv) fillBuyerForm(t fataler, userID int64) {
	t.Helper()
	e.dispatch(t, e.text(userID, "/start"))
	e.dispatch(t, e.press(userID, callback.Fill{}))
	e.dispatch(t, e.text(userID, "Иван Иванов"))
	e.dispatch(t, e.text(userID, "+7 912 345 67 89"))
	e.dispatch(t, e.press(userID, callback.ChooseBuyer{}))
}
