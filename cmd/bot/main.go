package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ad/go-telegram-gorbushka/internal/config"
	"github.com/ad/go-telegram-gorbushka/internal/db"
	"github.com/ad/go-telegram-gorbushka/internal/handlers"
	"github.com/ad/go-telegram-gorbushka/internal/logging"
	"github.com/ad/go-telegram-gorbushka/internal/models"
	"github.com/ad/go-telegram-gorbushka/internal/services"
	"github.com/ad/go-telegram-gorbushka/internal/session"
	"github.com/ad/go-telegram-gorbushka/internal/sheets"
	"github.com/ad/go-telegram-gorbushka/internal/telegram"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

// sheetService is everything the bot pushes to or pulls from spreadsheets.
type sheetService interface {
	handlers.Sheet
	services.BlackListSink
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger().WithError(err).Fatal("Failed to load config")
	}

	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		logging.Logger().WithError(err).Fatal("Failed to set up logging")
	}

	sqlDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	defer sqlDB.Close()

	version, err := db.Migrate(sqlDB)
	if err != nil {
		logger.WithError(err).Fatal("Failed to migrate schema")
	}

	dbQueue := db.NewDBQueue(sqlDB)
	defer dbQueue.Close()

	applicationRepo := db.NewApplicationRepository(dbQueue)
	adminRepo := db.NewAdminRepository(dbQueue)
	blackListRepo := db.NewBlackListRepository(dbQueue)
	pinnedRepo := db.NewPinnedMessageRepository(dbQueue)

	added, err := bootstrapAdmins(adminRepo, cfg.BootstrapAdminIDs, time.Now())
	if err != nil {
		logger.WithError(err).Fatal("Failed to bootstrap admins")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = logging.WithEntry(ctx, logger)

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	b, err := newBot(cfg.BotToken, httpClient)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create bot")
	}

	// Retry getMe with shorter timeout
	var botInfo *tgmodels.User
	for i := 0; i < 3; i++ {
		getMeCtx, getMeCancel := context.WithTimeout(ctx, 10*time.Second)
		botInfo, err = b.GetMe(getMeCtx)
		getMeCancel()
		if err == nil {
			break
		}
		logger.WithError(err).Warnf("Failed to get bot info (attempt %d/3)", i+1)
		if i < 2 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		logger.WithError(err).Fatal("Failed to get bot info after 3 attempts")
	}

	platform := telegram.NewClient(b)

	var sheet sheetService = sheets.Disabled{}
	if cfg.GoogleCredentialsFile != "" {
		client, err := sheets.NewClient(ctx, cfg)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create sheets client")
		}
		sheet = client
	} else {
		logger.Warn("GOOGLE_CREDENTIALS_FILE is not set, spreadsheet export is disabled")
	}

	sessions := session.NewStore()
	deps := handlers.Deps{
		Platform:     platform,
		Presenter:    services.NewPresenter(platform, sessions),
		Sessions:     sessions,
		Applications: applicationRepo,
		Admins:       adminRepo,
		BlackList:    blackListRepo,
		Pinned:       pinnedRepo,
		Sheet:        sheet,
		Targets: handlers.TargetChats{
			Main:          cfg.MainChatID,
			Price:         cfg.PriceChatID,
			Communication: cfg.CommunicationChatID,
		},
		Location: cfg.Location(),
		Now:      time.Now,
	}

	gate := services.NewEligibilityGate(applicationRepo, time.Now)
	errorManager := services.NewErrorManager(platform, cfg.AlertChatID)
	router := handlers.NewRouter(deps, handlers.NewAdminFlow(deps), handlers.NewUserFlow(deps, gate), errorManager)

	registerRouter(b, router, logger)

	blackListSync := services.NewBlackListSync(blackListRepo, platform, sheet, cfg.BlackListSyncInterval)
	go blackListSync.Run(ctx)

	logger.WithFields(logrus.Fields{
		"bot":            botInfo.Username,
		"db_driver":      cfg.DBDriver,
		"schema_version": version,
		"admins_added":   added,
	}).Info("Bot started")

	b.Start(ctx)
}

// newBot creates the Bot API client. Handlers run synchronously so updates
// are consumed one at a time in arrival order.
func newBot(token string, httpClient *http.Client, opts ...bot.Option) (*bot.Bot, error) {
	opts = append([]bot.Option{
		bot.WithHTTPClient(15*time.Second, httpClient),
		bot.WithNotAsyncHandlers(),
	}, opts...)
	return bot.New(token, opts...)
}

func registerRouter(b *bot.Bot, router *handlers.Router, logger *logrus.Entry) {
	b.RegisterHandlerMatchFunc(func(update *tgmodels.Update) bool {
		return true
	}, router.HandleUpdate, logMiddleware(logger))
}

// bootstrapAdmins makes sure every configured id is on the admin roster and
// returns how many were added.
func bootstrapAdmins(repo handlers.AdminStore, userIDs []int64, now time.Time) (int, error) {
	added := 0
	for _, userID := range userIDs {
		exists, err := repo.ExistsByUserID(userID)
		if err != nil {
			return added, fmt.Errorf("check admin %d: %w", userID, err)
		}
		if exists {
			continue
		}
		if err := repo.Save(&models.AdminEntry{UserID: userID, CreatedAt: now}); err != nil {
			return added, fmt.Errorf("add admin %d: %w", userID, err)
		}
		added++
	}
	return added, nil
}

func formatUser(u tgmodels.User) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if u.Username != "" {
		name += " @" + u.Username
	}
	return fmt.Sprintf("%s [%d]", name, u.ID)
}

func logMiddleware(logger *logrus.Entry) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
			if update.Message != nil && update.Message.From != nil {
				logger.WithField("from", formatUser(*update.Message.From)).Debugf("[MSG] text=%q", update.Message.Text)
			}
			if update.CallbackQuery != nil {
				logger.WithField("from", formatUser(update.CallbackQuery.From)).Debugf("[CALLBACK] data=%q", update.CallbackQuery.Data)
			}
			next(ctx, b, update)
		}
	}
}
