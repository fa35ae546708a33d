package handlers

import (
	"context"
	"time"

	"github.com/ad/go-telegram-gorbushka/internal/models"
	"github.com/ad/go-telegram-gorbushka/internal/services"
	"github.com/ad/go-telegram-gorbushka/internal/session"
	"github.com/ad/go-telegram-gorbushka/internal/telegram"
)

// Platform is the messaging capability set the flows consume.
type Platform interface {
	services.Messenger
	BanChatMember(ctx context.Context, chatID, userID int64) error
	UnbanChatMember(ctx context.Context, chatID, userID int64) error
	CreateInviteLink(ctx context.Context, chatID int64, memberLimit int) (string, error)
	GetChatMember(ctx context.Context, chatID, userID int64) (models.Profile, error)
	PinChatMessage(ctx context.Context, chatID int64, messageID int) error
	SetMyCommands(ctx context.Context, chatID int64, commands []telegram.Command) error
	DeleteMyCommands(ctx context.Context, chatID int64) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

type ApplicationStore interface {
	FindByID(id int64) (*models.Application, error)
	FindAllByStatus(status models.ApplicationStatus) ([]*models.Application, error)
	FindAllByUserID(userID int64) ([]*models.Application, error)
	Save(app *models.Application) error
	Decide(app *models.Application) error
}

type AdminStore interface {
	ExistsByUserID(userID int64) (bool, error)
	FindByID(id int64) (*models.AdminEntry, error)
	FindAll() ([]*models.AdminEntry, error)
	Save(entry *models.AdminEntry) error
	DeleteByID(id int64) error
}

type BlackListStore interface {
	ExistsByUserID(userID int64) (bool, error)
	FindByID(id int64) (*models.BlackListEntry, error)
	FindAll() ([]*models.BlackListEntry, error)
	Save(entry *models.BlackListEntry) error
	DeleteByUserID(userID int64) error
}

type PinnedMessageStore interface {
	FindAllByChatID(chatID int64) ([]*models.PinnedMessage, error)
	Save(pm *models.PinnedMessage) error
	DeleteByID(id int64) error
}

type Sheet interface {
	GetCategories(ctx context.Context) ([]models.Category, error)
	AddApplication(ctx context.Context, app *models.Application) error
	AddApprovedApplication(ctx context.Context, app *models.Application) error
}

// TargetChats are the three fixed chats applicants are invited to.
type TargetChats struct {
	Main          int64
	Price         int64
	Communication int64
}

// Deps bundles everything the flows share.
type Deps struct {
	Platform     Platform
	Presenter    *services.Presenter
	Sessions     *session.Store
	Applications ApplicationStore
	Admins       AdminStore
	BlackList    BlackListStore
	Pinned       PinnedMessageStore
	Sheet        Sheet
	Targets      TargetChats
	Location     *time.Location
	Now          func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.UTC
}
