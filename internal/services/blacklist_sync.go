package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ad/go-telegram-gorbushka/internal/logging"
	"github.com/ad/go-telegram-gorbushka/internal/models"
)

type BlackListSource interface {
	FindAll() ([]*models.BlackListEntry, error)
}

type ProfileLookup interface {
	GetChatMember(ctx context.Context, chatID, userID int64) (models.Profile, error)
}

type BlackListSink interface {
	SyncBlackList(ctx context.Context, records []models.BlackListRecord) error
}

// BlackListSync periodically pushes a full black list snapshot to the sink.
// It never touches chat sessions.
type BlackListSync struct {
	source   BlackListSource
	profiles ProfileLookup
	sink     BlackListSink
	interval time.Duration
}

func NewBlackListSync(source BlackListSource, profiles ProfileLookup, sink BlackListSink, interval time.Duration) *BlackListSync {
	return &BlackListSync{
		source:   source,
		profiles: profiles,
		sink:     sink,
		interval: interval,
	}
}

// Run syncs until ctx is done, waiting interval after each attempt finishes.
// A failed attempt is logged and does not stop the loop.
func (s *BlackListSync) Run(ctx context.Context) {
	log := logging.FromContext(ctx).WithField("task", "black_list_sync")
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := s.SyncOnce(ctx); err != nil {
			log.WithError(err).Warn("black list sync failed")
		}
		timer.Reset(s.interval)
	}
}

func (s *BlackListSync) SyncOnce(ctx context.Context) error {
	entries, err := s.source.FindAll()
	if err != nil {
		return fmt.Errorf("load black list: %w", err)
	}

	records := make([]models.BlackListRecord, 0, len(entries))
	for _, entry := range entries {
		record := models.BlackListRecord{UserID: entry.UserID, CreatedAt: entry.CreatedAt}
		profile, err := s.profiles.GetChatMember(ctx, entry.UserID, entry.UserID)
		if err != nil {
			logging.FromContext(ctx).WithError(err).WithField("user_id", entry.UserID).Debug("profile lookup failed")
		} else {
			record.Username = profile.Username
		}
		records = append(records, record)
	}

	if err := s.sink.SyncBlackList(ctx, records); err != nil {
		return fmt.Errorf("push black list snapshot: %w", err)
	}
	return nil
}
