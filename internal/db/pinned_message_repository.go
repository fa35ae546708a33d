package db

import (
	"github.com/ad/go-telegram-gorbushka/internal/models"
	"github.com/jmoiron/sqlx"
)

type PinnedMessageRepository struct {
	queue *DBQueue
}

func NewPinnedMessageRepository(queue *DBQueue) *PinnedMessageRepository {
	return &PinnedMessageRepository{queue: queue}
}

func (r *PinnedMessageRepository) FindAllByChatID(chatID int64) ([]*models.PinnedMessage, error) {
	result, err := r.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		var rows []struct {
			ID        int64 `db:"id"`
			ChatID    int64 `db:"chat_id"`
			MessageID int64 `db:"message_id"`
		}
		err := db.Select(&rows, db.Rebind(`SELECT id, chat_id, message_id FROM pinned_messages WHERE chat_id = ? ORDER BY id`), chatID)
		if err != nil {
			return nil, err
		}
		out := make([]*models.PinnedMessage, 0, len(rows))
		for _, row := range rows {
			out = append(out, &models.PinnedMessage{ID: row.ID, ChatID: row.ChatID, MessageID: int(row.MessageID)})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.PinnedMessage), nil
}

func (r *PinnedMessageRepository) Save(pm *models.PinnedMessage) error {
	result, err := r.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		var id int64
		err := db.Get(&id, db.Rebind(`INSERT INTO pinned_messages (chat_id, message_id) VALUES (?, ?) RETURNING id`),
			pm.ChatID, pm.MessageID)
		return id, err
	})
	if err != nil {
		return err
	}
	pm.ID = result.(int64)
	return nil
}

func (r *PinnedMessageRepository) DeleteByID(id int64) error {
	_, err := r.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		_, err := db.Exec(db.Rebind(`DELETE FROM pinned_messages WHERE id = ?`), id)
		return nil, err
	})
	return err
}
