package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ad/go-telegram-gorbushka/internal/models"
	"github.com/jmoiron/sqlx"
)

// rosterRow is the shared shape of the admins and black_list tables.
type rosterRow struct {
	ID        int64 `db:"id"`
	UserID    int64 `db:"user_id"`
	CreatedAt int64 `db:"created_at"`
}

// rosterTable implements CRUD over a table of unique user ids.
type rosterTable struct {
	queue *DBQueue
	table string
}

func (t rosterTable) existsByUserID(userID int64) (bool, error) {
	result, err := t.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		var n int
		err := db.Get(&n, db.Rebind(`SELECT COUNT(*) FROM `+t.table+` WHERE user_id = ?`), userID)
		return n > 0, err
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (t rosterTable) findOne(column string, value int64) (rosterRow, error) {
	result, err := t.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		var row rosterRow
		err := db.Get(&row, db.Rebind(`SELECT id, user_id, created_at FROM `+t.table+` WHERE `+column+` = ?`), value)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return row, err
	})
	if err != nil {
		return rosterRow{}, err
	}
	return result.(rosterRow), nil
}

func (t rosterTable) findAll() ([]rosterRow, error) {
	result, err := t.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		var rows []rosterRow
		err := db.Select(&rows, `SELECT id, user_id, created_at FROM `+t.table+` ORDER BY id`)
		return rows, err
	})
	if err != nil {
		return nil, err
	}
	return result.([]rosterRow), nil
}

func (t rosterTable) insert(userID int64, createdAt time.Time) (int64, error) {
	result, err := t.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		var id int64
		err := db.Get(&id, db.Rebind(`INSERT INTO `+t.table+` (user_id, created_at) VALUES (?, ?) RETURNING id`),
			userID, createdAt.Unix())
		return id, err
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

func (t rosterTable) deleteWhere(column string, value int64) error {
	_, err := t.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		_, err := db.Exec(db.Rebind(`DELETE FROM `+t.table+` WHERE `+column+` = ?`), value)
		return nil, err
	})
	return err
}

type AdminRepository struct {
	t rosterTable
}

func NewAdminRepository(queue *DBQueue) *AdminRepository {
	return &AdminRepository{t: rosterTable{queue: queue, table: "admins"}}
}

func (r *AdminRepository) ExistsByUserID(userID int64) (bool, error) {
	return r.t.existsByUserID(userID)
}

func (r *AdminRepository) FindByID(id int64) (*models.AdminEntry, error) {
	row, err := r.t.findOne("id", id)
	if err != nil {
		return nil, err
	}
	return adminFromRow(row), nil
}

func (r *AdminRepository) FindAll() ([]*models.AdminEntry, error) {
	rows, err := r.t.findAll()
	if err != nil {
		return nil, err
	}
	out := make([]*models.AdminEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, adminFromRow(row))
	}
	return out, nil
}

func (r *AdminRepository) Save(entry *models.AdminEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	id, err := r.t.insert(entry.UserID, entry.CreatedAt)
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// DeleteByID removes the entry; a missing id is not an error.
func (r *AdminRepository) DeleteByID(id int64) error {
	return r.t.deleteWhere("id", id)
}

func adminFromRow(row rosterRow) *models.AdminEntry {
	return &models.AdminEntry{ID: row.ID, UserID: row.UserID, CreatedAt: time.Unix(row.CreatedAt, 0)}
}

type BlackListRepository struct {
	t rosterTable
}

func NewBlackListRepository(queue *DBQueue) *BlackListRepository {
	return &BlackListRepository{t: rosterTable{queue: queue, table: "black_list"}}
}

func (r *BlackListRepository) ExistsByUserID(userID int64) (bool, error) {
	return r.t.existsByUserID(userID)
}

func (r *BlackListRepository) FindByID(id int64) (*models.BlackListEntry, error) {
	row, err := r.t.findOne("id", id)
	if err != nil {
		return nil, err
	}
	return blackListFromRow(row), nil
}

func (r *BlackListRepository) FindAll() ([]*models.BlackListEntry, error) {
	rows, err := r.t.findAll()
	if err != nil {
		return nil, err
	}
	out := make([]*models.BlackListEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, blackListFromRow(row))
	}
	return out, nil
}

func (r *BlackListRepository) Save(entry *models.BlackListEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	id, err := r.t.insert(entry.UserID, entry.CreatedAt)
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// DeleteByUserID removes the user's entry; a missing entry is not an error.
func (r *BlackListRepository) DeleteByUserID(userID int64) error {
	return r.t.deleteWhere("user_id", userID)
}

func blackListFromRow(row rosterRow) *models.BlackListEntry {
	return &models.BlackListEntry{ID: row.ID, UserID: row.UserID, CreatedAt: time.Unix(row.CreatedAt, 0)}
}
