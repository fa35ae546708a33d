package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/ad/go-telegram-gorbushka/internal/models"
	"github.com/jmoiron/sqlx"
)

type applicationRow struct {
	ID             int64          `db:"id"`
	UserID         int64          `db:"user_id"`
	Username       sql.NullString `db:"username"`
	FIO            string         `db:"fio"`
	Phone          string         `db:"phone"`
	Role           string         `db:"role"`
	OfficeNumber   sql.NullString `db:"office_number"`
	Status         string         `db:"status"`
	DecisionUserID sql.NullInt64  `db:"decision_user_id"`
	DecisionAt     sql.NullInt64  `db:"decision_at"`
	CreatedAt      int64          `db:"created_at"`
}

const applicationColumns = `id, user_id, username, fio, phone, role, office_number, status, decision_user_id, decision_at, created_at`

func (r applicationRow) toModel() *models.Application {
	app := &models.Application{
		ID:        r.ID,
		UserID:    r.UserID,
		FIO:       r.FIO,
		Phone:     r.Phone,
		Role:      r.Role,
		Status:    models.ApplicationStatus(r.Status),
		CreatedAt: time.Unix(r.CreatedAt, 0),
	}
	if r.Username.Valid {
		app.Username = pointer.ToString(r.Username.String)
	}
	if r.OfficeNumber.Valid {
		app.OfficeNumber = pointer.ToString(r.OfficeNumber.String)
	}
	if r.DecisionUserID.Valid {
		app.DecisionUserID = pointer.ToInt64(r.DecisionUserID.Int64)
	}
	if r.DecisionAt.Valid {
		app.DecisionAt = pointer.ToTime(time.Unix(r.DecisionAt.Int64, 0))
	}
	return app
}

func nullString(s *string) sql.NullString {
	return sql.NullString{String: pointer.GetString(s), Valid: s != nil}
}

func nullInt64(v *int64) sql.NullInt64 {
	return sql.NullInt64{Int64: pointer.GetInt64(v), Valid: v != nil}
}

func nullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

type ApplicationRepository struct {
	queue *DBQueue
}

func NewApplicationRepository(queue *DBQueue) *ApplicationRepository {
	return &ApplicationRepository{queue: queue}
}

// Save inserts a new application (ID == 0) or updates an existing one.
func (r *ApplicationRepository) Save(app *models.Application) error {
	if app.Status == "" {
		app.Status = models.ApplicationStatusNew
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now()
	}

	_, err := r.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		if app.ID == 0 {
			var id int64
			err := db.Get(&id, db.Rebind(`
				INSERT INTO applications (user_id, username, fio, phone, role, office_number, status, decision_user_id, decision_at, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				RETURNING id
			`), app.UserID, nullString(app.Username), app.FIO, app.Phone, app.Role, nullString(app.OfficeNumber),
				string(app.Status), nullInt64(app.DecisionUserID), nullUnix(app.DecisionAt), app.CreatedAt.Unix())
			if err != nil {
				return nil, err
			}
			app.ID = id
			return nil, nil
		}

		res, err := db.Exec(db.Rebind(`
			UPDATE applications SET
				username = ?, fio = ?, phone = ?, role = ?, office_number = ?,
				status = ?, decision_user_id = ?, decision_at = ?
			WHERE id = ?
		`), nullString(app.Username), app.FIO, app.Phone, app.Role, nullString(app.OfficeNumber),
			string(app.Status), nullInt64(app.DecisionUserID), nullUnix(app.DecisionAt), app.ID)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, models.ErrNotFound
		}
		return nil, nil
	})
	return err
}

// Decide writes app's decision only while the stored row is still NEW. A row
// decided in the meantime yields ErrAlreadyDecided and is left untouched.
func (r *ApplicationRepository) Decide(app *models.Application) error {
	if !app.IsDecided() {
		return fmt.Errorf("application %d carries no decision", app.ID)
	}

	_, err := r.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		res, err := db.Exec(db.Rebind(`
			UPDATE applications SET status = ?, decision_user_id = ?, decision_at = ?
			WHERE id = ? AND status = ?
		`), string(app.Status), nullInt64(app.DecisionUserID), nullUnix(app.DecisionAt),
			app.ID, string(models.ApplicationStatusNew))
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return nil, nil
		}

		var exists bool
		if err := db.Get(&exists, db.Rebind(`SELECT EXISTS (SELECT 1 FROM applications WHERE id = ?)`), app.ID); err != nil {
			return nil, err
		}
		if !exists {
			return nil, models.ErrNotFound
		}
		return nil, models.ErrAlreadyDecided
	})
	return err
}

func (r *ApplicationRepository) FindByID(id int64) (*models.Application, error) {
	result, err := r.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		var row applicationRow
		err := db.Get(&row, db.Rebind(`SELECT `+applicationColumns+` FROM applications WHERE id = ?`), id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return row.toModel(), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Application), nil
}

func (r *ApplicationRepository) FindAllByStatus(status models.ApplicationStatus) ([]*models.Application, error) {
	return r.selectMany(`SELECT `+applicationColumns+` FROM applications WHERE status = ? ORDER BY id`, string(status))
}

func (r *ApplicationRepository) FindAllByUserID(userID int64) ([]*models.Application, error) {
	return r.selectMany(`SELECT `+applicationColumns+` FROM applications WHERE user_id = ? ORDER BY id`, userID)
}

func (r *ApplicationRepository) selectMany(query string, args ...interface{}) ([]*models.Application, error) {
	result, err := r.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		var rows []applicationRow
		if err := db.Select(&rows, db.Rebind(query), args...); err != nil {
			return nil, err
		}
		apps := make([]*models.Application, 0, len(rows))
		for _, row := range rows {
			apps = append(apps, row.toModel())
		}
		return apps, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.Application), nil
}
