package sheets

import (
	"fmt"
	"strings"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/ad/go-telegram-gorbushka/internal/models"
	"github.com/ad/go-telegram-gorbushka/internal/services"
)

const (
	timestampLayout  = "2006-01-02 15:04:05"
	applicationWidth = 17
)

var blackListHeader = []interface{}{"Время", "ИД пользователя", "Пользователь"}

// ParseCategories reads name/link pairs, skipping the header row and rows
// with a blank name or link.
func ParseCategories(rows [][]interface{}) []models.Category {
	var out []models.Category
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(fmt.Sprint(row[0]))
		link := strings.TrimSpace(fmt.Sprint(row[1]))
		if name == "" || link == "" {
			continue
		}
		out = append(out, models.Category{Name: name, Link: link})
	}
	return out
}

// ApplicationRow lays out an application in the shared 17-column format.
func ApplicationRow(app *models.Application, at time.Time, loc *time.Location) []interface{} {
	row := make([]interface{}, applicationWidth)
	for i := range row {
		row[i] = ""
	}
	username := pointer.GetString(app.Username)
	if username == "" {
		username = services.NotSpecified
	}

	row[0] = at.In(loc).Format(timestampLayout)
	row[2] = app.FIO
	row[3] = services.FormatPhone(app.Phone)
	row[5] = app.Role
	row[11] = pointer.GetString(app.OfficeNumber)
	row[15] = app.UserID
	row[16] = username
	return row
}

// BlackListValues renders the header plus one row per record.
func BlackListValues(records []models.BlackListRecord, loc *time.Location) [][]interface{} {
	values := make([][]interface{}, 0, len(records)+1)
	values = append(values, blackListHeader)
	for _, r := range records {
		username := ""
		if r.Username != "" {
			username = "@" + r.Username
		}
		values = append(values, []interface{}{r.CreatedAt.In(loc).Format(timestampLayout), r.UserID, username})
	}
	return values
}
