package sheets

import (
	"testing"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/ad/go-telegram-gorbushka/internal/models"
)

func TestParseCategories(t *testing.T) {
	rows := [][]interface{}{
		{"Название", "Ссылка"},
		{"Смартфоны", "https://t.me/c/1/2"},
		{"", "https://t.me/c/1/3"},
		{"Ноутбуки", "  "},
		{"Только имя"},
		{" Планшеты ", "https://t.me/c/1/4"},
	}

	got := ParseCategories(rows)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %+v", got)
	}
	if got[0].Name != "Смартфоны" || got[1].Name != "Планшеты" || got[1].Link != "https://t.me/c/1/4" {
		t.Errorf("unexpected categories: %+v", got)
	}
}

func TestApplicationRow(t *testing.T) {
	app := &models.Application{
		UserID:       555,
		FIO:          "Иван Иванов",
		Phone:        "79123456789",
		Role:         models.RoleSeller,
		OfficeNumber: pointer.ToString("7А"),
	}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	row := ApplicationRow(app, at, time.UTC)
	if len(row) != 17 {
		t.Fatalf("expected 17 columns, got %d", len(row))
	}
	want := map[int]interface{}{
		0:  "2024-01-02 03:04:05",
		1:  "",
		2:  "Иван Иванов",
		3:  "+79123456789",
		5:  models.RoleSeller,
		11: "7А",
		15: int64(555),
		16: "Не указано",
	}
	for i, v := range want {
		if row[i] != v {
			t.Errorf("column %d: want %v, got %v", i, v, row[i])
		}
	}
}

func TestBlackListValues(t *testing.T) {
	values := BlackListValues([]models.BlackListRecord{
		{UserID: 1, Username: "a", CreatedAt: time.Unix(0, 0)},
		{UserID: 2, CreatedAt: time.Unix(60, 0)},
	}, time.UTC)

	if len(values) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(values))
	}
	if values[0][0] != "Время" || values[1][2] != "@a" || values[2][2] != "" || values[2][1] != int64(2) {
		t.Errorf("unexpected values: %v", values)
	}
}
