package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/ad/go-telegram-gorbushka/internal/models"
)

const (
	PhoneDigits  = 11
	NotSpecified = "Не указано"
	dateLayout   = "02.01.2006 15:04"
)

var fioPattern = regexp.MustCompile(`^[А-Яа-яЁёA-Za-z ]+$`)

// ValidFIO reports whether s holds letters and spaces only.
func ValidFIO(s string) bool {
	return strings.TrimSpace(s) != "" && fioPattern.MatchString(s)
}

func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// NormalizePhone strips everything but digits and accepts exactly 11 of them.
func NormalizePhone(input string) (string, bool) {
	digits := digitsOnly(input)
	if len(digits) != PhoneDigits {
		return "", false
	}
	return digits, true
}

// FormatPhone renders stored digits for display, adding "+" for Russian numbers.
func FormatPhone(phone string) string {
	digits := digitsOnly(phone)
	if strings.HasPrefix(digits, "7") {
		return "+" + digits
	}
	return digits
}

func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dateLayout)
}

func FormatMention(username string) string {
	if username == "" {
		return NotSpecified
	}
	return "@" + username
}

// ApplicationText is the plain-text application card shown to admins.
func ApplicationText(app *models.Application) string {
	lines := []string{
		"👤 ФИО: " + app.FIO,
		"📛 Telegram: " + FormatMention(pointer.GetString(app.Username)),
		"📞 Телефон (контактный): " + FormatPhone(app.Phone),
		"🛠 Роль: " + app.Role,
	}
	if office := pointer.GetString(app.OfficeNumber); office != "" {
		lines = append(lines, "🏢 Номер офиса: "+office)
	}
	return strings.Join(lines, "\n")
}

// ApplicationLabel is the one-line list label of a pending application.
func ApplicationLabel(app *models.Application) string {
	return "👤 " + app.FIO + " | 📞 " + FormatPhone(app.Phone) + " | 🛠 " + app.Role
}

// VerificationText is the HTML summary the applicant confirms before submitting.
func VerificationText(fio, phone, role, office string) string {
	lines := []string{
		"✅ " + FormatBold("Заявка заполнена!"),
		"",
		"👤 " + FormatField("ФИО:", fio),
		"📞 " + FormatField("Телефон (контактный):", FormatPhone(phone)),
		"💼 " + FormatField("Роль:", role),
	}
	if office != "" {
		lines = append(lines, "🏢 "+FormatField("Номер офиса:", office))
	}
	return strings.Join(lines, "\n")
}
