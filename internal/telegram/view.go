package telegram

import (
	"github.com/ad/go-telegram-gorbushka/internal/callback"
	tgmodels "github.com/go-telegram/bot/models"
)

// Button carries either a callback command or a URL.
type Button struct {
	Text     string
	Callback callback.Command
	URL      string
}

type Keyboard [][]Button

// View is one rendering of a message: text, parse mode and inline keyboard.
type View struct {
	Text     string
	HTML     bool
	Keyboard Keyboard
}

func CallbackButton(text string, cmd callback.Command) Button {
	return Button{Text: text, Callback: cmd}
}

func URLButton(text, url string) Button {
	return Button{Text: text, URL: url}
}

// Row is shorthand for a single-row slice of buttons.
func Row(buttons ...Button) []Button {
	return buttons
}

func (k Keyboard) markup() *tgmodels.InlineKeyboardMarkup {
	if len(k) == 0 {
		return nil
	}
	rows := make([][]tgmodels.InlineKeyboardButton, 0, len(k))
	for _, row := range k {
		if len(row) == 0 {
			continue
		}
		out := make([]tgmodels.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btn := tgmodels.InlineKeyboardButton{Text: b.Text}
			if b.URL != "" {
				btn.URL = b.URL
			} else {
				btn.CallbackData = callback.Encode(b.Callback)
			}
			out = append(out, btn)
		}
		rows = append(rows, out)
	}
	return &tgmodels.InlineKeyboardMarkup{InlineKeyboard: rows}
}
