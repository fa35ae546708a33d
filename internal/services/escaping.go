package services

import (
	"fmt"
	"html"
)

func FormatBold(text string) string {
	return fmt.Sprintf("<b>%s</b>", html.EscapeString(text))
}

// FormatField renders "<b>label</b> value" with both parts escaped.
func FormatField(label, value string) string {
	return FormatBold(label) + " " + html.EscapeString(value)
}
