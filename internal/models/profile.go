package models

import (
	"fmt"
	"strings"
)

// Profile is the public part of a platform user as returned by a member lookup.
type Profile struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string
}

// FullName renders "Last First", skipping empty parts.
func (p Profile) FullName() string {
	var parts []string
	if p.LastName != "" {
		parts = append(parts, p.LastName)
	}
	if p.FirstName != "" {
		parts = append(parts, p.FirstName)
	}
	return strings.Join(parts, " ")
}

func (p Profile) Mention() string {
	if p.Username == "" {
		return ""
	}
	return "@" + p.Username
}

// ListLabel is the button label used in admin and black list views.
func (p Profile) ListLabel() string {
	parts := []string{"👤"}
	if m := p.Mention(); m != "" {
		parts = append(parts, m)
	}
	if name := p.FullName(); name != "" {
		parts = append(parts, name)
	}
	if len(parts) == 1 {
		parts = append(parts, fmt.Sprintf("[%d]", p.UserID))
	}
	return strings.Join(parts, " ")
}
