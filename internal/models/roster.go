package models

import "time"

type AdminEntry struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
}

type BlackListEntry struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
}

// PinnedMessage is a category list message pinned in a target chat.
type PinnedMessage struct {
	ID        int64
	ChatID    int64
	MessageID int
}

type Category struct {
	Name string
	Link string
}

// BlackListRecord is one exported row of the black list snapshot.
type BlackListRecord struct {
	UserID    int64
	Username  string
	CreatedAt time.Time
}
