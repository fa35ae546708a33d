package models

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyDecided = errors.New("application already decided")
)
