package game

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrRoomFinished    = errors.New("game already finished")
	ErrNotHost         = errors.New("only the host can perform this action")
	ErrNotInRoom       = errors.New("not in a room")
	ErrNotDrawer       = errors.New("only the drawer can update the canvas")
	ErrUnknownPlayer   = errors.New("participant not connected")
	ErrDuplicatePlayer = errors.New("participant already connected")
)

// ValidationError reports a missing or malformed field on an inbound request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is required", e.Field)
}

func requiredField(field string) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf("%s is required", field)}
}
