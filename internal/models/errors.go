package models

import "errors"

var (
	// ErrNotFound is returned by a store when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrRoomFull is returned when a guest tries to take an occupied seat.
	ErrRoomFull = errors.New("room already has a guest")
	// ErrDuplicateEmail is returned when an account with the email already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrMessageInvalid is returned for empty or oversized chat text.
	ErrMessageInvalid = errors.New("chat message is empty or too long")
)
