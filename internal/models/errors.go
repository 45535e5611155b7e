package models

import "errors"

var (
	// ErrNotFound is returned when a Group, Post or User lookup misses.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyFollowing is returned when a (user, author) follow pair already exists.
	ErrAlreadyFollowing = errors.New("already following")
	// ErrDuplicate is returned when a unique field (username, email, slug) is taken.
	ErrDuplicate = errors.New("duplicate")
	// ErrInvalidInput is returned when an entity is missing required fields.
	ErrInvalidInput = errors.New("invalid input")
)
