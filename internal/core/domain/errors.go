package domain

import "errors"

var (
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrNotFound          = errors.New("flash item does not exist")
	ErrInvalidTransition = errors.New("status transition not allowed")
)
