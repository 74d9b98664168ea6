package apperrors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrIncomplete   = errors.New("questionnaire incomplete")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadSignature = errors.New("invalid webhook signature")
)
