package services

import "errors"

var (
	ErrAlreadyContacted   = errors.New("creator has already been contacted")
	ErrAlreadyProcessed   = errors.New("reply has already been processed")
	ErrReplyNotFound      = errors.New("reply not found")
	ErrEmptyMessage       = errors.New("message is empty")
	ErrNoRecipients       = errors.New("no creators selected")
	ErrInvalidStage       = errors.New("unknown onboarding stage")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrPasswordMismatch   = errors.New("Passwords don't match")
	ErrInvalidEmail       = errors.New("Invalid email address")
)
