package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrDeadlineUnavailable   = errors.New("pick deadline unavailable")
	ErrDeadlinePassed        = errors.New("pick deadline passed")
	ErrCompetitorAlreadyUsed = errors.New("competitor already used")
	ErrNoEligibleCompetitor  = errors.New("no eligible competitor")
)
