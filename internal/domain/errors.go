package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz definition could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizClosed is returned when a submission arrives while the quiz is gated closed.
	ErrQuizClosed = errors.New("quiz is closed for submissions")
	// ErrAttemptsExhausted is returned once all attempts for a (user, quiz) pair are used.
	ErrAttemptsExhausted = errors.New("all attempts used for this quiz")
	// ErrUnauthorized is returned when a non-admin caller tries an admin operation.
	ErrUnauthorized = errors.New("admin role required")
	// ErrUnauthenticated is returned when no user identity was supplied.
	ErrUnauthenticated = errors.New("no signed-in user")
)
