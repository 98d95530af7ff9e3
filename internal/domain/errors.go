package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Duel errors
	ErrMsgAlreadyInDuel         = "already in a duel"
	ErrMsgNoPendingChallenge    = "no pending challenge found"
	ErrMsgNoActiveDuel          = "no active duel or pending challenge"
	ErrMsgInsufficientProblems  = "could not find enough problems in this range"
	ErrMsgDuelNotFound          = "duel not found"
	ErrMsgSelfChallenge         = "cannot challenge yourself"
	ErrMsgInvalidRating         = "rating out of range"
	ErrMsgInvalidDuelTransition = "invalid duel transition"

	// Judge errors
	ErrMsgJudgeUnavailable = "judge unavailable"
	ErrMsgHandleNotLinked  = "handle not linked"

	// Points errors
	ErrMsgAlreadyReset = "already reset this period"

	// Locking errors
	ErrMsgLockHeld = "lock is held by another worker"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Duel errors
	ErrAlreadyInDuel         = errors.New(ErrMsgAlreadyInDuel)
	ErrNoPendingChallenge    = errors.New(ErrMsgNoPendingChallenge)
	ErrNoActiveDuel          = errors.New(ErrMsgNoActiveDuel)
	ErrInsufficientProblems  = errors.New(ErrMsgInsufficientProblems)
	ErrDuelNotFound          = errors.New(ErrMsgDuelNotFound)
	ErrSelfChallenge         = errors.New(ErrMsgSelfChallenge)
	ErrInvalidRating         = errors.New(ErrMsgInvalidRating)
	ErrInvalidDuelTransition = errors.New(ErrMsgInvalidDuelTransition)

	// Judge errors
	ErrJudgeUnavailable = errors.New(ErrMsgJudgeUnavailable)
	ErrHandleNotLinked  = errors.New(ErrMsgHandleNotLinked)

	// Points errors
	ErrAlreadyReset = errors.New(ErrMsgAlreadyReset)

	// Locking errors
	ErrLockHeld = errors.New(ErrMsgLockHeld)

	// Input errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
