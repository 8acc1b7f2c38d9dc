/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package charades

import "errors"

var (
	// ErrSessionNotFound is reported to the requesting connection only.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidInput covers empty names, unknown categories, intents that
	// do not fit the current round state and malformed payloads.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStaleAction marks a scoring intent that arrived after the round's
	// timer ran out. It is dropped without telling anyone.
	ErrStaleAction = errors.New("stale action")

	ErrCodesExhausted = errors.New("unable to allocate an unused session code")
)
