package status

import "errors"

var (
	ErrUnauthorized       = errors.New("api: unauthorized")
	ErrNotFound           = errors.New("api: not found")
	ErrTransitionInFlight = errors.New("station: a status update is already in flight")
	ErrInvalidTransition  = errors.New("station: transition not allowed from current status")
	ErrEntryNotFound      = errors.New("station: queue entry not in local list")
	ErrNoSession          = errors.New("session: no session record")
)
