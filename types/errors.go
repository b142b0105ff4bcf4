package types

import "errors"

var (
	// ErrTooManyActions is a configuration error of the domain state:
	// a vertex realized more successors than its declared bound
	ErrTooManyActions = errors.New("successor count exceeds max actions")
	// ErrActionOutOfRange is returned when the action is outside [0, max actions)
	ErrActionOutOfRange = errors.New("action outside the action space")
	// ErrActionUnavailable is returned when the action is within the declared
	// bound but the current vertex has no successor at that index
	ErrActionUnavailable = errors.New("action not available in the current state")
	// ErrEpisodeDone is returned when stepping a terminal state without a reset
	ErrEpisodeDone = errors.New("episode is done, reset required")
	// ErrSchemaMismatch is returned when an observation does not match its space
	ErrSchemaMismatch = errors.New("observation does not match observation space")
	ErrNoState        = errors.New("no state")
)
