package bracket

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid bracket input")
	ErrIncompleteMatch  = errors.New("match has an unfilled slot")
	ErrInvalidWinner    = errors.New("winner is not part of this match")
	ErrResultLocked     = errors.New("match result already consumed downstream")
	ErrNotYetDetermined = errors.New("champion not yet determined")
	ErrMatchNotFound    = errors.New("match not found")
)
