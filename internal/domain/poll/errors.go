package poll

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the referenced poll does not exist.
	ErrNotFound = errors.New("poll not found")

	// ErrInvalidOption indicates an option index out of range.
	ErrInvalidOption = errors.New("invalid option index")

	// ErrPollEnded indicates a mutation attempted on an ended poll.
	ErrPollEnded = errors.New("poll has ended")

	// ErrUnauthorized indicates a non-creator attempting a creator-only action.
	ErrUnauthorized = errors.New("only the poll creator may do this")

	// ErrUpdateConflict indicates the optimistic write retry budget was exhausted.
	ErrUpdateConflict = errors.New("concurrent update conflict")
)

// InsufficientTokensError reports a vote whose cost exceeds the voter's balance.
type InsufficientTokensError struct {
	Cost    int
	Balance int
}

func (e *InsufficientTokensError) Error() string {
	return fmt.Sprintf("insufficient tokens: vote costs %d, balance is %d", e.Cost, e.Balance)
}
