package poll

import "fmt"

// Direction is a single ±1 vote delta requested by one action.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// Delta returns the signed vote change for the direction.
func (d Direction) Delta() int {
	if d == DirectionDown {
		return -1
	}
	return 1
}

// ParseDirection maps a wire value to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionUp, DirectionDown:
		return Direction(s), nil
	}
	return "", fmt.Errorf("invalid direction %q", s)
}

// TotalCost returns the cumulative token cost of holding the given signed
// vote count on one option: votes². Negative magnitudes cost the same as
// positive ones.
func TotalCost(votes int) int {
	if votes < 0 {
		votes = -votes
	}
	return votes * votes
}

// MarginalCost returns the token cost of moving the given vote count one
// step in the given direction. Stepping toward zero returns a negative
// cost (tokens refunded).
func MarginalCost(current int, d Direction) int {
	return TotalCost(current+d.Delta()) - TotalCost(current)
}

// TryApplyDelta computes the outcome of one vote step against a token
// balance. It rejects only when the step costs more than the balance;
// refunds are always allowed. No state is mutated.
func TryApplyDelta(current int, d Direction, available int) (newVotes, cost int, ok bool) {
	newVotes = current + d.Delta()
	cost = TotalCost(newVotes) - TotalCost(current)
	return newVotes, cost, cost <= available
}
