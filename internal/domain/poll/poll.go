package poll

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents poll lifecycle state.
type Status string

const (
	StatusOpen  Status = "OPEN"
	StatusEnded Status = "ENDED"
)

// Poll is a quadratic-voting poll. Votes holds one participant→signed-count
// map per option; UserTokens caches each participant's remaining balance and
// is re-derived from Votes on every critical path rather than trusted.
type Poll struct {
	ID              uuid.UUID        `json:"pollId"`
	Topic           string           `json:"topic"`
	Options         []string         `json:"options"`
	Votes           []map[string]int `json:"votes"`
	UserTokens      map[string]int   `json:"userTokens"`
	StartingTickets int              `json:"startingTickets"`
	Status          Status           `json:"status"`
	EndTime         *time.Time       `json:"endTime,omitempty"`
	HideVotes       bool             `json:"hideVotes"`
	CreatorID       string           `json:"creatorId"`
	PassphraseHash  string           `json:"-"`
	MessageRef      string           `json:"messageRef,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// New creates an open poll with one empty vote map per option.
func New(topic string, options []string, startingTickets int, endTime *time.Time, hideVotes bool, creatorID string, now time.Time) (*Poll, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.New("topic is required")
	}
	cleaned := make([]string, 0, len(options))
	for _, opt := range options {
		if opt = strings.TrimSpace(opt); opt != "" {
			cleaned = append(cleaned, opt)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.New("at least one option is required")
	}
	if startingTickets <= 0 {
		return nil, errors.New("starting tickets must be positive")
	}
	if endTime != nil && !endTime.After(now) {
		return nil, errors.New("end time must be in the future")
	}
	if creatorID == "" {
		return nil, errors.New("creator is required")
	}
	votes := make([]map[string]int, len(cleaned))
	for i := range votes {
		votes[i] = map[string]int{}
	}
	return &Poll{
		ID:              uuid.New(),
		Topic:           topic,
		Options:         cleaned,
		Votes:           votes,
		UserTokens:      map[string]int{},
		StartingTickets: startingTickets,
		Status:          StatusOpen,
		EndTime:         endTime,
		HideVotes:       hideVotes,
		CreatorID:       creatorID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Clone returns a deep copy. Mutating operations work on a copy so a failed
// conditional write never leaves a half-applied poll behind.
func (p *Poll) Clone() *Poll {
	cp := *p
	cp.Options = append([]string(nil), p.Options...)
	cp.Votes = make([]map[string]int, len(p.Votes))
	for i, m := range p.Votes {
		cp.Votes[i] = make(map[string]int, len(m))
		for k, v := range m {
			cp.Votes[i][k] = v
		}
	}
	cp.UserTokens = make(map[string]int, len(p.UserTokens))
	for k, v := range p.UserTokens {
		cp.UserTokens[k] = v
	}
	if p.EndTime != nil {
		t := *p.EndTime
		cp.EndTime = &t
	}
	return &cp
}

// Ended reports whether the poll is in its terminal state.
func (p *Poll) Ended() bool {
	return p.Status == StatusEnded
}

// Resolve performs the lazy expiry transition: an open poll whose end time
// has passed becomes ended. Every operation calls this once before acting so
// "is it still open" is answered in one place. Returns true if the poll
// transitioned.
func (p *Poll) Resolve(now time.Time) bool {
	if p.Status != StatusOpen || p.EndTime == nil || now.Before(*p.EndTime) {
		return false
	}
	p.Status = StatusEnded
	p.UpdatedAt = now
	return true
}

// End closes the poll on behalf of the requester. Only the creator may end a
// poll, and an ended poll stays ended. The close instant is recorded as the
// end time.
func (p *Poll) End(requesterID string, now time.Time) error {
	if requesterID != p.CreatorID {
		return ErrUnauthorized
	}
	if p.Ended() {
		return ErrPollEnded
	}
	p.Status = StatusEnded
	p.EndTime = &now
	p.UpdatedAt = now
	return nil
}

// VotesFor returns the participant's signed vote count on an option.
func (p *Poll) VotesFor(optionIndex int, userID string) int {
	if optionIndex < 0 || optionIndex >= len(p.Votes) {
		return 0
	}
	return p.Votes[optionIndex][userID]
}

// TokensFor recomputes the participant's remaining balance from the vote
// maps. The stored UserTokens entry is a cache of this value.
func (p *Poll) TokensFor(userID string) int {
	tokens := p.StartingTickets
	for _, m := range p.Votes {
		tokens -= TotalCost(m[userID])
	}
	return tokens
}

// OptionTotal returns the signed sum of all votes on an option.
func (p *Poll) OptionTotal(optionIndex int) int {
	if optionIndex < 0 || optionIndex >= len(p.Votes) {
		return 0
	}
	total := 0
	for _, v := range p.Votes[optionIndex] {
		total += v
	}
	return total
}

// ApplyVote applies one ±1 vote step for a participant and returns the token
// cost charged (negative when refunding). The balance is recomputed from the
// vote maps, never read from the cached UserTokens entry.
func (p *Poll) ApplyVote(userID string, optionIndex int, d Direction, now time.Time) (int, error) {
	if p.Ended() {
		return 0, ErrPollEnded
	}
	if optionIndex < 0 || optionIndex >= len(p.Options) {
		return 0, ErrInvalidOption
	}
	current := p.Votes[optionIndex][userID]
	available := p.TokensFor(userID)
	newVotes, cost, ok := TryApplyDelta(current, d, available)
	if !ok {
		return 0, &InsufficientTokensError{Cost: cost, Balance: available}
	}
	if newVotes == 0 {
		delete(p.Votes[optionIndex], userID)
	} else {
		p.Votes[optionIndex][userID] = newVotes
	}
	p.UserTokens[userID] = available - cost
	p.UpdatedAt = now
	return cost, nil
}
