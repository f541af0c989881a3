package poll

import (
	"sort"
	"time"
)

// SummaryRow is one option in the public summary. Votes is meaningful only
// when Revealed is true.
type SummaryRow struct {
	OptionIndex int    `json:"optionIndex"`
	Option      string `json:"option"`
	Votes       int    `json:"votes"`
	Revealed    bool   `json:"revealed"`
}

// Summary is the rendering-ready public view of a poll.
type Summary struct {
	PollID  string       `json:"pollId"`
	Topic   string       `json:"topic"`
	Status  Status       `json:"status"`
	Rows    []SummaryRow `json:"rows"`
	EndTime *time.Time   `json:"endTime,omitempty"`
}

// BallotRow is one option in a participant's private ballot.
type BallotRow struct {
	OptionIndex int    `json:"optionIndex"`
	Option      string `json:"option"`
	Votes       int    `json:"votes"`
	UpCost      int    `json:"upCost"`
	DownCost    int    `json:"downCost"`
}

// Ballot is the private per-participant view: own votes, remaining tokens and
// the marginal cost of the next step either way. Options stay in creation
// order.
type Ballot struct {
	PollID    string      `json:"pollId"`
	Topic     string      `json:"topic"`
	Status    Status      `json:"status"`
	Tokens    int         `json:"tokens"`
	IsCreator bool        `json:"isCreator"`
	Rows      []BallotRow `json:"rows"`
	EndTime   *time.Time  `json:"endTime,omitempty"`
}

// BuildSummary derives the public summary. While the poll is open a hideVotes
// poll withholds running totals; once ended, totals are always revealed and
// options are ranked by signed total descending, ties keeping creation order.
func (p *Poll) BuildSummary() Summary {
	rows := make([]SummaryRow, len(p.Options))
	for i, opt := range p.Options {
		rows[i] = SummaryRow{OptionIndex: i, Option: opt}
		if p.Ended() || !p.HideVotes {
			rows[i].Votes = p.OptionTotal(i)
			rows[i].Revealed = true
		}
	}
	if p.Ended() {
		sort.SliceStable(rows, func(a, b int) bool {
			return rows[a].Votes > rows[b].Votes
		})
	}
	return Summary{
		PollID:  p.ID.String(),
		Topic:   p.Topic,
		Status:  p.Status,
		Rows:    rows,
		EndTime: p.EndTime,
	}
}

// BuildBallot derives a participant's private ballot.
func (p *Poll) BuildBallot(userID string) Ballot {
	rows := make([]BallotRow, len(p.Options))
	for i, opt := range p.Options {
		current := p.VotesFor(i, userID)
		rows[i] = BallotRow{
			OptionIndex: i,
			Option:      opt,
			Votes:       current,
			UpCost:      MarginalCost(current, DirectionUp),
			DownCost:    MarginalCost(current, DirectionDown),
		}
	}
	return Ballot{
		PollID:    p.ID.String(),
		Topic:     p.Topic,
		Status:    p.Status,
		Tokens:    p.TokensFor(userID),
		IsCreator: userID == p.CreatorID,
		Rows:      rows,
		EndTime:   p.EndTime,
	}
}
