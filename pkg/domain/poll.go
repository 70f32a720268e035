package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinPollLength = 1
	MaxPollLength = 30
)

// Poll is a set of options attached to a publication for a limited time.
type Poll struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	EndsAt    time.Time    `json:"endsAt"`
	Options   []PollOption `json:"options"`
}

// PollOption is one choice of a poll. VoteCount and Voted are filled on reads.
type PollOption struct {
	ID        string `json:"id"`
	Index     int    `json:"index"`
	Option    string `json:"option"`
	VoteCount int    `json:"voteCount"`
	Voted     bool   `json:"voted"`
}

// PollResponse records the option an actor chose.
type PollResponse struct {
	PollID    string    `json:"pollId"`
	OptionID  string    `json:"optionId"`
	ActorID   string    `json:"actorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewPoll builds a poll that ends length days after now.
// Repeated option texts are dropped; the first occurrence keeps its index.
func NewPoll(length float64, options []string, now time.Time) (*Poll, error) {
	if length < MinPollLength || length > MaxPollLength {
		return nil, ErrPollLength
	}

	now = now.UTC()
	poll := &Poll{
		ID:        uuid.NewString(),
		CreatedAt: now,
		EndsAt:    now.Add(time.Duration(length * float64(24*time.Hour))),
		Options:   make([]PollOption, 0, len(options)),
	}

	seen := make(map[string]struct{}, len(options))
	for index, option := range options {
		key := strings.TrimSpace(option)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		poll.Options = append(poll.Options, PollOption{
			ID:     uuid.NewString(),
			Index:  index,
			Option: option,
		})
	}
	return poll, nil
}

// Ended reports whether the poll no longer accepts responses.
func (p *Poll) Ended(now time.Time) bool {
	return !now.Before(p.EndsAt)
}

// Option returns the option with the given id.
func (p *Poll) Option(id string) (PollOption, bool) {
	for _, o := range p.Options {
		if o.ID == id {
			return o, true
		}
	}
	return PollOption{}, false
}
