package ports

import (
	"context"

	"github.com/goodcast/goodapi/pkg/domain"
)

// PollStore persists polls and the responses cast on them.
type PollStore interface {
	// CreatePoll stores a poll with its options.
	CreatePoll(ctx context.Context, poll *domain.Poll) error

	// GetPoll loads a poll with per-option vote counts. When actorID is not
	// empty, the option the actor chose is marked Voted.
	// Returns domain.ErrNotFound if the poll does not exist.
	GetPoll(ctx context.Context, pollID, actorID string) (*domain.Poll, error)

	// RespondPoll records the actor's choice, replacing any earlier one.
	RespondPoll(ctx context.Context, resp domain.PollResponse) error
}

// PreferenceStore persists per-profile preferences.
type PreferenceStore interface {
	// GetPreference returns domain.ErrNotFound when nothing is stored for id.
	GetPreference(ctx context.Context, id string) (*domain.Preference, error)

	// UpsertPreference creates the row for id or applies the update to it.
	UpsertPreference(ctx context.Context, id string, update domain.PreferenceUpdate) (*domain.Preference, error)
}
