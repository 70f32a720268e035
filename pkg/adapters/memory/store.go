package memory

import (
	"context"
	"sync"
	"time"

	"github.com/goodcast/goodapi/pkg/domain"
)

// Store implements ports.PollStore and ports.PreferenceStore in memory.
// Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	polls       map[string]domain.Poll
	responses   map[string]map[string]string // pollID -> actorID -> optionID
	preferences map[string]domain.Preference
	now         func() time.Time
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		polls:       make(map[string]domain.Poll),
		responses:   make(map[string]map[string]string),
		preferences: make(map[string]domain.Preference),
		now:         time.Now,
	}
}

// CreatePoll keeps a copy of the poll.
func (s *Store) CreatePoll(ctx context.Context, poll *domain.Poll) error {
	copied := *poll
	copied.Options = append([]domain.PollOption(nil), poll.Options...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls[poll.ID] = copied
	return nil
}

// GetPoll returns a copy of the poll with vote counts filled in.
func (s *Store) GetPoll(ctx context.Context, pollID, actorID string) (*domain.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	counts := make(map[string]int)
	for _, optionID := range s.responses[pollID] {
		counts[optionID]++
	}
	chosen := ""
	if actorID != "" {
		chosen = s.responses[pollID][actorID]
	}

	ret := poll
	ret.Options = make([]domain.PollOption, len(poll.Options))
	for i, o := range poll.Options {
		o.VoteCount = counts[o.ID]
		o.Voted = o.ID == chosen
		ret.Options[i] = o
	}
	return &ret, nil
}

// RespondPoll records the actor's option, replacing an earlier one.
func (s *Store) RespondPoll(ctx context.Context, resp domain.PollResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[resp.PollID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := poll.Option(resp.OptionID); !ok {
		return domain.ErrInvalidOption
	}

	if s.responses[resp.PollID] == nil {
		s.responses[resp.PollID] = make(map[string]string)
	}
	s.responses[resp.PollID][resp.ActorID] = resp.OptionID
	return nil
}

// GetPreference returns the stored preference for id.
func (s *Store) GetPreference(ctx context.Context, id string) (*domain.Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pref, ok := s.preferences[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &pref, nil
}

// UpsertPreference creates or updates the preference for id.
func (s *Store) UpsertPreference(ctx context.Context, id string, update domain.PreferenceUpdate) (*domain.Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pref, ok := s.preferences[id]
	if !ok {
		pref = domain.DefaultPreference(id)
		pref.CreatedAt = s.now().UTC()
	}
	pref = update.Apply(pref)
	s.preferences[id] = pref
	return &pref, nil
}
