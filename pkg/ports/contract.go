package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goodcast/goodapi/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPollStoreContract runs a suite of tests to verify that a PollStore
// implementation adheres to the defined interface contract.
func RunPollStoreContract(t *testing.T, store PollStore) {
	ctx := context.Background()

	t.Run("Create and Get", func(t *testing.T) {
		poll, err := domain.NewPoll(7, []string{"red", "green", "blue"}, time.Now())
		require.NoError(t, err)

		require.NoError(t, store.CreatePoll(ctx, poll), "CreatePoll should not return error")

		loaded, err := store.GetPoll(ctx, poll.ID, "")
		require.NoError(t, err, "GetPoll should not return error")
		assert.Equal(t, poll.ID, loaded.ID)
		assert.WithinDuration(t, poll.EndsAt, loaded.EndsAt, time.Second)
		require.Len(t, loaded.Options, 3)
		for i, o := range loaded.Options {
			assert.Equal(t, poll.Options[i].ID, o.ID)
			assert.Equal(t, poll.Options[i].Index, o.Index)
			assert.Equal(t, poll.Options[i].Option, o.Option)
			assert.Zero(t, o.VoteCount)
			assert.False(t, o.Voted)
		}
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.GetPoll(ctx, "missing-poll", "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Respond Replaces Earlier Choice", func(t *testing.T) {
		poll, err := domain.NewPoll(1, []string{"yes", "no"}, time.Now())
		require.NoError(t, err)
		require.NoError(t, store.CreatePoll(ctx, poll))

		yes, no := poll.Options[0].ID, poll.Options[1].ID

		require.NoError(t, store.RespondPoll(ctx, domain.PollResponse{PollID: poll.ID, OptionID: yes, ActorID: "0x01", CreatedAt: time.Now()}))
		require.NoError(t, store.RespondPoll(ctx, domain.PollResponse{PollID: poll.ID, OptionID: yes, ActorID: "0x02", CreatedAt: time.Now()}))
		require.NoError(t, store.RespondPoll(ctx, domain.PollResponse{PollID: poll.ID, OptionID: no, ActorID: "0x01", CreatedAt: time.Now()}))

		loaded, err := store.GetPoll(ctx, poll.ID, "0x01")
		require.NoError(t, err)
		require.Len(t, loaded.Options, 2)
		assert.Equal(t, 1, loaded.Options[0].VoteCount)
		assert.False(t, loaded.Options[0].Voted)
		assert.Equal(t, 1, loaded.Options[1].VoteCount)
		assert.True(t, loaded.Options[1].Voted)
	})

	t.Run("Respond Unknown Option", func(t *testing.T) {
		poll, err := domain.NewPoll(1, []string{"only"}, time.Now())
		require.NoError(t, err)
		require.NoError(t, store.CreatePoll(ctx, poll))

		err = store.RespondPoll(ctx, domain.PollResponse{PollID: poll.ID, OptionID: "other", ActorID: "0x01", CreatedAt: time.Now()})
		assert.ErrorIs(t, err, domain.ErrInvalidOption)
	})
}

// RunPreferenceStoreContract verifies the upsert semantics of a PreferenceStore.
func RunPreferenceStoreContract(t *testing.T, store PreferenceStore) {
	ctx := context.Background()
	id := "0x" + time.Now().Format("150405.000000")

	_, err := store.GetPreference(ctx, id)
	require.ErrorIs(t, err, domain.ErrNotFound)

	icon := 2
	created, err := store.UpsertPreference(ctx, id, domain.PreferenceUpdate{AppIcon: &icon})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, 2, created.AppIcon)
	assert.False(t, created.HighSignalNotificationFilter)

	filter := true
	updated, err := store.UpsertPreference(ctx, id, domain.PreferenceUpdate{HighSignalNotificationFilter: &filter})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.AppIcon, "fields absent from the update must be kept")
	assert.True(t, updated.HighSignalNotificationFilter)

	loaded, err := store.GetPreference(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, *updated, *loaded)
}

// RunRecentEventsContract verifies ordering and bounds of a RecentEvents
// window created with the given capacity (at least 3).
func RunRecentEventsContract(t *testing.T, recent RecentEvents, capacity int) {
	ctx := context.Background()
	require.GreaterOrEqual(t, capacity, 3)

	for i := 0; i < capacity+2; i++ {
		ev := &domain.Event{
			Name:    fmt.Sprintf("event-%d", i),
			Created: time.Now().UTC(),
			URL:     domain.Nullable("https://bcharity.net/"),
		}
		require.NoError(t, recent.Push(ctx, ev))
	}

	all, err := recent.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, capacity, "window must stay bounded")
	assert.Equal(t, fmt.Sprintf("event-%d", capacity+1), all[0].Name, "newest first")
	assert.Equal(t, "https://bcharity.net/", domain.Deref(all[0].URL))
	assert.Nil(t, all[0].Actor)

	two, err := recent.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, all[1].Name, two[1].Name)
}

// RunClaimerContract verifies that a key is granted once per ttl.
func RunClaimerContract(t *testing.T, claimer Claimer) {
	ctx := context.Background()
	key := "claim-" + time.Now().Format("150405.000000")

	ok, err := claimer.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "first claim wins")

	ok, err = claimer.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second claim loses")

	ok, err = claimer.Claim(ctx, key+"-other", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")
}
