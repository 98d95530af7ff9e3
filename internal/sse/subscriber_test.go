package sse

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/event"
	"github.com/osse101/DuelBot_Go/mocks"
)

func TestSubscriber_ForwardsToMasterChannel(t *testing.T) {
	ctx := context.Background()
	settings := mocks.NewMockRepositoryHandles(t)
	settings.On("GetSettings", ctx, "guild").Return(&domain.CommunitySettings{CommunityID: "guild", MasterChannelID: "chan-1"}, nil)
	settings.On("GetSettings", ctx, "quiet").Return(&domain.CommunitySettings{CommunityID: "quiet"}, nil)

	hub := NewHub()
	hub.Start()
	defer hub.Stop()
	client := hub.Register(nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	bus := event.NewMemoryBus()
	NewSubscriber(hub, bus, settings).Subscribe()

	quiet := &domain.Duel{ID: uuid.New(), CommunityID: "quiet", ChallengerID: "a", ChallengeeID: "b"}
	require.NoError(t, bus.Publish(ctx, event.NewDuelEvent(event.DuelExpired, quiet)))

	d := &domain.Duel{ID: uuid.New(), CommunityID: "guild", ChallengerID: "a", ChallengeeID: "b"}
	require.NoError(t, bus.Publish(ctx, event.NewDuelCompletedEvent(d, domain.Outcome{Winner: domain.WinnerChallenger}, []domain.PointsDelta{
		{ParticipantID: "a", Delta: 30},
	})))

	e := receive(t, client)
	require.Equal(t, EventTypeDuelCompleted, e.Type, "community without a master channel is skipped")
	payload, ok := e.Payload.(DuelCompletedPayload)
	require.True(t, ok)
	assert.Equal(t, "chan-1", payload.ChannelID)
	assert.Equal(t, d.ID.String(), payload.DuelID)
	assert.Equal(t, domain.WinnerChallenger, payload.Outcome.Winner)
	require.Len(t, payload.Deltas, 1)
}

func TestSubscriber_WeeklyStandings(t *testing.T) {
	ctx := context.Background()
	settings := mocks.NewMockRepositoryHandles(t)
	settings.On("GetSettings", ctx, "guild").Return(&domain.CommunitySettings{CommunityID: "guild", MasterChannelID: "chan-1"}, nil)

	hub := NewHub()
	hub.Start()
	defer hub.Stop()
	client := hub.Register([]string{EventTypeWeeklyStandings})
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	bus := event.NewMemoryBus()
	NewSubscriber(hub, bus, settings).Subscribe()

	standings := []domain.Standing{{Position: 1, ParticipantID: "a", Total: 1700, Rank: "Master"}}
	require.NoError(t, bus.Publish(ctx, event.NewWeeklyStandingsEvent("guild", standings)))

	e := receive(t, client)
	payload := e.Payload.(StandingsPayload)
	assert.Equal(t, standings, payload.Standings)
}
