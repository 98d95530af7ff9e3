package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/DuelBot_Go/internal/domain"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	handled := false

	bus.Subscribe(DuelAccepted, func(ctx context.Context, event Event) error {
		assert.Equal(t, DuelAccepted, event.Type)
		assert.Equal(t, "payload", event.Payload)
		handled = true
		return nil
	})

	err := bus.Publish(context.Background(), Event{Version: EventSchemaVersion, Type: DuelAccepted, Payload: "payload"})
	require.NoError(t, err)
	assert.True(t, handled)
}

func TestMemoryBus_NoSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	assert.NoError(t, bus.Publish(context.Background(), Event{Type: DuelExpired}))
}

func TestMemoryBus_PublishMultipleHandlersAndErrors(t *testing.T) {
	bus := NewMemoryBus()
	count := 0

	bus.Subscribe(DuelExpired, func(ctx context.Context, event Event) error {
		count++
		return errors.New("handler error")
	})
	bus.Subscribe(DuelExpired, func(ctx context.Context, event Event) error {
		count++
		return nil
	})

	err := bus.Publish(context.Background(), Event{Version: EventSchemaVersion, Type: DuelExpired})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encountered 1 errors")
	assert.Equal(t, 2, count, "a failing handler does not stop the others")
}

func TestEventConstructors(t *testing.T) {
	d := &domain.Duel{
		ID:           uuid.New(),
		CommunityID:  "guild-1",
		ChallengerID: "alice",
		ChallengeeID: "bob",
		Status:       domain.DuelStatusComplete,
		Rating:       1200,
		Problems:     []string{"A", "B", "C"},
		IssuedAt:     time.Now(),
	}

	t.Run("duel lifecycle", func(t *testing.T) {
		evt := NewDuelEvent(DuelChallenged, d)
		assert.Equal(t, EventSchemaVersion, evt.Version)
		assert.Equal(t, "guild-1", evt.GetMetadataValue(MetadataCommunityID))

		payload, err := DecodePayload[DuelPayloadV1](evt.Payload)
		require.NoError(t, err)
		assert.Equal(t, d.ID.String(), payload.DuelID)
		assert.Equal(t, []string{"A", "B", "C"}, payload.Problems)
	})

	t.Run("completion carries settlement", func(t *testing.T) {
		outcome := domain.Outcome{ChallengerScore: 30, ChallengeeScore: 10, Winner: domain.WinnerChallenger}
		deltas := []domain.PointsDelta{{ParticipantID: "alice", Delta: 30}, {ParticipantID: "bob", Delta: -20}}
		evt := NewDuelCompletedEvent(d, outcome, deltas)

		payload, err := DecodePayload[DuelCompletedPayloadV1](evt.Payload)
		require.NoError(t, err)
		assert.Equal(t, outcome, payload.Outcome)
		assert.Equal(t, deltas, payload.Deltas)
	})

	t.Run("reset", func(t *testing.T) {
		evt := NewPointsResetEvent(&domain.ResetResult{CommunityID: "guild-1", Period: "2026-10", StartingValue: 1500, ResetAt: time.Now()})
		assert.Equal(t, PointsReset, evt.Type)
		payload := evt.Payload.(PointsResetPayloadV1)
		assert.Equal(t, "2026-10", payload.Period)
	})

	t.Run("metadata missing", func(t *testing.T) {
		evt := NewReconcileCompletedEvent(ReconcileCompletedPayloadV1{Participants: 3})
		assert.Nil(t, evt.GetMetadataValue(MetadataCommunityID))
	})
}

func TestDecodePayload_JSONFallback(t *testing.T) {
	raw := map[string]interface{}{"community_id": "g", "period": "2026-09", "starting_value": 1500}
	payload, err := DecodePayload[PointsResetPayloadV1](raw)
	require.NoError(t, err)
	assert.Equal(t, "2026-09", payload.Period)
	assert.Equal(t, int64(1500), payload.StartingValue)
}
