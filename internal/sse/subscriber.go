package sse

import (
	"context"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/event"
	"github.com/osse101/DuelBot_Go/internal/logger"
)

// SettingsLookup resolves where a community wants notifications posted
type SettingsLookup interface {
	GetSettings(ctx context.Context, communityID string) (*domain.CommunitySettings, error)
}

// Subscriber bridges the internal event bus to the SSE hub. Only events for
// communities with a master channel are forwarded.
type Subscriber struct {
	hub      *Hub
	bus      event.Bus
	settings SettingsLookup
}

// NewSubscriber creates a new SSE subscriber
func NewSubscriber(hub *Hub, bus event.Bus, settings SettingsLookup) *Subscriber {
	return &Subscriber{
		hub:      hub,
		bus:      bus,
		settings: settings,
	}
}

// Subscribe registers handlers for all relevant event types
func (s *Subscriber) Subscribe() {
	s.bus.Subscribe(event.DuelExpired, s.handleDuelExpired)
	s.bus.Subscribe(event.DuelCompleted, s.handleDuelCompleted)
	s.bus.Subscribe(event.PointsReset, s.handlePointsReset)
	s.bus.Subscribe(event.WeeklyStandings, s.handleWeeklyStandings)

	logger.Info("SSE subscriber registered for event types",
		"types", []string{EventTypeDuelExpired, EventTypeDuelCompleted, EventTypePointsReset, EventTypeWeeklyStandings})
}

// notification looks up the master channel. ok is false when the community
// has none configured.
func (s *Subscriber) notification(ctx context.Context, communityID string) (Notification, bool) {
	cs, err := s.settings.GetSettings(ctx, communityID)
	if err != nil || cs == nil || cs.MasterChannelID == "" {
		logger.FromContext(ctx).Debug(LogMsgNoMasterChannel, "community_id", communityID, "error", err)
		return Notification{}, false
	}
	return Notification{CommunityID: communityID, ChannelID: cs.MasterChannelID}, true
}

func (s *Subscriber) broadcast(ctx context.Context, eventType string, payload interface{}) {
	s.hub.Broadcast(eventType, payload)
	logger.FromContext(ctx).Debug(LogMsgEventBroadcast, "event_type", eventType)
}

func (s *Subscriber) handleDuelExpired(ctx context.Context, evt event.Event) error {
	p, err := event.DecodePayload[event.DuelPayloadV1](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgInvalidPayload, "type", evt.Type, "error", err)
		return nil
	}
	n, ok := s.notification(ctx, p.CommunityID)
	if !ok {
		return nil
	}
	s.broadcast(ctx, EventTypeDuelExpired, DuelExpiredPayload{
		Notification: n,
		DuelID:       p.DuelID,
		ChallengerID: p.ChallengerID,
		ChallengeeID: p.ChallengeeID,
	})
	return nil
}

func (s *Subscriber) handleDuelCompleted(ctx context.Context, evt event.Event) error {
	p, err := event.DecodePayload[event.DuelCompletedPayloadV1](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgInvalidPayload, "type", evt.Type, "error", err)
		return nil
	}
	n, ok := s.notification(ctx, p.Duel.CommunityID)
	if !ok {
		return nil
	}
	s.broadcast(ctx, EventTypeDuelCompleted, DuelCompletedPayload{
		Notification: n,
		DuelID:       p.Duel.DuelID,
		ChallengerID: p.Duel.ChallengerID,
		ChallengeeID: p.Duel.ChallengeeID,
		Outcome:      p.Outcome,
		Deltas:       p.Deltas,
	})
	return nil
}

func (s *Subscriber) handlePointsReset(ctx context.Context, evt event.Event) error {
	p, err := event.DecodePayload[event.PointsResetPayloadV1](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgInvalidPayload, "type", evt.Type, "error", err)
		return nil
	}
	n, ok := s.notification(ctx, p.CommunityID)
	if !ok {
		return nil
	}
	s.broadcast(ctx, EventTypePointsReset, PointsResetPayload{
		Notification:  n,
		Period:        p.Period,
		StartingValue: p.StartingValue,
		Standings:     p.Standings,
	})
	return nil
}

func (s *Subscriber) handleWeeklyStandings(ctx context.Context, evt event.Event) error {
	p, err := event.DecodePayload[event.StandingsPayloadV1](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgInvalidPayload, "type", evt.Type, "error", err)
		return nil
	}
	n, ok := s.notification(ctx, p.CommunityID)
	if !ok {
		return nil
	}
	s.broadcast(ctx, EventTypeWeeklyStandings, StandingsPayload{Notification: n, Standings: p.Standings})
	return nil
}
