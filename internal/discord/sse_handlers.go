package discord

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/sse"
)

// MessageSender posts embeds to a channel. *discordgo.Session satisfies it.
type MessageSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// SSENotifier posts API events to each community's master channel
type SSENotifier struct {
	sender MessageSender
}

// NewSSENotifier creates a new SSE notifier
func NewSSENotifier(sender MessageSender) *SSENotifier {
	return &SSENotifier{sender: sender}
}

// RegisterHandlers registers all SSE event handlers with the client
func (n *SSENotifier) RegisterHandlers(client *SSEClient) {
	client.OnEvent(SSEEventTypeDuelExpired, n.handleDuelExpired)
	client.OnEvent(SSEEventTypeDuelCompleted, n.handleDuelCompleted)
	client.OnEvent(SSEEventTypePointsReset, n.handlePointsReset)
	client.OnEvent(SSEEventTypeWeeklyStandings, n.handleWeeklyStandings)
}

// decodePayload returns false for payloads that cannot be posted
func decodePayload[T any](event SSEEvent) (T, bool) {
	var payload T
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		slog.Warn(sseLogMsgParseError, "error", err, "event_type", event.Type)
		return payload, false
	}
	return payload, true
}

func (n *SSENotifier) send(event SSEEvent, channelID string, embed *discordgo.MessageEmbed) error {
	if channelID == "" {
		return nil
	}
	embed.Timestamp = time.Now().Format(time.RFC3339)
	if _, err := n.sender.ChannelMessageSendEmbed(channelID, embed); err != nil {
		slog.Error(sseLogMsgNotificationError, "error", err, "event_type", event.Type, "channel_id", channelID)
		return err
	}
	slog.Info(sseLogMsgNotificationSent, "event_type", event.Type, "channel_id", channelID)
	return nil
}

func (n *SSENotifier) handleDuelExpired(event SSEEvent) error {
	payload, ok := decodePayload[sse.DuelExpiredPayload](event)
	if !ok {
		return nil
	}

	embed := createEmbed("⌛ Challenge Expired",
		fmt.Sprintf("Challenge request for %s from %s has expired.", mention(payload.ChallengeeID), mention(payload.ChallengerID)),
		ColorWarning, "")
	return n.send(event, payload.ChannelID, embed)
}

func (n *SSENotifier) handleDuelCompleted(event SSEEvent) error {
	payload, ok := decodePayload[sse.DuelCompletedPayload](event)
	if !ok {
		return nil
	}

	d := &domain.Duel{ChallengerID: payload.ChallengerID, ChallengeeID: payload.ChallengeeID}
	return n.send(event, payload.ChannelID, outcomeEmbed(d, payload.Outcome))
}

func (n *SSENotifier) handlePointsReset(event SSEEvent) error {
	payload, ok := decodePayload[sse.PointsResetPayload](event)
	if !ok {
		return nil
	}

	embed := standingsEmbed(fmt.Sprintf("🏁 Final Standings for %s", payload.Period), payload.Standings)
	embed.Description = fmt.Sprintf("🌙 **New Month Has Started!**\nAll points have been reset to **%d**. Good luck to everyone!\n\n%s",
		payload.StartingValue, embed.Description)
	return n.send(event, payload.ChannelID, embed)
}

func (n *SSENotifier) handleWeeklyStandings(event SSEEvent) error {
	payload, ok := decodePayload[sse.StandingsPayload](event)
	if !ok {
		return nil
	}

	return n.send(event, payload.ChannelID, standingsEmbed("📅 Weekly Standings", payload.Standings))
}
