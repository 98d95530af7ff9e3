package discord

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/osse101/DuelBot_Go/internal/domain"
)

// Duel subcommand names
const (
	SubChallenge = "challenge"
	SubAccept    = "accept"
	SubComplete  = "complete"
	SubCancel    = "cancel"
	SubHistory   = "history"
)

// historyFetchLimit is how many finished duels /duel history asks for
const historyFetchLimit = 20

// DuelCommand returns the /duel command with its subcommands
func DuelCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	minRating := float64(800)

	cmd := &discordgo.ApplicationCommand{
		Name:        "duel",
		Description: "Codeforces duels",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        SubChallenge,
				Description: "Challenge another member",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "opponent",
						Description: "Who to challenge",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "rating",
						Description: "Problem rating (default: based on both players' ratings)",
						MinValue:    &minRating,
						MaxValue:    3500,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        SubAccept,
				Description: "Accept the challenge waiting for you",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        SubComplete,
				Description: "Mark your side finished; the duel is judged once both sides are done",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        SubCancel,
				Description: "Withdraw or decline a pending challenge",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        SubHistory,
				Description: "Show finished duels",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "member",
						Description: "Whose history (default: yours)",
					},
				},
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		options := i.ApplicationCommandData().Options
		if len(options) == 0 {
			return
		}
		sub := options[0]

		if i.GuildID == "" {
			respondEphemeral(s, i, MsgGuildOnly)
			return
		}
		if !deferResponse(s, i) {
			return
		}

		user := getInteractionUser(i)
		opts := optionMap(sub.Options)

		switch sub.Name {
		case SubChallenge:
			handleChallenge(s, i, client, user.ID, opts)
		case SubAccept:
			d, err := client.Accept(i.GuildID, user.ID)
			if err != nil {
				slog.Warn("Duel accept failed", "user_id", user.ID, "error", err)
				respondFriendlyError(s, i, err)
				return
			}
			sendEmbed(s, i, duelStartedEmbed(d))
		case SubComplete:
			handleComplete(s, i, client, user.ID)
		case SubCancel:
			handleCancel(s, i, client, user.ID)
		case SubHistory:
			target := user.ID
			if opt, ok := opts["member"]; ok {
				target = opt.UserValue(nil).ID
			}
			entries, err := client.History(target, historyFetchLimit)
			if err != nil {
				slog.Warn("Duel history failed", "user_id", target, "error", err)
				respondFriendlyError(s, i, err)
				return
			}
			sendEmbed(s, i, historyEmbeds(target, entries)...)
		default:
			respondError(s, i, MsgGenericError)
		}
	}

	return cmd, handler
}

func handleChallenge(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient, challengerID string,
	opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	opponent, ok := opts["opponent"]
	if !ok {
		respondError(s, i, MsgGenericError)
		return
	}

	var rating *int
	if opt, ok := opts["rating"]; ok {
		r := int(opt.IntValue())
		rating = &r
	}

	d, err := client.Challenge(i.GuildID, challengerID, opponent.UserValue(nil).ID, rating)
	if err != nil {
		slog.Warn("Duel challenge failed", "user_id", challengerID, "error", err)
		respondFriendlyError(s, i, err)
		return
	}
	sendEmbed(s, i, challengeEmbed(d))
}

func handleComplete(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient, actorID string) {
	res, err := client.Complete(i.GuildID, actorID)
	if err != nil {
		slog.Warn("Duel complete failed", "user_id", actorID, "error", err)
		respondFriendlyError(s, i, err)
		return
	}

	if res.Status != domain.CompletionFinished || res.Duel == nil || res.Outcome == nil {
		respondText(s, i, "✅ "+mention(actorID)+", you have finished. Waiting for opponent...")
		return
	}
	sendEmbed(s, i, outcomeEmbed(res.Duel, *res.Outcome))
}

func handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient, actorID string) {
	res, err := client.Cancel(i.GuildID, actorID)
	if err != nil {
		slog.Warn("Duel cancel failed", "user_id", actorID, "error", err)
		respondFriendlyError(s, i, err)
		return
	}

	switch res.Result {
	case domain.CancelWithdrawn:
		respondText(s, i, "Challenge withdrawn.")
	case domain.CancelDeclined:
		respondText(s, i, "Challenge declined.")
	default:
		respondText(s, i, mention(actorID)+", "+MsgCancelMustComplete)
	}
}

// respondEphemeral answers immediately with a message only the invoker sees
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		slog.Error("Failed to send ephemeral response", "error", err)
	}
}
