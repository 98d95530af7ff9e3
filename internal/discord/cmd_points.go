package discord

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// standingsLimit is how many rows /standings shows
const standingsLimit = 10

// PointsCommand shows a member's monthly points
func PointsCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "points",
		Description: "Show monthly duel points",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "Whose points (default: yours)",
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if i.GuildID == "" {
			respondEphemeral(s, i, MsgGuildOnly)
			return
		}
		if !deferResponse(s, i) {
			return
		}

		target := getInteractionUser(i).ID
		if opt, ok := optionMap(i.ApplicationCommandData().Options)["member"]; ok {
			target = opt.UserValue(nil).ID
		}

		view, err := client.Balance(i.GuildID, target)
		if err != nil {
			slog.Warn("Points lookup failed", "user_id", target, "error", err)
			respondFriendlyError(s, i, err)
			return
		}
		sendEmbed(s, i, balanceEmbed(view))
	}

	return cmd, handler
}

// StandingsCommand shows the community leaderboard
func StandingsCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "standings",
		Description: "Show this month's leaderboard",
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if i.GuildID == "" {
			respondEphemeral(s, i, MsgGuildOnly)
			return
		}
		if !deferResponse(s, i) {
			return
		}

		standings, err := client.Standings(i.GuildID, standingsLimit)
		if err != nil {
			slog.Warn("Standings lookup failed", "guild_id", i.GuildID, "error", err)
			respondFriendlyError(s, i, err)
			return
		}
		sendEmbed(s, i, standingsEmbed("🏆 Current Standings", standings))
	}

	return cmd, handler
}

// RegisterHandleCommand links the invoker to a Codeforces handle
func RegisterHandleCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "register",
		Description: "Link your Codeforces handle",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "handle",
				Description: "Your Codeforces handle",
				Required:    true,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if i.GuildID == "" {
			respondEphemeral(s, i, MsgGuildOnly)
			return
		}

		handleEmbedResponse(s, i, func() (string, error) {
			opt, ok := optionMap(i.ApplicationCommandData().Options)["handle"]
			if !ok {
				return "", fmt.Errorf("missing required handle argument")
			}
			user := getInteractionUser(i)
			linked, err := client.LinkHandle(i.GuildID, user.ID, opt.StringValue())
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s is now linked to **%s**.", mention(user.ID), linked.Handle), nil
		}, ResponseConfig{
			Title: "🔗 Handle Linked",
			Color: ColorSuccess,
		})
	}

	return cmd, handler
}
