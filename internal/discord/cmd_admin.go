package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var adminPermission int64 = discordgo.PermissionAdministrator

// MasterChannelCommand routes duel and standings notifications to the current channel
func MasterChannelCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "masterchannel",
		Description:              "Post duel and standings announcements in this channel",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if i.GuildID == "" {
			respondEphemeral(s, i, MsgGuildOnly)
			return
		}

		handleEmbedResponse(s, i, func() (string, error) {
			if err := client.SetMasterChannel(i.GuildID, i.ChannelID); err != nil {
				return "", err
			}
			return fmt.Sprintf("🏆 <#%s> set as **Master Event Channel**.", i.ChannelID), nil
		}, ResponseConfig{
			Title:  "Master Channel",
			Color:  ColorAdmin,
			Footer: FooterDuelBotAdmin,
		})
	}

	return cmd, handler
}

// ResetPointsCommand runs this month's reset for the server ahead of schedule
func ResetPointsCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     "resetpoints",
		Description:              "Archive standings and reset everyone's points for this month",
		DefaultMemberPermissions: &adminPermission,
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if i.GuildID == "" {
			respondEphemeral(s, i, MsgGuildOnly)
			return
		}

		handleEmbedResponse(s, i, func() (string, error) {
			results, err := client.Reset(i.GuildID)
			if err != nil {
				return "", err
			}
			lines := make([]string, 0, len(results))
			for _, res := range results {
				if res.Skipped {
					lines = append(lines, fmt.Sprintf("Period %s was already reset.", res.Period))
					continue
				}
				lines = append(lines, fmt.Sprintf("Period %s: %d balances reset to **%d**.",
					res.Period, res.RecordsAffected, res.StartingValue))
			}
			return strings.Join(lines, "\n"), nil
		}, ResponseConfig{
			Title:  "🌙 Points Reset",
			Color:  ColorAdmin,
			Footer: FooterDuelBotAdmin,
		})
	}

	return cmd, handler
}
