package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/handler"
	"github.com/osse101/DuelBot_Go/internal/points"
	"github.com/osse101/DuelBot_Go/internal/settlement"
)

// historyPageSize is how many duels one history embed shows
const historyPageSize = 5

// maxEmbedsPerMessage is Discord's limit
const maxEmbedsPerMessage = 10

var titleCaser = cases.Title(language.English)

// titleWord renders constants such as EXPIRED or "points.reset" for humans
func titleWord(s string) string {
	s = strings.NewReplacer("_", " ", ".", " ").Replace(s)
	return titleCaser.String(strings.ToLower(s))
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

// createEmbed creates a standard embed. An empty footer means FooterDuelBot.
func createEmbed(title, description string, color int, footerText string) *discordgo.MessageEmbed {
	if footerText == "" {
		footerText = FooterDuelBot
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Footer: &discordgo.MessageEmbedFooter{
			Text: footerText,
		},
	}
}

func problemList(problems []string) string {
	if len(problems) == 0 {
		return "-"
	}
	var b strings.Builder
	for _, p := range problems {
		fmt.Fprintf(&b, "• %s\n", p)
	}
	return strings.TrimRight(b.String(), "\n")
}

// challengeEmbed announces a new pending challenge
func challengeEmbed(d *domain.Duel) *discordgo.MessageEmbed {
	return createEmbed("⚔️ Duel Challenge",
		fmt.Sprintf("%s challenged %s to a duel of %d problems! (Rating: %d)",
			mention(d.ChallengerID), mention(d.ChallengeeID), len(d.Problems), d.Rating),
		ColorInfo, FooterAcceptHint)
}

// duelStartedEmbed lists the problems once the challengee accepts
func duelStartedEmbed(d *domain.Duel) *discordgo.MessageEmbed {
	// Mentions do not render in titles
	embed := createEmbed("⚔️ Duel Started",
		fmt.Sprintf("%s vs %s", mention(d.ChallengerID), mention(d.ChallengeeID)),
		ColorSuccess, FooterCompleteHint)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Problems", Value: problemList(d.Problems), Inline: false},
	}
	return embed
}

// outcomeEmbed shows the scores and the points each side gained or lost
func outcomeEmbed(d *domain.Duel, outcome domain.Outcome) *discordgo.MessageEmbed {
	deltas := settlement.Plan(d, outcome)

	results := fmt.Sprintf("%s: **%d**\n%s: **%d**",
		mention(d.ChallengerID), outcome.ChallengerScore,
		mention(d.ChallengeeID), outcome.ChallengeeScore)

	var impact string
	if len(deltas) == 0 {
		impact = "No points awarded (No problems solved)"
	} else {
		lines := make([]string, 0, len(deltas))
		for _, delta := range deltas {
			lines = append(lines, fmt.Sprintf("%s: %+d", mention(delta.ParticipantID), delta.Delta))
		}
		impact = strings.Join(lines, "\n")
	}

	var embed *discordgo.MessageEmbed
	switch outcome.Winner {
	case domain.WinnerChallenger, domain.WinnerChallengee:
		winner := d.ChallengerID
		if outcome.Winner == domain.WinnerChallengee {
			winner = d.ChallengeeID
		}
		embed = createEmbed("🏆 Duel Finished", fmt.Sprintf("%s won the duel!", mention(winner)), ColorSuccess, "")
	default:
		embed = createEmbed("🤝 Duel Finished", "The duel ended in a Draw!", ColorDraw, "")
	}

	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Final Results", Value: results, Inline: true},
		{Name: "Points Impact", Value: impact, Inline: true},
	}
	return embed
}

// resultLabel renders one history entry's result
func resultLabel(e handler.HistoryEntry) string {
	switch e.Result {
	case domain.DuelResultWon:
		return "✅ Won"
	case domain.DuelResultLost:
		return "❌ Lost"
	case domain.DuelResultDraw:
		return "🤝 Draw"
	default:
		return titleWord(string(e.Status))
	}
}

func historyLine(e handler.HistoryEntry) string {
	line := fmt.Sprintf("**%s** vs %s | Rating %d", resultLabel(e), mention(e.OpponentID), e.Rating)
	if e.Result != domain.DuelResultNone {
		line += fmt.Sprintf(" | %d - %d", e.Score, e.Against)
	}
	if e.FinishedAt != "" {
		line += " | " + e.FinishedAt
	}
	return line
}

// historyEmbeds pages entries five per embed, capped at Discord's embed limit
func historyEmbeds(participantID string, entries []handler.HistoryEntry) []*discordgo.MessageEmbed {
	if len(entries) == 0 {
		return []*discordgo.MessageEmbed{createEmbed("Duel History", MsgNoHistory, ColorInfo, "")}
	}

	pages := (len(entries) + historyPageSize - 1) / historyPageSize
	pages = min(pages, maxEmbedsPerMessage)

	embeds := make([]*discordgo.MessageEmbed, 0, pages)
	for p := 0; p < pages; p++ {
		chunk := entries[p*historyPageSize : min((p+1)*historyPageSize, len(entries))]

		embed := createEmbed("Duel History", "for "+mention(participantID), ColorInfo,
			fmt.Sprintf("Page %d/%d", p+1, pages))
		for _, e := range chunk {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  "Duel " + shortID(e.DuelID),
				Value: historyLine(e),
			})
		}
		embeds = append(embeds, embed)
	}
	return embeds
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// balanceEmbed shows one member's points and rank
func balanceEmbed(view *points.BalanceView) *discordgo.MessageEmbed {
	embed := createEmbed("📊 Points",
		fmt.Sprintf("%s has **%d** points this month!", mention(view.ParticipantID), view.Total),
		view.Rank.Color, "")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Rank", Value: view.Rank.Title, Inline: true},
	}
	return embed
}

// standingsEmbed renders a leaderboard
func standingsEmbed(title string, standings []domain.Standing) *discordgo.MessageEmbed {
	embed := createEmbed(title, "", ColorInfo, "")
	embed.Timestamp = time.Now().Format(time.RFC3339)
	if len(standings) == 0 {
		embed.Description = MsgNoStandings
		return embed
	}

	lines := make([]string, 0, len(standings))
	for _, st := range standings {
		lines = append(lines, fmt.Sprintf("**%d.** %s: %d (%s)", st.Position, mention(st.ParticipantID), st.Total, st.Rank))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}
