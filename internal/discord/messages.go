package discord

// Friendly message constants for Discord responses
const (
	MsgGuildOnly       = "⚠️ Duels only work inside a server."
	MsgHandleNotLinked = "🔗 **Handle Not Linked**\nBoth players need a Codeforces handle. Use `/register` first."
	MsgAlreadyInDuel   = "⚔️ **Already Dueling**\nFinish or cancel the current duel first."
	MsgJudgeDown       = "⏳ **Codeforces Is Not Responding**\nYour duel is still running. Try `/duel complete` again in a bit."
	MsgAPIUnreachable  = "📡 Could not reach the duel server. Please try again later."
	MsgNoHistory       = "📜 No finished duels yet."
	MsgNoStandings     = "No data available."

	MsgCancelMustComplete = "If you wish to finish the duel early, use `/duel complete`. You will only get points for problems currently solved."

	MsgGenericError = "❌ Something went wrong."
)

// Footers
const (
	FooterDuelBot      = "DuelBot"
	FooterDuelBotAdmin = "DuelBot Admin"
	FooterCompleteHint = "Use /duel complete when finished."
	FooterAcceptHint   = "Use /duel accept to start, or /duel cancel to decline."
)

// Embed colors
const (
	ColorSuccess = 0x2ecc71
	ColorInfo    = 0x3498db
	ColorWarning = 0xf39c12
	ColorDraw    = 0x95a5a6
	ColorAdmin   = 0x9b59b6
)
