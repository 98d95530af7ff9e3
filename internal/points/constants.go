package points

// Defaults
const (
	DefaultStandingsLimit = 20
	MaxStandingsLimit     = 100
	WeeklyStandingsLimit  = 10
)

const (
	LogMsgHandleLinked          = "Handle linked"
	LogMsgMasterChannelSet      = "Master channel set"
	LogMsgWeeklyStandingsFailed = "Failed to publish weekly standings"
)

const (
	ErrContextFailedToGetBalance    = "failed to get balance"
	ErrContextFailedToListStandings = "failed to list standings"
	ErrContextFailedToVerifyHandle  = "failed to verify handle"
	ErrContextFailedToLinkHandle    = "failed to link handle"
	ErrContextFailedToSetChannel    = "failed to set master channel"
	ErrContextFailedToListSettings  = "failed to list community settings"
)
