package handler

// Generic HTTP error messages for client responses.
// These messages do not expose internal error details.
// Both handlers and tests should reference these constants.
const (
	// HTTP status messages
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidLimit      = "Invalid limit parameter"

	// SSE admin messages
	ErrMsgEventTypeRequired = "Event type is required"
	ErrMsgInvalidPayload    = "Invalid payload JSON"
)

// Success messages for API responses
const (
	MsgChallengeIssued      = "Challenge issued"
	MsgDuelAccepted         = "Duel started"
	MsgWaitingForOpponent   = "Waiting for your opponent to finish"
	MsgDuelFinished         = "Duel finished"
	MsgHandleLinked         = "Handle linked"
	MsgMasterChannelUpdated = "Master channel updated"
	MsgResetCompleted       = "Points reset"
	MsgEventBroadcast       = "Event broadcasted successfully"
)

// Query parameter names
const (
	QueryParamCommunityID   = "community_id"
	QueryParamParticipantID = "participant_id"
	QueryParamLimit         = "limit"
)
