package handler

import (
	"net/http"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/duel"
	"github.com/osse101/DuelBot_Go/internal/logger"
)

// History limits for GET /duel/history
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

type DuelHandler struct {
	service duel.Service
}

func NewDuelHandler(service duel.Service) *DuelHandler {
	return &DuelHandler{service: service}
}

// ChallengeRequest represents a duel challenge request
type ChallengeRequest struct {
	CommunityID  string `json:"community_id" validate:"required,snowflake"`
	ChallengerID string `json:"challenger_id" validate:"required,snowflake"`
	ChallengeeID string `json:"challengee_id" validate:"required,snowflake"`
	Rating       *int   `json:"rating,omitempty" validate:"omitempty,min=800,max=3500"`
}

// ActorRequest identifies the participant acting on their open duel
type ActorRequest struct {
	CommunityID string `json:"community_id" validate:"omitempty,snowflake"`
	ActorID     string `json:"actor_id" validate:"required,snowflake"`
}

// DuelResponse wraps a duel snapshot
type DuelResponse struct {
	Message string       `json:"message"`
	Duel    *domain.Duel `json:"duel"`
}

// CompleteResponse reports whether judging ran
type CompleteResponse struct {
	Message string                  `json:"message"`
	Status  domain.CompletionStatus `json:"status"`
	Duel    *domain.Duel            `json:"duel,omitempty"`
	Outcome *domain.Outcome         `json:"outcome,omitempty"`
}

// CancelResponse reports what a cancel request did
type CancelResponse struct {
	Result domain.CancelResult `json:"result"`
	Duel   *domain.Duel        `json:"duel,omitempty"`
}

// HistoryEntry is one finished duel seen from the requesting participant
type HistoryEntry struct {
	DuelID     string            `json:"duel_id"`
	OpponentID string            `json:"opponent_id"`
	Result     domain.DuelResult `json:"result"`
	Status     domain.DuelStatus `json:"status"`
	Rating     int               `json:"rating"`
	Score      int               `json:"score"`
	Against    int               `json:"opponent_score"`
	FinishedAt string            `json:"finished_at,omitempty"`
}

// HandleChallenge issues a pending challenge
// POST /api/v1/duel/challenge
func (h *DuelHandler) HandleChallenge(w http.ResponseWriter, r *http.Request) {
	var req ChallengeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Challenge duel"); err != nil {
		return
	}
	LogRequestFields(logger.FromContext(r.Context()),
		"community_id", req.CommunityID, "challenger_id", req.ChallengerID, "challengee_id", req.ChallengeeID)

	d, err := h.service.Challenge(r.Context(), req.CommunityID, req.ChallengerID, req.ChallengeeID, req.Rating)
	if err != nil {
		respondServiceError(w, r, "Challenge duel", err)
		return
	}

	respondJSON(w, http.StatusCreated, DuelResponse{Message: MsgChallengeIssued, Duel: d})
}

// HandleAccept starts the actor's pending challenge
// POST /api/v1/duel/accept
func (h *DuelHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Accept duel"); err != nil {
		return
	}

	d, err := h.service.Accept(r.Context(), req.ActorID)
	if err != nil {
		respondServiceError(w, r, "Accept duel", err)
		return
	}

	respondJSON(w, http.StatusOK, DuelResponse{Message: MsgDuelAccepted, Duel: d})
}

// HandleComplete marks the actor's side of an active duel complete
// POST /api/v1/duel/complete
func (h *DuelHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Complete duel"); err != nil {
		return
	}

	res, err := h.service.Complete(r.Context(), req.ActorID)
	if err != nil {
		respondServiceError(w, r, "Complete duel", err)
		return
	}

	msg := MsgWaitingForOpponent
	if res.Status == domain.CompletionFinished {
		msg = MsgDuelFinished
	}
	respondJSON(w, http.StatusOK, CompleteResponse{
		Message: msg,
		Status:  res.Status,
		Duel:    res.Duel,
		Outcome: res.Outcome,
	})
}

// HandleCancel withdraws or declines a pending duel
// POST /api/v1/duel/cancel
func (h *DuelHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Cancel duel"); err != nil {
		return
	}

	result, d, err := h.service.Cancel(r.Context(), req.ActorID)
	if err != nil {
		respondServiceError(w, r, "Cancel duel", err)
		return
	}

	respondJSON(w, http.StatusOK, CancelResponse{Result: result, Duel: d})
}

// HandleHistory lists the participant's finished duels, newest first
// GET /api/v1/duel/history?participant_id=&limit=
func (h *DuelHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	participantID, ok := GetQueryParam(r, w, QueryParamParticipantID)
	if !ok {
		return
	}
	limit, ok := GetLimitParam(r, w)
	if !ok {
		return
	}
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	entries := make([]HistoryEntry, 0, min(limit, DefaultHistoryLimit))
	for d, err := range h.service.History(r.Context(), participantID) {
		if err != nil {
			respondServiceError(w, r, "Duel history", err)
			return
		}
		entries = append(entries, historyEntry(&d, participantID))
		if len(entries) >= limit {
			break
		}
	}

	respondJSON(w, http.StatusOK, DataResponse{Data: entries})
}

func historyEntry(d *domain.Duel, viewer string) HistoryEntry {
	e := HistoryEntry{
		DuelID:     d.ID.String(),
		OpponentID: d.Opponent(viewer),
		Result:     d.ResultFor(viewer),
		Status:     d.Status,
		Rating:     d.Rating,
		Score:      d.ChallengerScore,
		Against:    d.ChallengeeScore,
	}
	if viewer == d.ChallengeeID {
		e.Score, e.Against = d.ChallengeeScore, d.ChallengerScore
	}
	if d.FinishedAt != nil {
		e.FinishedAt = d.FinishedAt.UTC().Format("2006-01-02 15:04:05")
	}
	return e
}
