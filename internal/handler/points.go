package handler

import (
	"net/http"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/points"
)

type PointsHandler struct {
	service points.Service
}

func NewPointsHandler(service points.Service) *PointsHandler {
	return &PointsHandler{service: service}
}

// LinkHandleRequest links a member to a Codeforces handle
type LinkHandleRequest struct {
	CommunityID   string `json:"community_id" validate:"required,snowflake"`
	ParticipantID string `json:"participant_id" validate:"required,snowflake"`
	Handle        string `json:"handle" validate:"required,handle"`
}

// StandingsResponse is a community leaderboard
type StandingsResponse struct {
	CommunityID string            `json:"community_id"`
	Standings   []domain.Standing `json:"standings"`
}

// HandleBalance returns one participant's points and rank
// GET /api/v1/points?community_id=&participant_id=
func (h *PointsHandler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	communityID, ok := GetQueryParam(r, w, QueryParamCommunityID)
	if !ok {
		return
	}
	participantID, ok := GetQueryParam(r, w, QueryParamParticipantID)
	if !ok {
		return
	}

	view, err := h.service.Balance(r.Context(), communityID, participantID)
	if err != nil {
		respondServiceError(w, r, "Get balance", err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// HandleStandings returns the leaderboard
// GET /api/v1/standings?community_id=&limit=
func (h *PointsHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	communityID, ok := GetQueryParam(r, w, QueryParamCommunityID)
	if !ok {
		return
	}
	limit, ok := GetLimitParam(r, w)
	if !ok {
		return
	}

	standings, err := h.service.Standings(r.Context(), communityID, limit)
	if err != nil {
		respondServiceError(w, r, "Get standings", err)
		return
	}
	if standings == nil {
		standings = []domain.Standing{}
	}

	respondJSON(w, http.StatusOK, StandingsResponse{CommunityID: communityID, Standings: standings})
}

// HandleLinkHandle verifies and stores a member's judge handle
// POST /api/v1/handles
func (h *PointsHandler) HandleLinkHandle(w http.ResponseWriter, r *http.Request) {
	var req LinkHandleRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Link handle"); err != nil {
		return
	}

	linked, err := h.service.LinkHandle(r.Context(), req.CommunityID, req.ParticipantID, req.Handle)
	if err != nil {
		respondServiceError(w, r, "Link handle", err)
		return
	}

	respondJSON(w, http.StatusOK, DataResponse{Message: MsgHandleLinked, Data: linked})
}
