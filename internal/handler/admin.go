package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/logger"
	"github.com/osse101/DuelBot_Go/internal/points"
	"github.com/osse101/DuelBot_Go/internal/reset"
	"github.com/osse101/DuelBot_Go/internal/sse"
)

// AdminHandler serves operator endpoints
type AdminHandler struct {
	resetSvc  reset.Service
	pointsSvc points.Service
	sseHub    *sse.Hub
	now       func() time.Time
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(resetSvc reset.Service, pointsSvc points.Service, sseHub *sse.Hub) *AdminHandler {
	return &AdminHandler{
		resetSvc:  resetSvc,
		pointsSvc: pointsSvc,
		sseHub:    sseHub,
		now:       time.Now,
	}
}

// ResetRequest optionally narrows a reset to one community
type ResetRequest struct {
	CommunityID string `json:"community_id,omitempty" validate:"omitempty,snowflake"`
}

// ResetResponse lists what the reset did per community
type ResetResponse struct {
	Message string               `json:"message"`
	Results []domain.ResetResult `json:"results"`
}

// MasterChannelRequest sets the notification channel for a community
type MasterChannelRequest struct {
	CommunityID string `json:"community_id" validate:"required,snowflake"`
	ChannelID   string `json:"channel_id" validate:"required,snowflake"`
}

// BroadcastRequest represents a manual SSE broadcast
type BroadcastRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// HandleReset runs the monthly reset for the current period.
// Still gated by the per-period marker, so a second call is a no-op.
// POST /api/v1/admin/reset
func (h *AdminHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if r.ContentLength != 0 {
		if err := DecodeAndValidateRequest(r, w, &req, "Reset points"); err != nil {
			return
		}
	}
	log := logger.FromContext(r.Context())
	now := h.now()

	if req.CommunityID != "" {
		res, err := h.resetSvc.ResetCommunity(r.Context(), req.CommunityID, now)
		if err != nil {
			respondServiceError(w, r, "Reset points", err)
			return
		}
		log.Info("Manual reset completed", "community_id", req.CommunityID, "period", res.Period)
		respondJSON(w, http.StatusOK, ResetResponse{Message: MsgResetCompleted, Results: []domain.ResetResult{*res}})
		return
	}

	results, err := h.resetSvc.ResetAll(r.Context(), now)
	if err != nil {
		respondServiceError(w, r, "Reset points", err)
		return
	}
	log.Info("Manual reset completed", "communities", len(results))
	respondJSON(w, http.StatusOK, ResetResponse{Message: MsgResetCompleted, Results: results})
}

// HandleSetMasterChannel routes a community's notifications to a channel
// PUT /api/v1/admin/master-channel
func (h *AdminHandler) HandleSetMasterChannel(w http.ResponseWriter, r *http.Request) {
	var req MasterChannelRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Set master channel"); err != nil {
		return
	}

	if err := h.pointsSvc.SetMasterChannel(r.Context(), req.CommunityID, req.ChannelID); err != nil {
		respondServiceError(w, r, "Set master channel", err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgMasterChannelUpdated})
}

// HandleBroadcast pushes a manual event to all SSE clients
// POST /api/v1/admin/sse/broadcast
func (h *AdminHandler) HandleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req BroadcastRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Broadcast SSE"); err != nil {
		return
	}

	if req.Type == "" {
		respondError(w, http.StatusBadRequest, ErrMsgEventTypeRequired)
		return
	}

	var payload interface{}
	if len(req.Payload) > 0 {
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidPayload)
			return
		}
	}

	h.sseHub.Broadcast(req.Type, payload)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": MsgEventBroadcast,
		"type":    req.Type,
	})
}
