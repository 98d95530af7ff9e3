package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/sse"
)

func newTestAdminHandler(resetSvc *MockResetService, pointsSvc *MockPointsService, hub *sse.Hub, now time.Time) *AdminHandler {
	h := NewAdminHandler(resetSvc, pointsSvc, hub)
	h.now = func() time.Time { return now }
	return h
}

func TestHandleReset(t *testing.T) {
	now := time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)

	t.Run("All communities with empty body", func(t *testing.T) {
		resetSvc := new(MockResetService)
		h := newTestAdminHandler(resetSvc, new(MockPointsService), nil, now)
		resetSvc.On("ResetAll", mock.Anything, now).Return([]domain.ResetResult{
			{CommunityID: testCommunity, Period: "2026-11", RecordsAffected: 4, StartingValue: 1500},
			{CommunityID: "100000000000000009", Period: "2026-11", Skipped: true},
		}, nil)

		w := httptest.NewRecorder()
		h.HandleReset(w, httptest.NewRequest(http.MethodPost, "/admin/reset", nil))

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[ResetResponse](t, w)
		require.Len(t, resp.Results, 2)
		assert.True(t, resp.Results[1].Skipped)
		resetSvc.AssertExpectations(t)
	})

	t.Run("Single community", func(t *testing.T) {
		resetSvc := new(MockResetService)
		h := newTestAdminHandler(resetSvc, new(MockPointsService), nil, now)
		resetSvc.On("ResetCommunity", mock.Anything, testCommunity, now).Return(&domain.ResetResult{
			CommunityID: testCommunity, Period: "2026-11", RecordsAffected: 2,
		}, nil)

		w := httptest.NewRecorder()
		h.HandleReset(w, postJSON(t, "/admin/reset", ResetRequest{CommunityID: testCommunity}))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(2), decodeBody[ResetResponse](t, w).Results[0].RecordsAffected)
	})

	t.Run("Already reset this period", func(t *testing.T) {
		resetSvc := new(MockResetService)
		h := newTestAdminHandler(resetSvc, new(MockPointsService), nil, now)
		resetSvc.On("ResetCommunity", mock.Anything, testCommunity, now).
			Return(nil, fmt.Errorf("community %s: %w", testCommunity, domain.ErrAlreadyReset))

		w := httptest.NewRecorder()
		h.HandleReset(w, postJSON(t, "/admin/reset", ResetRequest{CommunityID: testCommunity}))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, ErrMsgAlreadyResetError, decodeBody[ErrorResponse](t, w).Error)
	})
}

func TestHandleSetMasterChannel(t *testing.T) {
	pointsSvc := new(MockPointsService)
	h := newTestAdminHandler(new(MockResetService), pointsSvc, nil, time.Now())
	channel := "400000000000000004"
	pointsSvc.On("SetMasterChannel", mock.Anything, testCommunity, channel).Return(nil)

	w := httptest.NewRecorder()
	req := postJSON(t, "/admin/master-channel", MasterChannelRequest{CommunityID: testCommunity, ChannelID: channel})
	req.Method = http.MethodPut
	h.HandleSetMasterChannel(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MsgMasterChannelUpdated, decodeBody[SuccessResponse](t, w).Message)
	pointsSvc.AssertExpectations(t)

	w = httptest.NewRecorder()
	h.HandleSetMasterChannel(w, postJSON(t, "/admin/master-channel", MasterChannelRequest{CommunityID: testCommunity}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleBroadcast(t *testing.T) {
	hub := sse.NewHub()
	hub.Start()
	defer hub.Stop()
	client := hub.Register(nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h := newTestAdminHandler(new(MockResetService), new(MockPointsService), hub, time.Now())

	w := httptest.NewRecorder()
	h.HandleBroadcast(w, httptest.NewRequest(http.MethodPost, "/admin/sse/broadcast",
		bytes.NewBufferString(`{"type":"points.reset","payload":{"community_id":"1"}}`)))
	require.Equal(t, http.StatusOK, w.Code)

	select {
	case evt := <-client.EventChannel:
		assert.Equal(t, "points.reset", evt.Type)
	case <-time.After(time.Second):
		t.Fatal("broadcast not delivered")
	}

	w = httptest.NewRecorder()
	h.HandleBroadcast(w, httptest.NewRequest(http.MethodPost, "/admin/sse/broadcast", bytes.NewBufferString(`{"payload":{}}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrMsgEventTypeRequired, decodeBody[ErrorResponse](t, w).Error)
}
