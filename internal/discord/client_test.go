package discord

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/handler"
	"github.com/osse101/DuelBot_Go/internal/points"
)

func TestAPIClient_Challenge(t *testing.T) {
	tc := SetupTestContext(t)

	var got handler.ChallengeRequest
	tc.Mux.HandleFunc("POST /api/v1/duel/challenge", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		WriteJSON(w, http.StatusCreated, handler.DuelResponse{
			Message: handler.MsgChallengeIssued,
			Duel: &domain.Duel{
				ID:           uuid.New(),
				ChallengerID: got.ChallengerID,
				ChallengeeID: got.ChallengeeID,
				Status:       domain.DuelStatusPending,
				Rating:       1200,
				Problems:     []string{"A", "B"},
			},
		})
	})

	rating := 1200
	d, err := tc.APIClient.Challenge(testGuild, testUser, testOpponent, &rating)
	require.NoError(t, err)

	assert.Equal(t, testGuild, got.CommunityID)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 1200, *got.Rating)
	assert.Equal(t, domain.DuelStatusPending, d.Status)
	assert.Equal(t, []string{"A", "B"}, d.Problems)
}

func TestAPIClient_ErrorResponse(t *testing.T) {
	tc := SetupTestContext(t)

	tc.Mux.HandleFunc("POST /api/v1/duel/accept", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, handler.ErrorResponse{Error: handler.ErrMsgNoPendingChallengeError})
	})

	_, err := tc.APIClient.Accept(testGuild, testUser)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, handler.ErrMsgNoPendingChallengeError, apiErr.Message)
	assert.True(t, IsAPIStatus(err, http.StatusNotFound))
	assert.Equal(t, "❌ "+handler.ErrMsgNoPendingChallengeError, formatFriendlyError(err))
}

func TestAPIClient_RetriesServerErrors(t *testing.T) {
	tc := SetupTestContext(t)

	var attempts atomic.Int32
	tc.Mux.HandleFunc("POST /api/v1/duel/complete", func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			WriteJSON(w, http.StatusServiceUnavailable, handler.ErrorResponse{Error: handler.ErrMsgJudgeUnavailableError})
			return
		}
		WriteJSON(w, http.StatusOK, handler.CompleteResponse{Status: domain.CompletionWaiting})
	})

	res, err := tc.APIClient.Complete(testGuild, testUser)
	require.NoError(t, err)
	assert.Equal(t, domain.CompletionWaiting, res.Status)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestAPIClient_RetriesExhausted(t *testing.T) {
	tc := SetupTestContext(t)

	tc.Mux.HandleFunc("POST /api/v1/duel/complete", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusServiceUnavailable, handler.ErrorResponse{Error: handler.ErrMsgJudgeUnavailableError})
	})

	_, err := tc.APIClient.Complete(testGuild, testUser)
	require.Error(t, err)
	assert.True(t, IsAPIStatus(err, http.StatusServiceUnavailable))
	assert.Equal(t, MsgJudgeDown, formatFriendlyError(err))
}

func TestAPIClient_HistoryQuery(t *testing.T) {
	tc := SetupTestContext(t)

	tc.Mux.HandleFunc("GET /api/v1/duel/history", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testUser, r.URL.Query().Get("participant_id"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		WriteJSON(w, http.StatusOK, handler.DataResponse{Data: []handler.HistoryEntry{
			{DuelID: "d1", OpponentID: testOpponent, Result: domain.DuelResultWon, Status: domain.DuelStatusComplete},
		}})
	})

	entries, err := tc.APIClient.History(testUser, 20)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.DuelResultWon, entries[0].Result)
}

func TestAPIClient_Balance(t *testing.T) {
	tc := SetupTestContext(t)

	tc.Mux.HandleFunc("GET /api/v1/points", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testGuild, r.URL.Query().Get("community_id"))
		WriteJSON(w, http.StatusOK, points.BalanceView{
			Balance: domain.Balance{CommunityID: testGuild, ParticipantID: testUser, Total: 1550},
			Rank:    domain.RankFor(1550),
		})
	})

	view, err := tc.APIClient.Balance(testGuild, testUser)
	require.NoError(t, err)
	assert.Equal(t, int64(1550), view.Total)
	assert.Equal(t, "Expert", view.Rank.Title)
}

func TestAPIClient_ResetAndMasterChannel(t *testing.T) {
	tc := SetupTestContext(t)

	tc.Mux.HandleFunc("PUT /api/v1/admin/master-channel", func(w http.ResponseWriter, r *http.Request) {
		var req handler.MasterChannelRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, testChannel, req.ChannelID)
		WriteJSON(w, http.StatusOK, handler.SuccessResponse{Message: handler.MsgMasterChannelUpdated})
	})
	tc.Mux.HandleFunc("POST /api/v1/admin/reset", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, handler.ResetResponse{Results: []domain.ResetResult{{CommunityID: testGuild, Period: "2026-10"}}})
	})

	require.NoError(t, tc.APIClient.SetMasterChannel(testGuild, testChannel))

	results, err := tc.APIClient.Reset(testGuild)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2026-10", results[0].Period)
}

func TestFormatFriendlyError_Unreachable(t *testing.T) {
	tc := SetupTestContext(t)
	tc.Server.Close()

	err := tc.APIClient.Ping()
	require.Error(t, err)
	assert.Equal(t, MsgAPIUnreachable, formatFriendlyError(err))
	assert.Equal(t, MsgGenericError, formatFriendlyError(nil))
}
