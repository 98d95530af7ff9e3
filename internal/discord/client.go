package discord

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/handler"
	"github.com/osse101/DuelBot_Go/internal/points"
)

// Retry policy for calls to the API
const (
	apiMaxRetries    = 3
	apiRetryDelay    = 500 * time.Millisecond
	apiClientTimeout = 15 * time.Second
)

// APIError is a non-2xx answer from the API. Message is already user-facing.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s", e.Message)
}

// IsAPIStatus reports whether err is an APIError with the given status
func IsAPIStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// APIClient handles communication with the DuelBot API
type APIClient struct {
	BaseURL string
	Client  *http.Client
	APIKey  string
	// retryDelay is shortened in tests
	retryDelay time.Duration
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, apiKey string) *APIClient {
	return &APIClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: apiClientTimeout,
		},
		APIKey:     apiKey,
		retryDelay: apiRetryDelay,
	}
}

// doRequest performs an HTTP request with retry logic. Only transport errors
// and 5xx answers are retried.
func (c *APIClient) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var reqBody []byte
	var err error

	if body != nil {
		reqBody, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
	}

	target := c.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= apiMaxRetries; attempt++ {
		if attempt > 0 {
			jitter := time.Duration(time.Now().UnixNano()%100) * time.Millisecond
			delay := c.retryDelay*time.Duration(1<<uint(attempt-1)) + jitter
			time.Sleep(delay)
			slog.Info("Retrying API request", "attempt", attempt, "path", path, "delay", delay)
		}

		req, err := http.NewRequest(method, target, bytes.NewReader(reqBody))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		if c.APIKey != "" {
			req.Header.Set("X-API-Key", c.APIKey)
		}

		resp, err := c.Client.Do(req)
		if err != nil {
			lastErr = err
			slog.Warn("API request failed", "error", err, "attempt", attempt)
			continue
		}

		if resp.StatusCode < 500 {
			return resp, nil
		}

		// 503 carries a user-facing message worth showing if retries run out
		lastErr = readAPIError(resp)
		resp.Body.Close()
		slog.Warn("Server error, will retry", "status", resp.StatusCode, "attempt", attempt)
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// call performs the request and decodes a 2xx body into out (when non-nil)
func (c *APIClient) call(method, path string, body, out interface{}) error {
	resp, err := c.doRequest(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	var errResp handler.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
		return &APIError{Status: resp.StatusCode, Message: errResp.Error}
	}
	return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("API returned status: %d", resp.StatusCode)}
}

// Challenge issues a duel challenge. A nil rating lets the API pick one.
func (c *APIClient) Challenge(communityID, challengerID, challengeeID string, rating *int) (*domain.Duel, error) {
	var resp handler.DuelResponse
	err := c.call(http.MethodPost, "/api/v1/duel/challenge", handler.ChallengeRequest{
		CommunityID:  communityID,
		ChallengerID: challengerID,
		ChallengeeID: challengeeID,
		Rating:       rating,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Duel, nil
}

// Accept starts the pending challenge addressed to actorID
func (c *APIClient) Accept(communityID, actorID string) (*domain.Duel, error) {
	var resp handler.DuelResponse
	err := c.call(http.MethodPost, "/api/v1/duel/accept", handler.ActorRequest{
		CommunityID: communityID,
		ActorID:     actorID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Duel, nil
}

// Complete marks the actor's side of their active duel finished
func (c *APIClient) Complete(communityID, actorID string) (*handler.CompleteResponse, error) {
	var resp handler.CompleteResponse
	err := c.call(http.MethodPost, "/api/v1/duel/complete", handler.ActorRequest{
		CommunityID: communityID,
		ActorID:     actorID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel withdraws or declines the actor's pending challenge
func (c *APIClient) Cancel(communityID, actorID string) (*handler.CancelResponse, error) {
	var resp handler.CancelResponse
	err := c.call(http.MethodPost, "/api/v1/duel/cancel", handler.ActorRequest{
		CommunityID: communityID,
		ActorID:     actorID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// History returns up to limit finished duels for participantID, newest first
func (c *APIClient) History(participantID string, limit int) ([]handler.HistoryEntry, error) {
	q := url.Values{}
	q.Set("participant_id", participantID)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp struct {
		Data []handler.HistoryEntry `json:"data"`
	}
	if err := c.call(http.MethodGet, "/api/v1/duel/history?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Balance returns the participant's points and rank in the community
func (c *APIClient) Balance(communityID, participantID string) (*points.BalanceView, error) {
	q := url.Values{}
	q.Set("community_id", communityID)
	q.Set("participant_id", participantID)

	var view points.BalanceView
	if err := c.call(http.MethodGet, "/api/v1/points?"+q.Encode(), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Standings returns the community leaderboard
func (c *APIClient) Standings(communityID string, limit int) ([]domain.Standing, error) {
	q := url.Values{}
	q.Set("community_id", communityID)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp handler.StandingsResponse
	if err := c.call(http.MethodGet, "/api/v1/standings?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Standings, nil
}

// LinkHandle associates a member with a Codeforces handle
func (c *APIClient) LinkHandle(communityID, participantID, cfHandle string) (*domain.Handle, error) {
	var resp struct {
		Data domain.Handle `json:"data"`
	}
	err := c.call(http.MethodPost, "/api/v1/handles", handler.LinkHandleRequest{
		CommunityID:   communityID,
		ParticipantID: participantID,
		Handle:        cfHandle,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// SetMasterChannel routes the community's notifications to channelID
func (c *APIClient) SetMasterChannel(communityID, channelID string) error {
	return c.call(http.MethodPut, "/api/v1/admin/master-channel", handler.MasterChannelRequest{
		CommunityID: communityID,
		ChannelID:   channelID,
	}, nil)
}

// Reset runs the monthly reset for one community
func (c *APIClient) Reset(communityID string) ([]domain.ResetResult, error) {
	var resp handler.ResetResponse
	err := c.call(http.MethodPost, "/api/v1/admin/reset", handler.ResetRequest{CommunityID: communityID}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Ping checks that the API answers its liveness probe
func (c *APIClient) Ping() error {
	resp, err := c.Client.Get(c.BaseURL + "/healthz")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Message: "health check failed"}
	}
	return nil
}
