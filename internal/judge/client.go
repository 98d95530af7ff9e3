package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/logger"
	"github.com/osse101/DuelBot_Go/internal/metrics"
)

// ErrRejected means the judge answered but refused the request, usually
// because a handle does not exist. It is not an availability problem.
var ErrRejected = errors.New(ErrMsgRejected)

// Client is the read-only view of the external judge
type Client interface {
	// UserSubmissions returns the handle's most recent count submissions, newest
	// first. A count of zero or less returns the full history.
	UserSubmissions(ctx context.Context, handle string, count int) ([]domain.Submission, error)
	// UserRating returns the handle's current rating, zero if unrated
	UserRating(ctx context.Context, handle string) (int, error)
	// Problems returns the full problem catalog
	Problems(ctx context.Context) ([]domain.Problem, error)
}

// HTTPClient talks to the judge's public JSON API
type HTTPClient struct {
	BaseURL    string
	Client     *http.Client
	MaxRetries int
	RetryDelay time.Duration
}

// NewHTTPClient creates a judge client for baseURL
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		BaseURL:    baseURL,
		Client:     &http.Client{Timeout: timeout},
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
	}
}

type envelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

type apiProblem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    int      `json:"rating"`
	Tags      []string `json:"tags"`
}

type apiSubmission struct {
	ID                  int64      `json:"id"`
	ContestID           int        `json:"contestId"`
	CreationTimeSeconds int64      `json:"creationTimeSeconds"`
	Problem             apiProblem `json:"problem"`
	Verdict             string     `json:"verdict"`
}

type apiUser struct {
	Handle string `json:"handle"`
	Rating int    `json:"rating"`
}

func (s apiSubmission) toDomain() domain.Submission {
	contestID := s.Problem.ContestID
	if contestID == 0 {
		contestID = s.ContestID
	}
	return domain.Submission{
		ID:            s.ID,
		ContestID:     contestID,
		ProblemIndex:  s.Problem.Index,
		ProblemName:   s.Problem.Name,
		ProblemRating: s.Problem.Rating,
		Verdict:       domain.Verdict(s.Verdict),
		CreatedAt:     time.Unix(s.CreationTimeSeconds, 0).UTC(),
	}
}

// UserSubmissions implements Client
func (c *HTTPClient) UserSubmissions(ctx context.Context, handle string, count int) ([]domain.Submission, error) {
	params := url.Values{}
	params.Set("handle", handle)
	if count > 0 {
		params.Set("from", "1")
		params.Set("count", strconv.Itoa(count))
	}

	var raw []apiSubmission
	if err := c.call(ctx, methodUserStatus, params, &raw); err != nil {
		return nil, err
	}

	subs := make([]domain.Submission, 0, len(raw))
	for _, s := range raw {
		subs = append(subs, s.toDomain())
	}
	return subs, nil
}

// UserRating implements Client
func (c *HTTPClient) UserRating(ctx context.Context, handle string) (int, error) {
	params := url.Values{}
	params.Set("handles", handle)

	var users []apiUser
	if err := c.call(ctx, methodUserInfo, params, &users); err != nil {
		return 0, err
	}
	if len(users) == 0 {
		return 0, fmt.Errorf("%w: %s %q", domain.ErrJudgeUnavailable, ErrMsgUnknownHandle, handle)
	}
	return users[0].Rating, nil
}

// Problems implements Client
func (c *HTTPClient) Problems(ctx context.Context) ([]domain.Problem, error) {
	var result struct {
		Problems []apiProblem `json:"problems"`
	}
	if err := c.call(ctx, methodProblems, nil, &result); err != nil {
		return nil, err
	}

	problems := make([]domain.Problem, 0, len(result.Problems))
	for _, p := range result.Problems {
		problems = append(problems, domain.Problem{
			ContestID: p.ContestID,
			Index:     p.Index,
			Name:      p.Name,
			Rating:    p.Rating,
			Tags:      p.Tags,
		})
	}
	return problems, nil
}

// call performs one API method with retry and decodes its result into out.
// Every failure except ErrRejected wraps domain.ErrJudgeUnavailable.
func (c *HTTPClient) call(ctx context.Context, method string, params url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/%s", c.BaseURL, method)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			jitter := time.Duration(rand.IntN(100)) * time.Millisecond
			delay := c.RetryDelay*time.Duration(1<<uint(attempt-1)) + jitter
			log.Info("Retrying judge request", "attempt", attempt, "method", method, "delay", delay)
			select {
			case <-ctx.Done():
				metrics.JudgeAPIErrors.WithLabelValues(method).Inc()
				return fmt.Errorf("%w: %w", domain.ErrJudgeUnavailable, ctx.Err())
			case <-time.After(delay):
			}
		}

		retry, err := c.do(ctx, endpoint, out)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrRejected) {
			return fmt.Errorf("%s: %w", method, err)
		}
		lastErr = err
		if !retry {
			break
		}
		log.Warn("Judge request failed", "error", err, "method", method, "attempt", attempt)
	}

	metrics.JudgeAPIErrors.WithLabelValues(method).Inc()
	return fmt.Errorf("%w: %s: %w", domain.ErrJudgeUnavailable, method, lastErr)
}

// do reports whether a failure is worth retrying
func (c *HTTPClient) do(ctx context.Context, endpoint string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgBuildRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("%s: %w", ErrMsgRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return true, fmt.Errorf("%s: %d", ErrMsgUnexpectedState, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgDecodeFailed, err)
	}

	switch env.Status {
	case statusOK:
	case statusFailed:
		return false, fmt.Errorf("%w: %s", ErrRejected, env.Comment)
	default:
		return false, fmt.Errorf("%s: %q", ErrMsgUnexpectedState, env.Status)
	}

	if err := json.Unmarshal(env.Result, out); err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgDecodeFailed, err)
	}
	return false, nil
}

var _ Client = (*HTTPClient)(nil)
