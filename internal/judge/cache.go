package judge

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/osse101/DuelBot_Go/internal/domain"
)

const catalogKey = "catalog"

// CachedClient wraps a Client, caching the problem catalog and participant
// ratings. Submissions are always fetched fresh.
type CachedClient struct {
	next    Client
	catalog *expirable.LRU[string, []domain.Problem]
	ratings *expirable.LRU[string, int]
	group   singleflight.Group
}

// NewCachedClient creates a caching client in front of next
func NewCachedClient(next Client, catalogTTL, ratingTTL time.Duration, ratingSize int) *CachedClient {
	return &CachedClient{
		next:    next,
		catalog: expirable.NewLRU[string, []domain.Problem](1, nil, catalogTTL),
		ratings: expirable.NewLRU[string, int](ratingSize, nil, ratingTTL),
	}
}

// UserSubmissions passes through to the wrapped client
func (c *CachedClient) UserSubmissions(ctx context.Context, handle string, count int) ([]domain.Submission, error) {
	return c.next.UserSubmissions(ctx, handle, count)
}

// UserRating returns a cached rating when one is fresh
func (c *CachedClient) UserRating(ctx context.Context, handle string) (int, error) {
	key := strings.ToLower(handle)
	if rating, ok := c.ratings.Get(key); ok {
		return rating, nil
	}

	v, err, _ := c.group.Do("rating:"+key, func() (any, error) {
		if rating, ok := c.ratings.Get(key); ok {
			return rating, nil
		}
		rating, err := c.next.UserRating(ctx, handle)
		if err != nil {
			return 0, err
		}
		c.ratings.Add(key, rating)
		return rating, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// Problems returns the cached catalog, loading it once across concurrent callers
func (c *CachedClient) Problems(ctx context.Context) ([]domain.Problem, error) {
	if problems, ok := c.catalog.Get(catalogKey); ok {
		return problems, nil
	}

	v, err, _ := c.group.Do(catalogKey, func() (any, error) {
		if problems, ok := c.catalog.Get(catalogKey); ok {
			return problems, nil
		}
		problems, err := c.next.Problems(ctx)
		if err != nil {
			return nil, err
		}
		c.catalog.Add(catalogKey, problems)
		return problems, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Problem), nil
}

// Invalidate drops everything cached
func (c *CachedClient) Invalidate() {
	c.catalog.Purge()
	c.ratings.Purge()
}

var _ Client = (*CachedClient)(nil)
