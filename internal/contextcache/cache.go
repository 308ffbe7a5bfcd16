// Package contextcache memoizes tracker issue snapshots for a fixed TTL.
//
// Entries are evicted lazily: an expired entry is dropped on the next Get for
// its issue and refetched. There is no capacity bound; the working set of an
// interactive bot is the handful of issues people are talking about.
package contextcache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"github.com/hellausefulsoftware/codescribe/internal/common/tracker"
	"github.com/hellausefulsoftware/codescribe/internal/logging"
	"github.com/hellausefulsoftware/codescribe/internal/models"
)

// DefaultTTL is how long a snapshot serves reads
const DefaultTTL = 5 * time.Minute

// Fetcher loads an issue from the tracker
type Fetcher interface {
	FetchIssue(ctx context.Context, issueID string) (*tracker.Issue, error)
}

type entry struct {
	snapshot   models.IssueContext
	capturedAt time.Time
}

// Cache is a process-local TTL cache of issue contexts
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time

	items *ttlcache.Cache[string, entry]
	group singleflight.Group
}

// Option customizes a Cache
type Option func(*Cache)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache backed by fetcher. The expiry loop is never started;
// stale items are dropped when read.
func New(fetcher Fetcher, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		items: ttlcache.New[string, entry](
			ttlcache.WithTTL[string, entry](ttl),
			ttlcache.WithDisableTouchOnHit[string, entry](),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the snapshot for issueID, fetching it when absent or expired.
// Fetch failures are logged and reported as nil.
func (c *Cache) Get(ctx context.Context, issueID string) *models.IssueContext {
	item := c.items.Get(issueID, c.loader(ctx))
	if item != nil && c.expired(item.Value()) {
		c.items.Delete(issueID)
		item = c.items.Get(issueID, c.loader(ctx))
	}
	if item == nil {
		return nil
	}

	snapshot := item.Value().snapshot
	return &snapshot
}

// loader fetches on a miss. Concurrent misses for one issue share a fetch and
// a failed fetch leaves nothing behind.
func (c *Cache) loader(ctx context.Context) ttlcache.Option[string, entry] {
	fetch := ttlcache.LoaderFunc[string, entry](
		func(items *ttlcache.Cache[string, entry], issueID string) *ttlcache.Item[string, entry] {
			issue, err := c.fetcher.FetchIssue(ctx, issueID)
			if err != nil {
				logging.Warn("Failed to fetch issue context", "issue_id", issueID, "error", err)
				return nil
			}

			logging.Debug("Cached issue context", "issue_id", issueID)
			return items.Set(issueID, entry{snapshot: issue.Context(), capturedAt: c.now()}, ttlcache.DefaultTTL)
		},
	)
	return ttlcache.WithLoader[string, entry](ttlcache.NewSuppressedLoader[string, entry](fetch, &c.group))
}

func (c *Cache) expired(e entry) bool {
	return c.now().Sub(e.capturedAt) >= c.ttl
}

// Len returns the number of stored entries, expired ones included
func (c *Cache) Len() int {
	return c.items.Len()
}
