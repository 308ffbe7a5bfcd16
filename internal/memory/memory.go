// Package memory keeps short-term conversation history per issue and user
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hellausefulsoftware/codescribe/internal/models"
)

// DefaultLimit is the number of exchanges retained per conversation
const DefaultLimit = 20

// Exchange is one user message and the bot's answer
type Exchange struct {
	Timestamp   time.Time
	UserMessage string
	BotResponse string
	// Context is the issue snapshot at the time of the message, nil when
	// the tracker could not be reached
	Context *models.IssueContext
}

// ContextSource supplies issue snapshots, normally the context cache
type ContextSource interface {
	Get(ctx context.Context, issueID string) *models.IssueContext
}

type key struct {
	issueID string
	userID  string
}

// Store owns every conversation log
type Store struct {
	source ContextSource
	limit  int
	now    func() time.Time

	mu   sync.Mutex
	logs map[key][]Exchange
}

// Option customizes a Store
type Option func(*Store)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store keeping at most limit exchanges per conversation
func New(source ContextSource, limit int, opts ...Option) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &Store{
		source: source,
		limit:  limit,
		now:    time.Now,
		logs:   make(map[key][]Exchange),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append records an exchange, evicting the oldest ones beyond the limit
func (s *Store) Append(ctx context.Context, issueID, userID, userMessage, botResponse string) {
	var snapshot *models.IssueContext
	if s.source != nil {
		snapshot = s.source.Get(ctx, issueID)
	}

	exchange := Exchange{
		Timestamp:   s.now(),
		UserMessage: userMessage,
		BotResponse: botResponse,
		Context:     snapshot,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{issueID: issueID, userID: userID}
	log := append(s.logs[k], exchange)
	if over := len(log) - s.limit; over > 0 {
		// fresh backing array; evicted exchanges must not stay reachable
		log = append([]Exchange(nil), log[over:]...)
	}
	s.logs[k] = log
}

// Recent returns up to k of the latest exchanges in chronological order
func (s *Store) Recent(issueID, userID string, k int) []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logs[key{issueID: issueID, userID: userID}]
	if k <= 0 || len(log) == 0 {
		return nil
	}
	if k > len(log) {
		k = len(log)
	}

	out := make([]Exchange, k)
	copy(out, log[len(log)-k:])
	return out
}

// Len returns the length of a conversation log
func (s *Store) Len(issueID, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs[key{issueID: issueID, userID: userID}])
}
