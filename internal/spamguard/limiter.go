// Package spamguard gates outbound user events: a per-user sliding-window
// rate limiter and a heuristic content classifier.
package spamguard

import (
	"hash/fnv"
	"sync"
	"time"
)

// Rejection reasons returned to the client.
const (
	ReasonTempBlocked = "You are temporarily blocked due to spam. Try again later."
	ReasonHourlyLimit = "You've exceeded the hourly message limit. Try again later."
	ReasonThrottled   = "You're sending messages too quickly. Please slow down."
)

const shardCount = 32

// Config holds rate limiter thresholds.
type Config struct {
	PerMinute     int
	PerHour       int
	BlockDuration time.Duration
}

// DefaultConfig matches the original deployment thresholds.
func DefaultConfig() Config {
	return Config{
		PerMinute:     10,
		PerHour:       100,
		BlockDuration: time.Hour,
	}
}

type userWindow struct {
	// Insertion-ordered event timestamps within the trailing hour.
	events       []time.Time
	blockedUntil time.Time
}

type shard struct {
	mu    sync.Mutex
	users map[string]*userWindow
}

// Guard is a sliding-window rate limiter keyed by user id. State is sharded
// so checks for unrelated users never contend on one lock.
type Guard struct {
	cfg    Config
	shards [shardCount]shard
}

// NewGuard creates a Guard. Zero thresholds fall back to defaults.
func NewGuard(cfg Config) *Guard {
	def := DefaultConfig()
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = def.PerMinute
	}
	if cfg.PerHour <= 0 {
		cfg.PerHour = def.PerHour
	}
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = def.BlockDuration
	}

	g := &Guard{cfg: cfg}
	for i := range g.shards {
		g.shards[i].users = make(map[string]*userWindow)
	}
	return g
}

// Check reports whether the user may emit an event now. On the accept path
// the event is recorded; rejected events are never recorded.
func (g *Guard) Check(userID string) (allowed bool, reason string) {
	return g.checkAt(userID, time.Now())
}

func (g *Guard) checkAt(userID string, now time.Time) (bool, string) {
	sh := g.shard(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	w, ok := sh.users[userID]
	if !ok {
		w = &userWindow{}
		sh.users[userID] = w
	}

	// An active block short-circuits before any window work; expired blocks
	// are evicted lazily here.
	if !w.blockedUntil.IsZero() {
		if now.Before(w.blockedUntil) {
			return false, ReasonTempBlocked
		}
		w.blockedUntil = time.Time{}
	}

	// Prune everything older than the hour window.
	hourCutoff := now.Add(-time.Hour)
	kept := w.events[:0]
	for _, ts := range w.events {
		if ts.After(hourCutoff) {
			kept = append(kept, ts)
		}
	}
	w.events = kept

	if len(w.events) >= g.cfg.PerHour {
		// Single blocked-until timestamp, not cumulative.
		w.blockedUntil = now.Add(g.cfg.BlockDuration)
		return false, ReasonHourlyLimit
	}

	minuteCutoff := now.Add(-time.Minute)
	inMinute := 0
	for _, ts := range w.events {
		if ts.After(minuteCutoff) {
			inMinute++
		}
	}
	if inMinute >= g.cfg.PerMinute {
		return false, ReasonThrottled
	}

	w.events = append(w.events, now)
	return true, ""
}

// IsBlocked reports whether the user is currently in the temporary block
// state, evicting the block record if it has expired.
func (g *Guard) IsBlocked(userID string) bool {
	return g.isBlockedAt(userID, time.Now())
}

func (g *Guard) isBlockedAt(userID string, now time.Time) bool {
	sh := g.shard(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	w, ok := sh.users[userID]
	if !ok || w.blockedUntil.IsZero() {
		return false
	}
	if now.Before(w.blockedUntil) {
		return true
	}
	w.blockedUntil = time.Time{}
	return false
}

// Reset clears all rate state for a user (admin action).
func (g *Guard) Reset(userID string) {
	sh := g.shard(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.users, userID)
}

func (g *Guard) shard(userID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &g.shards[h.Sum32()%shardCount]
}
