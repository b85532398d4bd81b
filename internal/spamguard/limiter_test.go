package spamguard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardMinuteThrottle(t *testing.T) {
	g := NewGuard(Config{PerMinute: 10, PerHour: 100, BlockDuration: time.Hour})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("accepts up to the per-minute limit", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			allowed, reason := g.checkAt("alice", base.Add(time.Duration(i)*time.Second))
			require.True(t, allowed, "event %d", i)
			require.Empty(t, reason)
		}
	})

	t.Run("rejects the eleventh event in the window", func(t *testing.T) {
		allowed, reason := g.checkAt("alice", base.Add(11*time.Second))
		assert.False(t, allowed)
		assert.Equal(t, ReasonThrottled, reason)
	})

	t.Run("rejected events are not recorded", func(t *testing.T) {
		// Hammering while throttled must not extend the window.
		for i := 0; i < 50; i++ {
			allowed, _ := g.checkAt("alice", base.Add(12*time.Second))
			assert.False(t, allowed)
		}
		// One minute after the first event, it slides out of the window
		// and exactly one slot frees up.
		allowed, _ := g.checkAt("alice", base.Add(61*time.Second))
		assert.True(t, allowed)
		allowed, reason := g.checkAt("alice", base.Add(61*time.Second))
		assert.False(t, allowed)
		assert.Equal(t, ReasonThrottled, reason)
	})
}

func TestGuardHourlyBlock(t *testing.T) {
	g := NewGuard(Config{PerMinute: 10, PerHour: 100, BlockDuration: time.Hour})
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	// Spread 100 accepted events across the hour so the minute limit never
	// trips first.
	for i := 0; i < 100; i++ {
		allowed, reason := g.checkAt("bob", base.Add(time.Duration(i)*30*time.Second))
		require.True(t, allowed, "event %d: %s", i, reason)
	}

	at := base.Add(100 * 30 * time.Second)

	t.Run("101st event trips the hourly limit", func(t *testing.T) {
		allowed, reason := g.checkAt("bob", at)
		assert.False(t, allowed)
		assert.Equal(t, ReasonHourlyLimit, reason)
		assert.True(t, g.isBlockedAt("bob", at))
	})

	t.Run("subsequent events report the block", func(t *testing.T) {
		allowed, reason := g.checkAt("bob", at.Add(time.Minute))
		assert.False(t, allowed)
		assert.Equal(t, ReasonTempBlocked, reason)
	})

	t.Run("block is a fixed deadline, not cumulative", func(t *testing.T) {
		// Rejections during the block must not push the deadline out.
		for i := 0; i < 20; i++ {
			g.checkAt("bob", at.Add(time.Duration(i)*time.Minute))
		}
		after := at.Add(time.Hour + time.Second)
		assert.False(t, g.isBlockedAt("bob", after))
		allowed, _ := g.checkAt("bob", after)
		assert.True(t, allowed)
	})
}

func TestGuardIndependentUsers(t *testing.T) {
	g := NewGuard(Config{PerMinute: 2, PerHour: 100, BlockDuration: time.Hour})
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		allowed, _ := g.checkAt("carol", now)
		require.True(t, allowed)
	}
	allowed, _ := g.checkAt("carol", now)
	require.False(t, allowed)

	// Another user is untouched by carol's throttle.
	allowed, _ = g.checkAt("dave", now)
	assert.True(t, allowed)
}

func TestGuardReset(t *testing.T) {
	g := NewGuard(Config{PerMinute: 10, PerHour: 10, BlockDuration: time.Hour})
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		g.checkAt("erin", now.Add(time.Duration(i)*time.Second))
	}
	allowed, reason := g.checkAt("erin", now.Add(11*time.Second))
	require.False(t, allowed)
	require.Equal(t, ReasonHourlyLimit, reason)

	g.Reset("erin")

	assert.False(t, g.isBlockedAt("erin", now.Add(12*time.Second)))
	allowed, _ = g.checkAt("erin", now.Add(12*time.Second))
	assert.True(t, allowed)
}

func TestGuardZeroConfigDefaults(t *testing.T) {
	g := NewGuard(Config{})
	assert.Equal(t, 10, g.cfg.PerMinute)
	assert.Equal(t, 100, g.cfg.PerHour)
	assert.Equal(t, time.Hour, g.cfg.BlockDuration)
}

func TestGuardIsBlockedUnknownUser(t *testing.T) {
	g := NewGuard(DefaultConfig())
	assert.False(t, g.IsBlocked("nobody"))
}
