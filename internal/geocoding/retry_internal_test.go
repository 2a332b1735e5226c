package geocoding

import (
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
)

func drain(b backoff.BackOff) []time.Duration {
	var pauses []time.Duration
	for pause := b.NextBackOff(); pause != backoff.Stop; pause = b.NextBackOff() {
		pauses = append(pauses, pause)
	}
	return pauses
}

func TestRetryPolicy_Schedule(t *testing.T) {
	t.Run("default policy", func(t *testing.T) {
		got := drain(DefaultRetryPolicy().schedule())

		assert.Equal(t, []time.Duration{
			400 * time.Millisecond,
			800 * time.Millisecond,
			1600 * time.Millisecond,
			3200 * time.Millisecond,
		}, got)
	})

	t.Run("single attempt never pauses", func(t *testing.T) {
		policy := RetryPolicy{MaxAttempts: 1, InitialBackoff: time.Second, Multiplier: 2}

		assert.Empty(t, drain(policy.schedule()))
	})

	t.Run("custom multiplier", func(t *testing.T) {
		policy := RetryPolicy{MaxAttempts: 4, InitialBackoff: 100 * time.Millisecond, Multiplier: 3}

		assert.Equal(t, []time.Duration{
			100 * time.Millisecond,
			300 * time.Millisecond,
			900 * time.Millisecond,
		}, drain(policy.schedule()))
	})

	t.Run("every address gets a fresh schedule", func(t *testing.T) {
		policy := DefaultRetryPolicy()
		first := policy.schedule()
		first.NextBackOff()
		first.NextBackOff()

		assert.Equal(t, 400*time.Millisecond, policy.schedule().NextBackOff())
	})
}

func TestRetryPolicy_Normalized(t *testing.T) {
	got := RetryPolicy{MaxAttempts: 0, InitialBackoff: -time.Second, Multiplier: 0.5}.normalized()

	assert.Equal(t, RetryPolicy{MaxAttempts: 5, InitialBackoff: 0, Multiplier: 2}, got)
}
