package throttle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(perSecond float64, burst int) (*Limiter, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(perSecond, burst, time.Minute)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l, _ := newTestLimiter(1, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "other clients keep their own bucket")
}

func TestLimiter_Refills(t *testing.T) {
	l, now := newTestLimiter(1, 1)

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	*now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))
}

func TestLimiter_EvictsIdleClients(t *testing.T) {
	l, now := newTestLimiter(1, 1)

	l.Allow("a")
	l.Allow("b")
	assert.Equal(t, 2, l.Len())

	*now = now.Add(2 * time.Minute)
	l.Allow("c")
	assert.Equal(t, 1, l.Len())
}

func TestNew_Defaults(t *testing.T) {
	l := New(1, 0, 0)
	assert.Equal(t, 1, l.burst)
	assert.Equal(t, defaultIdleTTL, l.idleTTL)
}
