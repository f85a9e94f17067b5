package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientLimiter_PerClient(t *testing.T) {
	l := newClientLimiter(1, 2)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))

	now = now.Add(time.Minute)
	assert.True(t, l.Allow("10.0.0.1"), "one token refills per minute")
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestClientLimiter_EvictsIdleBuckets(t *testing.T) {
	l := newClientLimiter(6, 1)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		l.Allow(ip)
	}
	assert.Equal(t, 3, l.size())

	now = now.Add(30 * time.Second)
	l.Allow("10.0.0.1")
	assert.Equal(t, 3, l.size(), "buckets younger than the idle window stay")

	now = now.Add(45 * time.Second)
	l.Allow("10.0.0.4")
	assert.Equal(t, 2, l.size())
}
