package auth

import (
	"fmt"
	"testing"
	"time"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptGuard_BlockGrowsAndResets(t *testing.T) {
	g := newAttemptGuard(log.NewLogger())
	now := time.Now()
	addr := "192.0.2.1:5555"

	for range guardBurst {
		require.NoError(t, g.admit(addr, now))
	}
	assert.EqualError(t, g.admit(addr, now), "rate limit exceeded")
	assert.ErrorContains(t, g.admit(addr, now.Add(time.Minute)), "temporarily blocked")

	// 1 failure from the exhausted bucket: blocked for 2 minutes
	later := now.Add(2*time.Minute + time.Second)
	require.NoError(t, g.admit(addr, later))

	g.result(addr, true)
	assert.Equal(t, 1, g.tracked())
}

func TestAttemptGuard_Eviction(t *testing.T) {
	g := newAttemptGuard(log.NewLogger())
	now := time.Now()
	for i := range guardMaxIPs {
		g.clients[fmt.Sprintf("ip-%d", i)] = &attempts{lastAttempt: now}
	}
	require.NoError(t, g.admit("198.51.100.7:1", now))
	assert.Equal(t, guardMaxIPs, g.tracked())
}
