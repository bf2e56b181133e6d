package checkout

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdown_Expires(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown(5, time.Millisecond, func() { fired.Add(1) })
	assert.Equal(t, 5, c.Remaining())

	c.Start()
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)

	assert.Equal(t, 0, c.Remaining())
	assert.False(t, c.Running())

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestCountdown_StopHaltsTicks(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown(60, time.Millisecond, func() { fired.Add(1) })

	c.Start()
	require.Eventually(t, func() bool { return c.Remaining() < 60 }, time.Second, time.Millisecond)
	c.Stop()
	frozen := c.Remaining()

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, frozen, c.Remaining())
	assert.Equal(t, int32(0), fired.Load())
}

func TestCountdown_ResetRestoresTotal(t *testing.T) {
	c := NewCountdown(60, time.Millisecond, nil)

	c.Start()
	require.Eventually(t, func() bool { return c.Remaining() < 55 }, time.Second, time.Millisecond)
	c.Reset()

	assert.Equal(t, 60, c.Remaining())
	assert.False(t, c.Running())
}

func TestCountdown_Defaults(t *testing.T) {
	c := NewCountdown(0, 0, nil)
	assert.Equal(t, DefaultCountdownSeconds, c.Remaining())
	assert.Equal(t, time.Second, c.interval)
}
