package autosave

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	var calls atomic.Int32
	d := New(40*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(10 * time.Millisecond)
	}
	assert.True(t, d.Pending())
	assert.Zero(t, calls.Load())

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_CancelDropsPendingCall(t *testing.T) {
	var calls atomic.Int32
	d := New(20*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, calls.Load())

	d.Trigger()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_StopIsFinal(t *testing.T) {
	var calls atomic.Int32
	d := New(20*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	d.Stop()
	d.Trigger()
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, calls.Load())
	assert.False(t, d.Pending())
}

func TestNew_DefaultDelay(t *testing.T) {
	d := New(0, func() {})
	assert.Equal(t, DefaultDelay, d.delay)
}
