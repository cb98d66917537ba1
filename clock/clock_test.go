package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemClockUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("UTC")
	require.NoError(t, err)

	now := NewSystem(loc).Now()
	assert.Equal(t, loc, now.Location())
}

func TestAdjustableDefaultsToRealTime(t *testing.T) {
	c := NewAdjustable(NewSystem(time.UTC))
	assert.False(t, c.IsVirtual())
	assert.WithinDuration(t, time.Now(), c.Now(), time.Second)
}

func TestAdjustableVirtualTimeAdvancesFromReference(t *testing.T) {
	c := NewAdjustable(NewSystem(time.UTC))

	ref := time.Date(2025, 8, 1, 0, 5, 0, 0, time.UTC)
	c.SetVirtual(ref)

	assert.True(t, c.IsVirtual())
	// Virtual time starts at the reference and moves with real time.
	assert.WithinDuration(t, ref, c.Now(), time.Second)

	time.Sleep(20 * time.Millisecond)
	assert.True(t, c.Now().After(ref))
}

func TestAdjustableReset(t *testing.T) {
	c := NewAdjustable(NewSystem(time.UTC))
	c.SetVirtual(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	c.Reset()

	assert.False(t, c.IsVirtual())
	assert.WithinDuration(t, time.Now(), c.Now(), time.Second)
}
