package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenantvolt/backend/store"
)

func TestInBillingWindow(t *testing.T) {
	loc := time.UTC

	assert.True(t, inBillingWindow(time.Date(2025, 8, 1, 0, 0, 0, 0, loc)))
	assert.True(t, inBillingWindow(time.Date(2025, 8, 1, 0, 9, 59, 0, loc)))

	assert.False(t, inBillingWindow(time.Date(2025, 8, 1, 0, 10, 0, 0, loc)), "window closes at minute 10")
	assert.False(t, inBillingWindow(time.Date(2025, 8, 1, 1, 0, 0, 0, loc)), "wrong hour")
	assert.False(t, inBillingWindow(time.Date(2025, 8, 2, 0, 5, 0, 0, loc)), "wrong day")
	assert.False(t, inBillingWindow(time.Date(2025, 8, 15, 0, 5, 0, 0, loc)))
}

func TestBillSchedulerFiresInsideWindow(t *testing.T) {
	st := store.NewMemory()
	mustSet(st, "electricity_usage/p1/2025-07-05", map[string]interface{}{
		"00": map[string]interface{}{"00": 100},
	})

	// 00:05 on the first of August: inside the window, target month July.
	clk := fixedClock{t: time.Date(2025, 8, 1, 0, 5, 0, 0, time.UTC)}
	billing := NewBillingService(st, clk)
	biller := NewMonthlyBiller(st, clk, billing, NewNotifier(""))

	scheduler := NewBillScheduler(biller, clk, 10*time.Millisecond)
	go scheduler.Start()
	defer scheduler.Stop()

	require.Eventually(t, func() bool {
		raw, err := st.Get(context.Background(), "electricity_bills/p1/2025-07")
		return err == nil && raw != nil
	}, time.Second, 10*time.Millisecond)
}

func TestBillSchedulerIdleOutsideWindow(t *testing.T) {
	st := store.NewMemory()
	mustSet(st, "electricity_usage/p1/2025-07-05", map[string]interface{}{
		"00": map[string]interface{}{"00": 100},
	})

	clk := fixedClock{t: time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)}
	billing := NewBillingService(st, clk)
	biller := NewMonthlyBiller(st, clk, billing, NewNotifier(""))

	scheduler := NewBillScheduler(biller, clk, 10*time.Millisecond)
	go scheduler.Start()
	time.Sleep(60 * time.Millisecond)
	scheduler.Stop()

	raw, err := st.Get(context.Background(), "electricity_bills/p1/2025-07")
	require.NoError(t, err)
	assert.Nil(t, raw, "no bill run outside the window")
}
