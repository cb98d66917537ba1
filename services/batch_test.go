package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenantvolt/backend/store"
)

func newBiller(st store.Store, notifyURL string) *MonthlyBiller {
	clk := augustClock()
	billing := NewBillingService(st, clk)
	return NewMonthlyBiller(st, clk, billing, NewNotifier(notifyURL))
}

func TestMonthlyBillerWritesRecords(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedJulyUsage(st)

	newBiller(st, "").Run(ctx)

	raw, err := st.Get(ctx, "electricity_bills/p1/2025-07")
	require.NoError(t, err)
	record, ok := raw.(map[string]interface{})
	require.True(t, ok, "bill record should be persisted")

	assert.InDelta(t, 1.15, record["kw_value"].(float64), 1e-9)
	assert.InDelta(t, CalculateBillAmount(1.15), record["amount"].(float64), 1e-9)
	assert.Equal(t, "not_paid", record["status"])
	assert.Nil(t, record["payment_date"])
	assert.NotEmpty(t, record["calculated_at"])
}

func TestMonthlyBillerSkipsConnectionStatusKey(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedJulyUsage(st)
	mustSet(st, "electricity_usage/connection_status", true)

	newBiller(st, "").Run(ctx)

	raw, err := st.Get(ctx, "electricity_bills/connection_status")
	require.NoError(t, err)
	assert.Nil(t, raw, "connection_status must not be billed as a product")
}

func TestMonthlyBillerIsolatesProductFailures(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	seedJulyUsage(mem)
	mustSet(mem, "electricity_usage/p2/2025-07-01", map[string]interface{}{
		"00": map[string]interface{}{"00": 500},
	})
	st := &failingStore{Memory: mem, failOn: []string{"p2/2025"}}

	newBiller(st, "").Run(ctx)

	p1, err := st.Get(ctx, "electricity_bills/p1/2025-07")
	require.NoError(t, err)
	assert.NotNil(t, p1, "healthy product still gets billed")

	p2, err := st.Get(ctx, "electricity_bills/p2/2025-07")
	require.NoError(t, err)
	assert.Nil(t, p2, "failed product gets no record")
}

func TestMonthlyBillerSendsNotification(t *testing.T) {
	var got atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		got.Store(payload)
	}))
	defer server.Close()

	st := store.NewMemory()
	seedJulyUsage(st)

	newBiller(st, server.URL).Run(context.Background())

	payload, ok := got.Load().(map[string]interface{})
	require.True(t, ok, "notification should have been sent")
	assert.Equal(t, "p1", payload["product_id"])
	assert.Equal(t, "2025-07", payload["month"])
	assert.InDelta(t, 1.15, payload["kw_value"].(float64), 1e-9)
}

func TestMonthlyBillerNotificationFailureDoesNotBlockPersistence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx := context.Background()
	st := store.NewMemory()
	seedJulyUsage(st)

	newBiller(st, server.URL).Run(ctx)

	raw, err := st.Get(ctx, "electricity_bills/p1/2025-07")
	require.NoError(t, err)
	assert.NotNil(t, raw, "record persists even when notification fails")
}

func TestMonthlyBillerRerunOverwrites(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedJulyUsage(st)

	biller := newBiller(st, "")
	biller.Run(ctx)
	biller.Run(ctx)

	raw, err := st.Get(ctx, "electricity_bills/p1")
	require.NoError(t, err)
	months := raw.(map[string]interface{})
	assert.Len(t, months, 1, "reruns overwrite, they never append")
}
