package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenantvolt/backend/models"
	"github.com/tenantvolt/backend/store"
)

func TestGetStatusesDefaultsToDisconnected(t *testing.T) {
	st := store.NewMemory()
	mustSet(st, "electricity_usage/p1/connection_status", true)

	cs := NewConnectionService(st, augustClock())
	statuses := cs.GetStatuses(context.Background(), []models.TenantRef{
		{TenantIndex: 0, ProductID: "p1"},
		{TenantIndex: 1, ProductID: "p2"},
	})

	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].ConnectionStatus)
	assert.False(t, statuses[1].ConnectionStatus, "absent flag reads as disconnected")
}

func TestUpdateStatusRoundTrips(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	cs := NewConnectionService(st, augustClock())

	require.NoError(t, cs.UpdateStatus(ctx, "p1", true))
	statuses := cs.GetStatuses(ctx, []models.TenantRef{{TenantIndex: 0, ProductID: "p1"}})
	assert.True(t, statuses[0].ConnectionStatus)

	require.NoError(t, cs.UpdateStatus(ctx, "p1", false))
	statuses = cs.GetStatuses(ctx, []models.TenantRef{{TenantIndex: 0, ProductID: "p1"}})
	assert.False(t, statuses[0].ConnectionStatus)
}

func TestAllStatuses(t *testing.T) {
	st := store.NewMemory()
	mustSet(st, "user_details/anna", map[string]interface{}{
		"product_id": "p1",
		"email":      "anna@example.com",
	})
	mustSet(st, "user_details/bob", map[string]interface{}{
		"email": "bob@example.com", // no product, excluded
	})
	mustSet(st, "electricity_usage/p1/connection_status", true)
	mustSet(st, "electricity_usage/p1/2025-07-01", map[string]interface{}{
		"08": map[string]interface{}{"15": 100, "45": 200},
	})
	mustSet(st, "electricity_usage/p1/2025-07-02", map[string]interface{}{
		"06": map[string]interface{}{"30": 300},
	})

	resp := NewConnectionService(st, augustClock()).AllStatuses(context.Background())

	assert.Equal(t, 1, resp.TotalCount)
	require.Len(t, resp.Users, 1)
	user := resp.Users[0]
	assert.Equal(t, "anna", user.Username)
	assert.Equal(t, "p1", user.ProductID)
	assert.True(t, user.ConnectionStatus)
	require.NotNil(t, user.LastActive)
	assert.Equal(t, "2025-07-02 06:30", *user.LastActive)
}

func TestAllStatusesLastActiveFromDenseHour(t *testing.T) {
	st := store.NewMemory()
	mustSet(st, "user_details/anna", map[string]interface{}{"product_id": "p1"})
	mustSet(st, "electricity_usage/p1/2025-07-02", map[string]interface{}{
		"06": []interface{}{100, nil, 300, nil},
	})

	resp := NewConnectionService(st, augustClock()).AllStatuses(context.Background())

	require.Len(t, resp.Users, 1)
	require.NotNil(t, resp.Users[0].LastActive)
	assert.Equal(t, "2025-07-02 06:02", *resp.Users[0].LastActive)
}

func TestAllStatusesNoUsageData(t *testing.T) {
	st := store.NewMemory()
	mustSet(st, "user_details/anna", map[string]interface{}{"product_id": "p1"})

	resp := NewConnectionService(st, augustClock()).AllStatuses(context.Background())

	require.Len(t, resp.Users, 1)
	assert.False(t, resp.Users[0].ConnectionStatus)
	assert.Nil(t, resp.Users[0].LastActive)
}

func TestAllStatusesTimestampFromClock(t *testing.T) {
	st := store.NewMemory()
	clk := fixedClock{t: time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC)}

	resp := NewConnectionService(st, clk).AllStatuses(context.Background())

	assert.Equal(t, "2025-08-15 10:00:00", resp.Timestamp)
}
