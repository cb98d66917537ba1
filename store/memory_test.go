package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "electricity_usage/p1/2025-07-01/00/30", 150))

	v, err := m.Get(ctx, "electricity_usage/p1/2025-07-01/00/30")
	require.NoError(t, err)
	assert.Equal(t, float64(150), v)
}

func TestMemoryGetAbsentPathReturnsNil(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	v, err := m.Get(ctx, "electricity_usage/nope/2025-01-01")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMemoryGetSubtree(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "electricity_usage/p1/2025-07-01/00", map[string]interface{}{
		"00": 100,
		"30": 200,
	}))

	v, err := m.Get(ctx, "electricity_usage/p1/2025-07-01/00")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"00": float64(100), "30": float64(200)}, v)
}

func TestMemoryArrayIndexing(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "electricity_usage/p1/2025-07-01/00", []interface{}{100, nil, 300}))

	v, err := m.Get(ctx, "electricity_usage/p1/2025-07-01/00/2")
	require.NoError(t, err)
	assert.Equal(t, float64(300), v)

	v, err = m.Get(ctx, "electricity_usage/p1/2025-07-01/00/9")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMemoryUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "user_details/anna", map[string]interface{}{
		"product_id": "p1",
		"email":      "anna@example.com",
	}))
	require.NoError(t, m.Update(ctx, "user_details/anna", map[string]interface{}{
		"email": "anna@tenantvolt.io",
	}))

	v, err := m.Get(ctx, "user_details/anna")
	require.NoError(t, err)
	user := v.(map[string]interface{})
	assert.Equal(t, "p1", user["product_id"])
	assert.Equal(t, "anna@tenantvolt.io", user["email"])
}

func TestMemoryNormalizesStructs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	type record struct {
		Amount float64 `json:"amount"`
		Status string  `json:"status"`
	}
	require.NoError(t, m.Set(ctx, "electricity_bills/p1/2025-07", record{Amount: 500, Status: "not_paid"}))

	v, err := m.Get(ctx, "electricity_bills/p1/2025-07")
	require.NoError(t, err)
	bill := v.(map[string]interface{})
	assert.Equal(t, float64(500), bill["amount"])
	assert.Equal(t, "not_paid", bill["status"])
}
