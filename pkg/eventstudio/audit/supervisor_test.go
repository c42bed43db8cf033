package audit_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/randalmurphal/eventstudio/pkg/eventstudio"
	"github.com/randalmurphal/eventstudio/pkg/eventstudio/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderPlaced struct {
	ID    string
	Total int
}

type handle struct {
	C chan int
}

var fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func TestSupervisor_Inspect(t *testing.T) {
	store := audit.NewMemoryStore()
	sup := audit.NewSupervisor(store, "orders", audit.WithClock(func() time.Time { return fixedTime }))

	require.NoError(t, sup.Inspect(context.Background(), orderPlaced{ID: "o-1", Total: 30}))
	require.NoError(t, sup.Inspect(context.Background(), handle{C: make(chan int)}))

	records, err := store.List("orders", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.NotEmpty(t, records[0].ID)
	assert.NotEqual(t, records[0].ID, records[1].ID)
	assert.Equal(t, "audit_test.orderPlaced", records[0].EventType)
	assert.JSONEq(t, `{"ID":"o-1","Total":30}`, string(records[0].Payload))
	assert.Equal(t, fixedTime, records[0].InspectedAt)

	assert.Equal(t, "audit_test.handle", records[1].EventType)
	assert.Contains(t, string(records[1].Payload), "C:0x", "unencodable events fall back to their text form")
}

func TestSupervisor_StoreFailure(t *testing.T) {
	store := audit.NewMemoryStore()
	require.NoError(t, store.Close())

	sup := audit.NewSupervisor(store, "orders")
	err := sup.Inspect(context.Background(), orderPlaced{})
	assert.ErrorIs(t, err, audit.ErrStoreClosed)
}

func TestSupervisor_Next(t *testing.T) {
	store := audit.NewMemoryStore()
	sup := audit.NewSupervisor(store, "orders", audit.WithNext(eventstudio.SupervisorFunc(
		func(context.Context, any) error { return eventstudio.ErrStopBroadcast },
	)))

	err := sup.Inspect(context.Background(), orderPlaced{})
	assert.ErrorIs(t, err, eventstudio.ErrStopBroadcast)

	n, err := store.Count("orders")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "recorded before the next supervisor ran")
}

func TestFactory_RecordsEveryStation(t *testing.T) {
	store := audit.NewMemoryStore()
	studio := eventstudio.New(
		eventstudio.WithLogger(slog.New(slog.DiscardHandler)),
		eventstudio.WithDefaultSupervisor(audit.Factory(store)))
	ctx := context.Background()

	var delivered int
	_, err := studio.AddTo(ctx, "orders", eventstudio.BindFunc(func(context.Context, orderPlaced) error {
		delivered++
		return nil
	}), 0, eventstudio.Strong)
	require.NoError(t, err)

	require.NoError(t, studio.BroadcastTo(ctx, "orders", orderPlaced{ID: "o-1"}))
	require.NoError(t, studio.BroadcastTo(ctx, "billing", orderPlaced{ID: "o-1"}))
	require.NoError(t, studio.Broadcast(ctx, orderPlaced{ID: "o-2"}))

	assert.Equal(t, 1, delivered)
	for station, want := range map[string]int{"orders": 1, "billing": 1, eventstudio.HiddenStation: 1, "": 3} {
		n, err := store.Count(station)
		require.NoError(t, err)
		assert.Equal(t, want, n, "station %q", station)
	}

	t.Run("a failing store does not block delivery", func(t *testing.T) {
		require.NoError(t, store.Close())
		require.NoError(t, studio.BroadcastTo(ctx, "orders", orderPlaced{ID: "o-3"}))
		assert.Equal(t, 2, delivered)
	})

}
