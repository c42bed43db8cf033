package eventstudio

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStudio(opts ...Option) *Studio {
	return New(append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func TestStudio_HiddenStation(t *testing.T) {
	studio := newTestStudio()
	ctx := context.Background()
	assert.Equal(t, HiddenStation, studio.HiddenStationName())

	l := newCountingListener("l")
	_, err := studio.Add(ctx, Bind[Ping](l), 0, Strong)
	require.NoError(t, err)
	require.NoError(t, studio.Broadcast(ctx, Ping{}))
	assert.Equal(t, int32(1), l.count.Load())

	st, err := studio.Station(HiddenStation)
	require.NoError(t, err)
	assert.Len(t, st.Listeners(pingType), 1)

	found, err := studio.Remove(Bind[Ping](l))
	require.NoError(t, err)
	assert.True(t, found)

	t.Run("renamed", func(t *testing.T) {
		studio := newTestStudio(WithHiddenStation("default"), WithHiddenStation("  "))
		assert.Equal(t, "default", studio.HiddenStationName())
		require.NoError(t, studio.Broadcast(ctx, Ping{}))
		assert.Equal(t, []string{"default"}, studio.Stations().Names())
	})
}

func TestStudio_StationsAreIsolated(t *testing.T) {
	studio := newTestStudio()
	ctx := context.Background()

	left := newCountingListener("left")
	right := newCountingListener("right")
	_, err := studio.AddTo(ctx, "left", Bind[Ping](left), 0, Strong)
	require.NoError(t, err)
	_, err = studio.AddTo(ctx, "right", Bind[Ping](right), 0, Strong)
	require.NoError(t, err)

	require.NoError(t, studio.BroadcastTo(ctx, "left", Ping{}))
	assert.Equal(t, int32(1), left.count.Load())
	assert.Zero(t, right.count.Load())

	require.NoError(t, studio.Broadcast(ctx, Ping{}))
	assert.Equal(t, int32(1), left.count.Load())
	assert.Zero(t, right.count.Load())

	_, err = studio.AddTo(ctx, "", Bind[Ping](left), 0, Strong)
	assert.ErrorIs(t, err, ErrBlankStationName)
	assert.ErrorIs(t, studio.BroadcastTo(ctx, " ", Ping{}), ErrBlankStationName)
}

func TestStudio_AddType(t *testing.T) {
	studio := newTestStudio()
	ctx := context.Background()
	var got atomic.Int32
	_, err := studio.AddType(ctx, "typed", pingType, BindFunc(func(context.Context, any) error {
		got.Add(1)
		return nil
	}), 0, Strong)
	require.NoError(t, err)

	require.NoError(t, studio.BroadcastTo(ctx, "typed", Ping{}))
	assert.Equal(t, int32(1), got.Load())
}

func TestStudio_BroadcastToEveryStation(t *testing.T) {
	studio := newTestStudio()
	ctx := context.Background()
	boom := errors.New("boom")

	listeners := map[string]*countingListener{}
	for _, name := range []string{"a", "b", "c"} {
		listeners[name] = newCountingListener(name)
		_, err := studio.AddTo(ctx, name, Bind[Ping](listeners[name]), 0, Strong)
		require.NoError(t, err)
	}
	_, err := studio.AddTo(ctx, "a", BindFunc(func(context.Context, Ping) error { return boom }), 1, Strong)
	require.NoError(t, err)

	err = studio.BroadcastToEveryStation(ctx, Ping{})
	assert.ErrorIs(t, err, boom)
	for name, l := range listeners {
		assert.Equal(t, int32(1), l.count.Load(), "station %s", name)
	}

	assert.ErrorIs(t, studio.BroadcastToEveryStation(ctx, nil), ErrNilEvent)
}

// panel declares its listeners like an annotated component would.
type panel struct {
	rec     *recorder
	station string
}

func (p *panel) onPing(_ context.Context, _ Ping) error {
	p.rec.record("panel.ping")
	return nil
}

func (p *panel) onPong(_ context.Context, e Pong) error {
	p.rec.record("panel.pong:" + e.Msg)
	return nil
}

func (p *panel) StationName() string {
	return p.station
}

func (p *panel) EventListeners() []Descriptor {
	return []Descriptor{
		{Priority: 0, Strength: Strong, Binding: BindMethod(p, (*panel).onPing)},
		{Priority: 0, Strength: Strong, Station: "other", Binding: BindMethod(p, (*panel).onPong)},
	}
}

// plainSource declares listeners without naming a station.
type plainSource struct {
	descriptors []Descriptor
}

func (s plainSource) EventListeners() []Descriptor {
	return s.descriptors
}

func TestStudio_AddListeners(t *testing.T) {
	ctx := context.Background()

	t.Run("groups descriptors by station", func(t *testing.T) {
		studio := newTestStudio()
		rec := &recorder{}
		p := &panel{rec: rec, station: "ui"}

		require.NoError(t, studio.BroadcastTo(ctx, "other", Pong{Msg: "early"}))
		require.NoError(t, studio.AddListeners(ctx, p))
		assert.Equal(t, []string{"panel.pong:early"}, rec.names(), "replayed on registration")

		require.NoError(t, studio.BroadcastTo(ctx, "ui", Ping{}))
		require.NoError(t, studio.BroadcastTo(ctx, "other", Pong{Msg: "late"}))
		require.NoError(t, studio.Broadcast(ctx, Ping{}))
		assert.Equal(t, []string{"panel.pong:early", "panel.ping", "panel.pong:late"}, rec.names())
	})

	t.Run("falls back to the hidden station", func(t *testing.T) {
		studio := newTestStudio()
		l := newCountingListener("l")
		require.NoError(t, studio.AddListeners(ctx, plainSource{descriptors: []Descriptor{
			{Binding: Bind[Ping](l)},
		}}))
		require.NoError(t, studio.Broadcast(ctx, Ping{}))
		assert.Equal(t, int32(1), l.count.Load())
	})

	t.Run("blank station name falls back too", func(t *testing.T) {
		studio := newTestStudio()
		rec := &recorder{}
		require.NoError(t, studio.AddListeners(ctx, &panel{rec: rec, station: " "}))
		require.NoError(t, studio.Broadcast(ctx, Ping{}))
		assert.Equal(t, []string{"panel.ping"}, rec.names())
	})

	t.Run("errors name the station", func(t *testing.T) {
		studio := newTestStudio()
		err := studio.AddListeners(ctx, plainSource{descriptors: []Descriptor{
			{Station: "broken", Binding: Binding{}},
		}})
		require.ErrorIs(t, err, ErrNilListener)
		assert.Contains(t, err.Error(), "station broken")
	})

	t.Run("nothing to add", func(t *testing.T) {
		studio := newTestStudio()
		assert.NoError(t, studio.AddListeners(ctx, plainSource{}))
		assert.ErrorIs(t, studio.AddListeners(ctx, nil), ErrNilListener)
		assert.Empty(t, studio.Stations().Names())
	})
}

func TestStudio_Supervisor(t *testing.T) {
	studio := newTestStudio()
	ctx := context.Background()

	var hidden, named atomic.Int32
	require.NoError(t, studio.Supervisor(SupervisorFunc(func(context.Context, any) error {
		hidden.Add(1)
		return nil
	})))
	require.NoError(t, studio.SupervisorOf("named", SupervisorFunc(func(context.Context, any) error {
		named.Add(1)
		return nil
	})))

	require.NoError(t, studio.Broadcast(ctx, Ping{}))
	require.NoError(t, studio.BroadcastTo(ctx, "named", Ping{}))
	require.NoError(t, studio.BroadcastTo(ctx, "named", Ping{}))

	assert.Equal(t, int32(1), hidden.Load())
	assert.Equal(t, int32(2), named.Load())

	assert.ErrorIs(t, studio.Supervisor(nil), ErrNilSupervisor)
	assert.ErrorIs(t, studio.SupervisorOf("", Slacker), ErrBlankStationName)
}

func TestStudio_Clear(t *testing.T) {
	studio := newTestStudio()
	ctx := context.Background()

	require.NoError(t, studio.Broadcast(ctx, Ping{}))
	require.NoError(t, studio.BroadcastTo(ctx, "kept", Ping{}))

	assert.True(t, studio.Clear())
	assert.Equal(t, []string{"kept"}, studio.Stations().Names())

	assert.True(t, studio.ClearStation("kept"))
	assert.Empty(t, studio.Stations().Names())
}

func TestListenHelpers(t *testing.T) {
	studio := newTestStudio()
	ctx := context.Background()
	st, err := studio.Station("helpers")
	require.NoError(t, err)

	l := newCountingListener("l")
	_, err = Listen[Ping](ctx, st, l, 0, Strong)
	require.NoError(t, err)

	var pongs atomic.Int32
	_, err = ListenFunc(ctx, st, func(_ context.Context, _ Pong) error {
		pongs.Add(1)
		return nil
	}, 0)
	require.NoError(t, err)

	require.NoError(t, st.Broadcast(ctx, Ping{}))
	require.NoError(t, st.Broadcast(ctx, Pong{}))
	assert.Equal(t, int32(1), l.count.Load())
	assert.Equal(t, int32(1), pongs.Load())
}
