package eventstudio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shakedownListener is registered, removed and re-added concurrently.
type shakedownListener struct {
	name     string
	received *atomic.Int64
}

func (l *shakedownListener) OnEvent(_ context.Context, _ Ping) error {
	l.received.Add(1)
	return nil
}

// shakedownSource declares listeners on its own station.
type shakedownSource struct {
	station  string
	received *atomic.Int64
}

func (s *shakedownSource) StationName() string { return s.station }

func (s *shakedownSource) EventListeners() []Descriptor {
	return []Descriptor{
		{Priority: 1, Strength: Strong, Binding: BindMethod(s, (*shakedownSource).onPing)},
		{Priority: 2, Strength: Weak, Binding: BindMethod(s, (*shakedownSource).onPong)},
	}
}

func (s *shakedownSource) onPing(context.Context, Ping) error {
	s.received.Add(1)
	return nil
}

func (s *shakedownSource) onPong(context.Context, Pong) error {
	s.received.Add(1)
	return nil
}

func TestShakedown(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping shakedown in short mode")
	}

	studio := newTestStudio(WithQueueCapacity(50))
	ctx := context.Background()
	stations := []string{"station1", "station2", "station3"}

	var received atomic.Int64
	persistent := make([]*shakedownListener, len(stations))
	for i, name := range stations {
		persistent[i] = &shakedownListener{name: name, received: &received}
		_, err := studio.AddTo(ctx, name, Bind[Ping](persistent[i]), 0, Strong)
		require.NoError(t, err)
	}

	const (
		broadcasts = 500
		mutations  = 100
	)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				errs <- err
			}
		}()
	}

	for _, name := range stations {
		run(func() error {
			for i := range broadcasts {
				if err := studio.BroadcastTo(ctx, name, Ping{Seq: i}); err != nil {
					return err
				}
				if err := studio.BroadcastTo(ctx, name, Pong{Msg: name}); err != nil {
					return err
				}
			}
			return nil
		})
	}

	for w, name := range stations {
		run(func() error {
			for i := range mutations {
				l := &shakedownListener{name: fmt.Sprintf("%s-%d-%d", name, w, i), received: &received}
				if _, err := studio.AddTo(ctx, name, Bind[Ping](l), i%5-2, Strong); err != nil {
					return err
				}
				found, err := studio.RemoveFrom(name, Bind[Ping](l))
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("listener %s not found for removal", l.name)
				}
			}
			return nil
		})
	}

	run(func() error {
		for i := range mutations {
			source := &shakedownSource{station: stations[i%len(stations)], received: &received}
			if err := studio.AddListeners(ctx, source); err != nil {
				return err
			}
		}
		return nil
	})

	run(func() error {
		for range mutations {
			studio.ClearStation("transient")
			if err := studio.BroadcastTo(ctx, "transient", Ping{}); err != nil {
				return err
			}
		}
		return nil
	})

	run(func() error {
		for range mutations {
			if err := studio.BroadcastToEveryStation(ctx, Pong{Msg: "everyone"}); err != nil {
				return err
			}
		}
		return nil
	})

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	// Every Ping reached at least the persistent listener of its station
	assert.GreaterOrEqual(t, received.Load(), int64(broadcasts*len(stations)))
	for i, name := range stations {
		st, err := studio.Station(name)
		require.NoError(t, err)
		assert.Zero(t, st.Pending(pingType), "station %s", name)
		assert.LessOrEqual(t, st.Pending(pongType), 50, "station %s", name)
		found, err := st.Remove(pingType, persistent[i])
		require.NoError(t, err)
		assert.True(t, found, "station %s", name)
	}
}
