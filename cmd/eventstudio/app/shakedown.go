package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/eventstudio/pkg/eventstudio"
)

// tick is the event broadcast during a shakedown.
type tick struct {
	Seq int64
}

// tally counts the ticks it receives.
type tally struct {
	hits *atomic.Int64
}

func (t *tally) OnEvent(context.Context, tick) error {
	t.hits.Add(1)
	return nil
}

// shakedownOptions configures a shakedown run.
type shakedownOptions struct {
	Duration time.Duration
	Workers  int
	Stations []string
}

// shakedownStats counts what a shakedown run did.
type shakedownStats struct {
	Broadcasts int64
	Deliveries int64
	Adds       int64
	Removes    int64
	Clears     int64
	Pending    int
}

// NewShakedownCommand creates the shakedown subcommand.
func (a *App) NewShakedownCommand() *cobra.Command {
	opts := shakedownOptions{Stations: []string{"station1", "station2", "station3"}}

	cmd := &cobra.Command{
		Use:   "shakedown",
		Short: "Broadcast, add, remove and clear concurrently across stations",
		Long: `shakedown runs broadcasters, listener adders, listener removers and
station clearers concurrently against one studio and prints what they did.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			studio, closeStore, err := a.Studio()
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, closeStore())
			}()

			a.logger.Info("shakedown starting",
				"duration", opts.Duration,
				"workers", opts.Workers,
				"stations", len(opts.Stations))

			stats, err := runShakedown(cmd.Context(), studio, opts)
			if err != nil {
				return err
			}
			return printShakedown(cmd.OutOrStdout(), stats)
		},
	}

	cmd.Flags().DurationVarP(&opts.Duration, "duration", "d", 2*time.Second, "how long to run")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 2, "goroutines per role")
	cmd.Flags().StringSliceVar(&opts.Stations, "stations", opts.Stations, "stations to exercise")
	return cmd
}

// bindingPool holds the bindings adders registered, for removers to take.
type bindingPool struct {
	mu    sync.Mutex
	items []pooled
}

type pooled struct {
	station string
	binding eventstudio.Binding
}

func (p *bindingPool) put(item pooled) {
	p.mu.Lock()
	p.items = append(p.items, item)
	p.mu.Unlock()
}

func (p *bindingPool) take() (pooled, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.items) == 0 {
		return pooled{}, false
	}
	item := p.items[len(p.items)-1]
	p.items = p.items[:len(p.items)-1]
	return item, true
}

// runShakedown drives studio until opts.Duration elapses or ctx is done.
func runShakedown(ctx context.Context, studio *eventstudio.Studio, opts shakedownOptions) (shakedownStats, error) {
	if len(opts.Stations) == 0 {
		return shakedownStats{}, fmt.Errorf("shakedown needs at least one station")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Duration)
	defer cancel()

	var (
		broadcasts, deliveries, adds, removes, clears atomic.Int64
		seq                                           atomic.Int64
		pool                                          bindingPool
	)
	pick := func() string { return opts.Stations[rand.IntN(len(opts.Stations))] }

	g, ctx := errgroup.WithContext(ctx)
	for range opts.Workers {
		g.Go(func() error {
			for ctx.Err() == nil {
				if err := studio.BroadcastTo(ctx, pick(), tick{Seq: seq.Add(1)}); err != nil {
					return err
				}
				broadcasts.Add(1)
			}
			return nil
		})

		g.Go(func() error {
			for ctx.Err() == nil {
				station := pick()
				b := eventstudio.Bind[tick](&tally{hits: &deliveries})
				if _, err := studio.AddTo(ctx, station, b, rand.IntN(10), eventstudio.Strong); err != nil {
					return err
				}
				adds.Add(1)
				pool.put(pooled{station: station, binding: b})
				time.Sleep(time.Millisecond)
			}
			return nil
		})

		g.Go(func() error {
			for ctx.Err() == nil {
				item, ok := pool.take()
				if !ok {
					time.Sleep(time.Millisecond)
					continue
				}
				removed, err := studio.RemoveFrom(item.station, item.binding)
				if err != nil {
					return err
				}
				if removed {
					removes.Add(1)
				}
			}
			return nil
		})

		g.Go(func() error {
			for ctx.Err() == nil {
				if studio.ClearStation(pick()) {
					clears.Add(1)
				}
				time.Sleep(10 * time.Millisecond)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return shakedownStats{}, err
	}

	stats := shakedownStats{
		Broadcasts: broadcasts.Load(),
		Deliveries: deliveries.Load(),
		Adds:       adds.Load(),
		Removes:    removes.Load(),
		Clears:     clears.Load(),
	}
	for _, st := range studio.Stations().All() {
		stats.Pending += st.Pending(reflect.TypeFor[tick]())
	}
	return stats, nil
}

func printShakedown(w io.Writer, stats shakedownStats) error {
	_, err := fmt.Fprintf(w,
		"broadcasts: %d\ndeliveries: %d\nadds: %d\nremoves: %d\nclears: %d\npending: %d\n",
		stats.Broadcasts, stats.Deliveries, stats.Adds, stats.Removes, stats.Clears, stats.Pending)
	return err
}
