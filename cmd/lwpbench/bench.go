package main

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dustin/go-humanize"
	"github.com/pingcap/errors"
	"golang.org/x/sync/errgroup"

	"github.com/lwproc/lwproc"
	"github.com/lwproc/lwproc/gen"
)

// report is the result of one measured operation
type report struct {
	Operation string
	Kind      gen.ProcessKind
	Count     int
	Elapsed   time.Duration
	Allocated uint64
}

func (r report) perOp() time.Duration {
	if r.Count == 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Count)
}

func (r report) String() string {
	return fmt.Sprintf("%-5s %-9s %s ops in %s, %s/op, %s allocated",
		r.Operation, r.Kind,
		humanize.Comma(int64(r.Count)),
		r.Elapsed.Round(time.Microsecond),
		r.perOp(),
		humanize.IBytes(r.Allocated),
	)
}

type bench struct {
	rt    gen.Runtime
	clock clock.Clock
	cfg   *Config
}

func newBench(rt gen.Runtime, clk clock.Clock, cfg *Config) *bench {
	return &bench{rt: rt, clock: clk, cfg: cfg}
}

func nopHandler(kind gen.ProcessKind) gen.Handler {
	if kind == gen.KindStateful {
		return gen.StatefulHandler(func(_ gen.Pid, _ any, state any) (bool, any) {
			return true, state
		})
	}
	return gen.StatelessHandler(func(gen.Pid, any) {})
}

// measure runs f and returns the elapsed time together with the number of
// bytes allocated meanwhile.
func (b *bench) measure(f func() error) (time.Duration, uint64, error) {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	start := b.clock.Now()
	err := f()
	elapsed := b.clock.Since(start)
	runtime.ReadMemStats(&after)
	return elapsed, after.TotalAlloc - before.TotalAlloc, err
}

// spawn spawns cfg.Processes processes of the given kind from cfg.Workers
// goroutines. Spawned processes are removed afterwards.
func (b *bench) spawn(ctx context.Context, kind gen.ProcessKind) (report, error) {
	handler := nopHandler(kind)
	pids := make([][]gen.Pid, b.cfg.Workers)

	elapsed, allocated, err := b.measure(func() error {
		g, gctx := errgroup.WithContext(ctx)
		for w := 0; w < b.cfg.Workers; w++ {
			w := w
			count := share(b.cfg.Processes, b.cfg.Workers, w)
			pids[w] = make([]gen.Pid, 0, count)
			g.Go(func() error {
				for i := 0; i < count; i++ {
					if i%1024 == 0 && gctx.Err() != nil {
						return errors.Trace(gctx.Err())
					}
					pid, err := b.rt.Spawn(handler, gen.ProcessOptions{})
					if err != nil {
						return errors.Trace(err)
					}
					pids[w] = append(pids[w], pid)
				}
				return nil
			})
		}
		return g.Wait()
	})

	for _, list := range pids {
		for _, pid := range list {
			b.rt.Unlink(pid)
		}
	}
	if err != nil {
		return report{}, err
	}
	return report{
		Operation: "spawn",
		Kind:      kind,
		Count:     b.cfg.Processes,
		Elapsed:   elapsed,
		Allocated: allocated,
	}, nil
}

// send delivers cfg.Messages messages to a single process of the given kind
// and waits until all of them are handled.
func (b *bench) send(ctx context.Context, kind gen.ProcessKind) (report, error) {
	var wg sync.WaitGroup

	var pid gen.Pid
	var err error
	if kind == gen.KindStateful {
		pid, err = lwproc.SpawnStatefulIn(b.rt, 0, func(_ gen.Pid, _ any, handled int) (bool, int) {
			wg.Done()
			return true, handled + 1
		}, gen.ProcessOptions{})
	} else {
		pid, err = b.rt.Spawn(gen.StatelessHandler(func(gen.Pid, any) {
			wg.Done()
		}), gen.ProcessOptions{})
	}
	if err != nil {
		return report{}, errors.Trace(err)
	}
	defer b.rt.Unlink(pid)

	elapsed, allocated, err := b.measure(func() error {
		g, gctx := errgroup.WithContext(ctx)
		for w := 0; w < b.cfg.Workers; w++ {
			count := share(b.cfg.Messages, b.cfg.Workers, w)
			g.Go(func() error {
				for i := 0; i < count; i++ {
					if i%1024 == 0 && gctx.Err() != nil {
						return errors.Trace(gctx.Err())
					}
					// counted per message so a canceled run only waits for
					// what was actually sent
					wg.Add(1)
					b.rt.SendPid(pid, i)
				}
				return nil
			})
		}
		err := g.Wait()
		if err != nil {
			// handlers of the sent messages still call Done
			wg.Wait()
			return err
		}
		// gctx is canceled once Wait returns, the handlers are awaited on
		// the caller's context
		return waitGroup(ctx, &wg)
	})
	if err != nil {
		return report{}, err
	}
	return report{
		Operation: "send",
		Kind:      kind,
		Count:     b.cfg.Messages,
		Elapsed:   elapsed,
		Allocated: allocated,
	}, nil
}

// share returns the part of total assigned to the worker with the given index
func share(total, workers, index int) int {
	n := total / workers
	if index < total%workers {
		n++
	}
	return n
}

func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Trace(ctx.Err())
	}
}
