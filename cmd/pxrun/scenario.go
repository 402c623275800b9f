package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/b97tsk/pxasync"
	"github.com/b97tsk/pxasync/internal/config"
	"github.com/b97tsk/pxasync/pxros"
	"github.com/b97tsk/pxasync/pxros/simkernel"
)

var errStopped = errors.New("feeder stopped before all readings arrived")

// summary is what every task of a scenario completes with.
type summary struct {
	Name  string
	Count int
	Value int64
}

// reading is the message the feeder sends to the inbox task.
type reading struct {
	Seq   int   `msgpack:"seq"`
	Value int64 `msgpack:"value"`
}

type outcome = pxasync.Outcome[pxasync.Result[summary]]

type taskStorage = pxasync.TaskStorage[pxros.TaskData, pxasync.Result[summary]]

// sensor returns the i-th sample of a fake sensor.
func sensor(seed, i int) int64 {
	return int64((seed*31 + i*17) % 100)
}

// runScenario runs cfg on a fresh simulated kernel and returns the task
// names and outcomes, index by index.
func runScenario(ctx context.Context, cfg config.Config, logger *slog.Logger) ([]string, []outcome, error) {
	k := simkernel.New(
		simkernel.WithTick(cfg.Kernel.Tick.Duration),
		simkernel.WithMessageLimit(cfg.Kernel.MessageLimit),
	)
	defer k.Shutdown()

	self := k.Spawn()

	var (
		names    []string
		tasks    []*taskStorage
		universe pxros.Events
		totals   = pxasync.NewState(summary{Name: "tickers"})
	)

	for _, tc := range cfg.Tickers {
		ev, err := config.EventBit(tc.Event)
		if err != nil {
			return nil, nil, err
		}
		t, err := pxros.Every(self, ev, tc.Period.Duration)
		if err != nil {
			return nil, nil, fmt.Errorf("starting ticker %s: %w", tc.Name, err)
		}
		defer func() {
			if err := t.Stop(); err != nil {
				logger.Warn("stopping ticker failed", slog.String("ticker", tc.Name), slog.Any("error", err))
			}
		}()

		universe = universe.Union(ev)
		names = append(names, tc.Name)
		tasks = append(tasks, pxasync.NewTaskStorage(tickerTask(t, tc, totals)))
	}

	if n := len(cfg.Tickers); n != 0 {
		totals.Grow(1)
		names = append(names, "tickers")
		tasks = append(tasks, pxasync.NewTaskStorage(totalTask(totals, n)))
	}

	if cfg.Inbox.Enabled {
		stop, err := config.EventBit(cfg.Inbox.StopEvent)
		if err != nil {
			return nil, nil, err
		}
		ns := &pxros.NameServer{Kernel: self, Logger: logger}
		if err := ns.Register(pxros.TaskName(cfg.Inbox.Name)); err != nil {
			return nil, nil, err
		}

		universe = universe.Union(stop)
		names = append(names, "inbox")
		tasks = append(tasks, pxasync.NewTaskStorage(inboxTask(stop, cfg.Inbox.Readings)))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Inbox.Enabled {
		feederKernel := k.Spawn()
		g.Go(func() error {
			return feed(ctx, feederKernel, cfg.Inbox, logger.With(slog.String("task", "feeder")))
		})
	}

	var results []outcome
	g.Go(func() error {
		defer cancel()
		x := pxros.NewExecutor(self, self.Mailbox(), universe, pxros.WithLogger(logger.With(slog.String("task", "executor"))))
		results = pxros.Run(x, tasks...)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return names, results, nil
}

// tickerTask samples a sensor on every tick of t and reduces the samples.
// Its result is also added to totals.
func tickerTask(t *pxros.Ticker, tc config.TickerConfig, totals *pxasync.State[summary]) pxasync.Future[pxros.TaskData, pxasync.Result[summary]] {
	n := 0
	var acc int64
	return pxasync.Loop(func() pxasync.Future[pxros.TaskData, pxasync.Step[pxasync.Result[summary]]] {
		return pxasync.Map(t.Next(), func(struct{}) pxasync.Step[pxasync.Result[summary]] {
			v := sensor(tc.Seed, n)
			switch {
			case n == 0:
				acc = v
			case tc.Reduce == config.ReduceMax:
				acc = max(acc, v)
			default:
				acc += v
			}
			if n++; n < tc.Samples {
				return pxasync.Continue[pxasync.Result[summary]]()
			}
			totals.Update(func(s summary) summary {
				s.Count++
				s.Value += acc
				return s
			})
			return pxasync.Break(pxasync.Ok(summary{Name: tc.Name, Count: n, Value: acc}))
		})
	})
}

// totalTask completes with totals once n ticker tasks have reported into it.
func totalTask(totals *pxasync.State[summary], n int) pxasync.Future[pxros.TaskData, pxasync.Result[summary]] {
	done := pxasync.Until[pxros.TaskData](totals, func(s summary) bool { return s.Count == n })
	return pxasync.Map(done, pxasync.Ok[summary])
}

// inboxTask sums want readings, or fails once the stop event arrives first.
func inboxTask(stop pxros.Events, want int) pxasync.Future[pxros.TaskData, pxasync.Result[summary]] {
	s := summary{Name: "inbox"}
	return pxasync.PollFunc[pxros.TaskData, pxasync.Result[summary]](func(cx *pxasync.Context[pxros.TaskData]) pxasync.Poll[pxasync.Result[summary]] {
		d := cx.LocalData()
		for {
			m, ok := d.PollMessage()
			if !ok {
				break
			}
			var r reading
			err := pxros.DecodeMessage(m, &r)
			if rerr := m.Release(); err == nil {
				err = rerr
			}
			if err != nil {
				return pxasync.Ready(pxasync.Err[summary](err))
			}
			s.Count++
			s.Value += r.Value
			if s.Count == want {
				return pxasync.Ready(pxasync.Ok(s))
			}
		}
		if _, ok := d.PollEvent(stop); ok {
			return pxasync.Ready(pxasync.Err[summary](fmt.Errorf("%w (%d of %d)", errStopped, s.Count, want)))
		}
		return pxasync.Pending[pxasync.Result[summary]]()
	})
}

// feed sends ic.Readings readings to the inbox task, one every ic.Interval.
// If it cannot finish, it signals the stop event so the inbox task does not
// wait forever.
func feed(ctx context.Context, k pxros.Kernel, ic config.InboxConfig, logger *slog.Logger) error {
	pace, err := config.EventBit(ic.PaceEvent)
	if err != nil {
		return err
	}
	stopEvent, err := config.EventBit(ic.StopEvent)
	if err != nil {
		return err
	}

	ns := &pxros.NameServer{Kernel: k, Logger: logger}
	name := pxros.TaskName(ic.Name)

	stop, err := pxros.SignallerFor(ns, name, stopEvent, pace)
	if err != nil {
		return fmt.Errorf("looking up inbox: %w", err)
	}
	mail, err := pxros.MailSenderFor(ns, name, pace)
	if err != nil {
		signalStop(stop, logger)
		return fmt.Errorf("looking up inbox: %w", err)
	}

	for i := range ic.Readings {
		if ctx.Err() != nil {
			logger.Info("run ended early", slog.Int("sent", i))
			return nil
		}
		if err := pxros.After(k, pace, ic.Interval.Duration); err != nil {
			signalStop(stop, logger)
			return err
		}
		r := reading{Seq: i, Value: sensor(int(ic.Name), i)}
		if err := mail.Send(r); err != nil {
			signalStop(stop, logger)
			return fmt.Errorf("sending reading %d: %w", i, err)
		}
		logger.Debug("sent reading", slog.Int("seq", r.Seq), slog.Int64("value", r.Value))
	}
	return nil
}

// signalStop tells the inbox task that no more readings will come.
func signalStop(stop pxros.Signaller, logger *slog.Logger) {
	if err := stop.Signal(); err != nil {
		logger.Warn("signalling stop failed, inbox may wait forever", slog.Any("task", stop.Task()), slog.Any("error", err))
	}
}
