package pxros

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	// NameQueryDelay is the default pause between two name lookups.
	NameQueryDelay = 100 * time.Millisecond
	// NameQueryTries is the default number of name lookups before giving up.
	NameQueryTries = 10
)

// A NameServer resolves task names, retrying while the named task has not
// registered yet.
//
// The zero values of Delay, Tries and Logger mean [NameQueryDelay],
// [NameQueryTries] and [slog.Default].
type NameServer struct {
	Kernel Kernel
	Delay  time.Duration
	Tries  int
	Logger *slog.Logger
}

// Register registers the calling task under name.
func (ns *NameServer) Register(name TaskName) error {
	if err := ns.Kernel.NameRegister(name, ns.Kernel.Self()); err != nil {
		return fmt.Errorf("pxros: registering name %d: %w", name, err)
	}
	return nil
}

// TryQuery looks name up once.
func (ns *NameServer) TryQuery(name TaskName) (TaskID, bool) {
	task, err := ns.Kernel.NameQuery(name)
	return task, err == nil
}

// Query looks name up, pausing between tries on a [Ticker] signalling
// ticker to the calling task. It fails with [ErrIllegalTask] once all
// tries are used up.
func (ns *NameServer) Query(name TaskName, ticker Events) (TaskID, error) {
	if task, ok := ns.TryQuery(name); ok {
		return task, nil
	}

	delay, tries, logger := ns.Delay, ns.Tries, ns.Logger
	if delay == 0 {
		delay = NameQueryDelay
	}
	if tries == 0 {
		tries = NameQueryTries
	}
	if logger == nil {
		logger = slog.Default()
	}

	t, err := Every(ns.Kernel, ticker, delay)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := t.Stop(); err != nil {
			logger.Warn("stopping name lookup ticker failed", slog.Any("error", err))
		}
	}()

	for try := 1; try < tries; try++ {
		logger.Debug("name not registered yet", slog.Uint64("name", uint64(name)), slog.Int("try", try))
		t.Wait()
		if task, ok := ns.TryQuery(name); ok {
			return task, nil
		}
	}

	logger.Warn("name lookup gave up", slog.Uint64("name", uint64(name)), slog.Int("tries", tries))
	return 0, fmt.Errorf("pxros: querying name %d: %w", name, ErrIllegalTask)
}
