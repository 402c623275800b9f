package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/b97tsk/pxasync"
	"github.com/b97tsk/pxasync/internal/config"
	"github.com/b97tsk/pxasync/internal/logging"
	"github.com/b97tsk/pxasync/pxros"
	"github.com/b97tsk/pxasync/pxros/simkernel"
)

func TestRunScenario(t *testing.T) {
	cfg := config.Default()
	cfg.Inbox.Interval.Duration = 2 * time.Millisecond
	cfg.Tickers[0].Period.Duration = 3 * time.Millisecond
	cfg.Tickers[1].Period.Duration = 2 * time.Millisecond
	require.NoError(t, cfg.Validate())

	names, results, err := runScenario(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	require.Equal(t, []string{"temperature", "flow", "tickers", "inbox"}, names)
	require.Len(t, results, 4)

	want := []summary{
		{Name: "temperature", Count: 4, Value: 68},
		{Name: "flow", Count: 6, Value: 313},
		{Name: "tickers", Count: 2, Value: 381},
		{Name: "inbox", Count: 5, Value: 325},
	}
	for i, w := range want {
		r, ok := results[i].Get()
		require.True(t, ok, names[i])
		require.NoError(t, r.Err, names[i])
		require.Equal(t, w, r.Value)
	}
}

func TestTickersOnly(t *testing.T) {
	cfg := config.Default()
	cfg.Inbox.Enabled = false
	cfg.Tickers = cfg.Tickers[1:]
	cfg.Tickers[0].Period.Duration = time.Millisecond

	names, results, err := runScenario(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	require.Equal(t, []string{"flow", "tickers"}, names)
	r, ok := results[0].Get()
	require.True(t, ok)
	require.Equal(t, int64(313), r.Value.Value)
	r, ok = results[1].Get()
	require.True(t, ok)
	require.Equal(t, summary{Name: "tickers", Count: 1, Value: 313}, r.Value)
}

func TestPrintResults(t *testing.T) {
	color.NoColor = true

	results := make([]outcome, 3)
	e := pxasync.New[int, pxasync.Result[summary]](noWait{}, 3)
	e.Add(pxasync.NewTaskStorage(pxasync.Done[int](pxasync.Ok(summary{Name: "a", Count: 2, Value: 9}))))
	e.Add(pxasync.NewTaskStorage(pxasync.Never[int, pxasync.Result[summary]]()))
	e.Add(pxasync.NewTaskStorage(pxasync.Done[int](pxasync.Err[summary](errStopped))))
	copy(results, e.Run())

	var buf bytes.Buffer
	failed := printResults(&buf, []string{"a", "b", "c"}, results)

	require.Equal(t, 2, failed)
	out := buf.String()
	require.Contains(t, out, "[0] a            2 samples -> 9")
	require.Contains(t, out, "[1] b            not completed")
	require.Contains(t, out, "[2] c            failed: "+errStopped.Error())
}

// noWait is a policy for tasks that never wait on anything external.
type noWait struct{}

func (noWait) NewContext() int { return 0 }

func (noWait) Wait([]*pxasync.Context[int], bool) {}

func TestSignalStopFailure(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewLoggerWithWriter(slog.LevelWarn, "text", &buf)
	require.NoError(t, err)

	k := simkernel.New()
	self := k.Spawn()
	signalStop(pxros.NewSignaller(self, 99, pxros.Events(1)), logger)

	require.Contains(t, buf.String(), "signalling stop failed")
	require.Contains(t, buf.String(), "illegal task")
}
