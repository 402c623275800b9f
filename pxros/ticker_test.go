package pxros_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/b97tsk/pxasync"
	"github.com/b97tsk/pxasync/pxros"
	"github.com/b97tsk/pxasync/pxros/simkernel"
)

func TestDurationToTicks(t *testing.T) {
	n, err := pxros.DurationToTicks(1500 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, pxros.Ticks(1500), n)

	n, err = pxros.DurationToTicks(time.Microsecond)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = pxros.DurationToTicks(-time.Millisecond)
	require.Error(t, err)

	_, err = pxros.DurationToTicks((math.MaxUint32 + 1) * time.Millisecond)
	require.Error(t, err)
}

func TestTicker(t *testing.T) {
	t.Run("Wait", func(t *testing.T) {
		k := simkernel.New()
		defer k.Shutdown()
		self := k.Spawn()

		tk, err := pxros.Every(self, evTick, 2*time.Millisecond)
		require.NoError(t, err)
		tk.Wait()
		tk.Wait()
		require.NoError(t, tk.Stop())
		require.NoError(t, tk.Stop())
		require.Equal(t, pxros.NoEvents, k.Pending(self.Self()))
	})
	t.Run("After", func(t *testing.T) {
		k := simkernel.New()
		self := k.Spawn()

		begin := time.Now()
		require.NoError(t, pxros.After(self, evTick, 5*time.Millisecond))
		require.GreaterOrEqual(t, time.Since(begin), 5*time.Millisecond)
	})
	t.Run("BadPeriod", func(t *testing.T) {
		k := simkernel.New()
		self := k.Spawn()

		_, err := pxros.Every(self, evTick, time.Microsecond)
		require.Error(t, err)
		_, err = pxros.Every(self, pxros.NoEvents, time.Second)
		require.ErrorIs(t, err, pxros.ErrIllegalEvents)
	})
	t.Run("Next", func(t *testing.T) {
		k := simkernel.New()
		defer k.Shutdown()
		self := k.Spawn()
		x := pxros.NewExecutor(self, self.Mailbox(), universe)

		tk, err := pxros.Every(self, evTick, time.Millisecond)
		require.NoError(t, err)
		defer tk.Stop()

		ticks := 0
		sampler := pxasync.Loop(func() pxasync.Future[pxros.TaskData, pxasync.Step[int]] {
			return pxasync.Map(tk.Next(), func(struct{}) pxasync.Step[int] {
				if ticks++; ticks == 3 {
					return pxasync.Break(ticks)
				}
				return pxasync.Continue[int]()
			})
		})

		results := pxros.Run(x, pxasync.NewTaskStorage(sampler))
		v, ok := results[0].Get()
		require.True(t, ok)
		require.Equal(t, 3, v)
	})
}

func TestNameServer(t *testing.T) {
	const name pxros.TaskName = 42

	t.Run("Registered", func(t *testing.T) {
		k := simkernel.New()
		self, other := k.Spawn(), k.Spawn()

		require.NoError(t, (&pxros.NameServer{Kernel: other}).Register(name))
		id, err := (&pxros.NameServer{Kernel: self}).Query(name, evTick)
		require.NoError(t, err)
		require.Equal(t, other.Self(), id)
	})
	t.Run("RegisteredLater", func(t *testing.T) {
		k := simkernel.New()
		defer k.Shutdown()
		self, other := k.Spawn(), k.Spawn()

		go func() {
			time.Sleep(5 * time.Millisecond)
			_ = (&pxros.NameServer{Kernel: other}).Register(name)
		}()

		ns := &pxros.NameServer{Kernel: self, Delay: 2 * time.Millisecond, Tries: 1000}
		id, err := ns.Query(name, evTick)
		require.NoError(t, err)
		require.Equal(t, other.Self(), id)
	})
	t.Run("GiveUp", func(t *testing.T) {
		k := simkernel.New()
		self := k.Spawn()

		ns := &pxros.NameServer{Kernel: self, Delay: time.Millisecond, Tries: 3}
		_, err := ns.Query(name, evTick)
		require.ErrorIs(t, err, pxros.ErrIllegalTask)
	})
	t.Run("RegisterTwice", func(t *testing.T) {
		k := simkernel.New()
		self := k.Spawn()

		ns := &pxros.NameServer{Kernel: self}
		require.NoError(t, ns.Register(name))
		require.True(t, errors.Is(ns.Register(name), pxros.ErrNameDefined))
	})
	t.Run("Senders", func(t *testing.T) {
		k := simkernel.New()
		self, other := k.Spawn(), k.Spawn()
		require.NoError(t, (&pxros.NameServer{Kernel: other}).Register(name))

		ns := &pxros.NameServer{Kernel: self}
		sig, err := pxros.SignallerFor(ns, name, evA, evTick)
		require.NoError(t, err)
		require.NoError(t, sig.Signal())
		require.Equal(t, evA, k.Pending(other.Self()))

		mail, err := pxros.MailSenderFor(ns, name, evTick)
		require.NoError(t, err)
		require.Equal(t, other.Mailbox(), mail.Mailbox())
	})
}
