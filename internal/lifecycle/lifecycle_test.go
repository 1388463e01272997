package lifecycle

import (
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierDeliversInOrder(t *testing.T) {
	var n Notifier
	var got []int

	n.Subscribe(func() { got = append(got, 1) })
	n.Subscribe(func() { got = append(got, 2) })
	n.Subscribe(func() { got = append(got, 3) })

	n.Notify()
	n.Notify()

	assert.Equal(t, []int{1, 2, 3, 1, 2, 3}, got)
}

func TestNotifierCancel(t *testing.T) {
	var n Notifier
	var calls int

	sub := n.Subscribe(func() { calls++ })
	n.Notify()
	sub.Cancel()
	sub.Cancel()
	n.Notify()

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, n.Len())
}

func TestNotifierCancelOnlyRemovesOwnHandler(t *testing.T) {
	var n Notifier
	var a, b int

	subA := n.Subscribe(func() { a++ })
	n.Subscribe(func() { b++ })

	subA.Cancel()
	n.Notify()

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
}

func TestNotifierHandlerMayCancelItself(t *testing.T) {
	var n Notifier
	var calls int
	var sub Subscription

	sub = n.Subscribe(func() {
		calls++
		sub.Cancel()
	})

	assert.NotPanics(t, n.Notify)
	n.Notify()
	assert.Equal(t, 1, calls)
}

func TestNotifierConcurrentUse(t *testing.T) {
	var n Notifier
	var calls atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := n.Subscribe(func() { calls.Add(1) })
			n.Notify()
			sub.Cancel()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, n.Len())
	assert.GreaterOrEqual(t, calls.Load(), int64(8))
}

func TestRelaySignals(t *testing.T) {
	var n Notifier
	fired := make(chan struct{}, 1)
	n.Subscribe(func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	stop := n.RelaySignals(syscall.SIGUSR1)
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("signal was not relayed")
	}

	stop()
	stop()
}
