package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestInboxPoller_TicksUntilStopped(t *testing.T) {
	var ticks int32
	p := NewInboxPoller("inbox:7", 5*time.Millisecond, func(context.Context) error {
		atomic.AddInt32(&ticks, 1)
		return errors.New("upstream down")
	})
	assert.Equal(t, 5*time.Millisecond, p.Interval())

	require.NoError(t, p.Start(context.Background()))
	assert.ErrorIs(t, p.Start(context.Background()), ErrAlreadyRunning)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&ticks) >= 3 }, time.Second, time.Millisecond,
		"errors do not stop polling")

	p.Stop()
	assert.False(t, p.Running())
	after := atomic.LoadInt32(&ticks)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&ticks))

	p.Stop()
}

func TestInboxPoller_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewInboxPoller("inbox:8", time.Hour, func(context.Context) error { return nil })
	require.NoError(t, p.Start(ctx))
	cancel()
	p.Stop()
}

func TestInboxPoller_Restart(t *testing.T) {
	p := NewInboxPoller("inbox:9", time.Hour, func(context.Context) error { return nil })
	require.NoError(t, p.Start(context.Background()))
	p.Stop()
	require.NoError(t, p.Start(context.Background()))
	assert.True(t, p.Running())
	p.Stop()
}

func TestInboxPoller_DefaultInterval(t *testing.T) {
	assert.Equal(t, time.Minute, NewInboxPoller("x", 0, nil).Interval())
}

func TestHub(t *testing.T) {
	h := NewHub()
	a, unsubA := h.Subscribe("inbox:7")
	b, unsubB := h.Subscribe("inbox:7")
	_, unsubC := h.Subscribe("inbox:8")
	defer unsubC()

	assert.Equal(t, 2, h.Publish("inbox:7", Event{Type: "inbox_updated"}))
	assert.Equal(t, "inbox_updated", (<-a).Type)
	assert.Equal(t, "inbox_updated", (<-b).Type)

	unsubA()
	unsubA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, h.Subscribers("inbox:7"))

	unsubB()
	assert.Equal(t, 0, h.Publish("inbox:7", Event{Type: "inbox_updated"}))
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	_, unsub := h.Subscribe("t")
	defer unsub()

	delivered := 0
	for i := 0; i < 20; i++ {
		delivered += h.Publish("t", Event{Type: "x"})
	}
	assert.Equal(t, 8, delivered)
}
