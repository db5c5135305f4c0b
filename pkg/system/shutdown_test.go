package system

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWatch(t *testing.T) {
	t.Run("first signal calls the handler", func(t *testing.T) {
		sigChannel := make(chan os.Signal, 1)
		done := make(chan struct{})
		called := make(chan struct{})

		go watch(sigChannel, done, func() { close(called) })
		sigChannel <- os.Interrupt

		select {
		case <-called:
		case <-time.After(time.Second):
			t.Fatal("handler was not called")
		}
		close(done)
	})

	t.Run("second signal exits", func(t *testing.T) {
		original := exit
		t.Cleanup(func() { exit = original })

		exitCode := make(chan int, 1)
		exit = func(code int) { exitCode <- code }

		sigChannel := make(chan os.Signal, 2)
		done := make(chan struct{})
		sigChannel <- os.Interrupt
		sigChannel <- os.Interrupt

		go watch(sigChannel, done, func() {})

		select {
		case code := <-exitCode:
			assert.Equal(t, 1, code)
		case <-time.After(time.Second):
			t.Fatal("process was not aborted")
		}
	})

	t.Run("stopping without signal", func(t *testing.T) {
		sigChannel := make(chan os.Signal)
		done := make(chan struct{})
		finished := make(chan struct{})

		go func() {
			watch(sigChannel, done, func() { t.Error("handler must not be called") })
			close(finished)
		}()
		close(done)

		select {
		case <-finished:
		case <-time.After(time.Second):
			t.Fatal("watch did not return")
		}
	})
}

func TestCancelOnSignal(t *testing.T) {
	ctx, stop := CancelOnSignal(context.Background())
	assert.NoError(t, ctx.Err())

	stop()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestStopIsIdempotent(t *testing.T) {
	_, stop := CancelOnSignal(context.Background())
	stop()
	assert.NotPanics(t, stop)
}
