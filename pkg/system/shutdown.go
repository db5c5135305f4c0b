package system

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"
)

type ShutdownHandler func()

var exit = os.Exit

// RegisterGracefulShutdownHandler calls handler on the first SIGINT or SIGTERM.
// A second signal terminates the process. The returned function stops listening.
func RegisterGracefulShutdownHandler(handler ShutdownHandler) func() {
	sigChannel := make(chan os.Signal, 2)
	signal.Notify(sigChannel, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go watch(sigChannel, done, handler)

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigChannel)
			close(done)
		})
	}
}

// CancelOnSignal returns a context that is cancelled on SIGINT or SIGTERM.
// Files already being processed are finished, the rest are left untouched.
func CancelOnSignal(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	stop := RegisterGracefulShutdownHandler(func() {
		cancel()
	})
	return ctx, func() {
		stop()
		cancel()
	}
}

func watch(sigChannel <-chan os.Signal, done <-chan struct{}, handler ShutdownHandler) {
	select {
	case <-done:
		return
	case <-sigChannel:
		log.Warn().Msg("Received interrupt signal, finishing current files. Interrupt again to abort")
		handler()
	}

	select {
	case <-done:
	case <-sigChannel:
		log.Error().Msg("Received second interrupt signal, aborting")
		exit(1)
	}
}
