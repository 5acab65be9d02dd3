package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/streamblocks/actormachine/internal/logging"
	"github.com/streamblocks/actormachine/pkg/domain"
)

// SignalContext is a context cancelled by SIGINT or SIGTERM that remembers
// the signal which cancelled it.
type SignalContext struct {
	context.Context
	Cancel context.CancelFunc
	sig    atomic.Value // os.Signal
}

// NewSignalContext works like signal.NotifyContext but keeps the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case s := <-ch:
			sc.sig.Store(s)
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	s, _ := sc.sig.Load().(os.Signal)
	return s
}

// CreateLogger configures the application logger.
// Only debug mode logs, and always to Stderr so stdout stays parseable.
func CreateLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGraphBuilt: func(e *domain.GraphEvent) {
			logger.Debug("Graph Built", "actor", e.Actor, "states", e.States, "transitions", e.Transitions, "pruned", e.Pruned)
		},
		OnStatePruned: func(e *domain.GraphEvent) {
			logger.Debug("State Pruned", "actor", e.Actor, "state", e.State)
		},
		OnProjected: func(e *domain.ProjectionEvent) {
			logger.Debug("Projected", "actor", e.Actor, "strategy", e.Strategy, "size", e.Size)
		},
		OnFire: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Fire", "actor", e.Actor, "state", e.State, "transition", e.Transition, "evals", e.Evaluations)
		},
		OnStall: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Stall", "actor", e.Actor, "state", e.State, "evals", e.Evaluations)
		},
	}
}
