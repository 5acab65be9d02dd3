package domain

import (
	"io"
	"log/slog"
)

// ChannelMetadata provides buffer sizing for the ports of an actor instance.
// It is only used to size availability checks, never to execute them.
type ChannelMetadata interface {
	// Capacity returns the buffer depth connected to the port of the actor.
	Capacity(actor, port string) (int, bool)
}

// CompilationContext is the immutable context threaded through graph
// construction and strategy projection.
type CompilationContext struct {
	Logger   *slog.Logger
	Hooks    LifecycleHooks
	Channels ChannelMetadata
}

// Log returns the configured logger or a discarding one.
func (c CompilationContext) Log() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

// StaticChannels is a ChannelMetadata backed by a map keyed by "actor.port".
type StaticChannels map[string]int

// Capacity implements ChannelMetadata.
func (s StaticChannels) Capacity(actor, port string) (int, bool) {
	c, ok := s[actor+"."+port]
	return c, ok
}
