// Package control serializes configuration reloads and dispatches
// control commands.
package control

import (
	"context"
	"log/slog"
	"sync"
)

const CommandReload = "reload"

type Handler func(ctx context.Context) error

// Coordinator runs registered reload handlers at most once at a time.
// Requests arriving while a reload is in flight coalesce into a single
// pending flag, so at most one extra cycle runs afterwards no matter
// how many requests arrived.
type Coordinator struct {
	mu        sync.Mutex
	handlers  []Handler
	reloading bool
	pending   bool
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// RegisterReloadHandler adds a handler; registration must finish
// before the first request.
func (c *Coordinator) RegisterReloadHandler(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

// OnCommand dispatches a control command. Unknown commands are logged
// and ignored.
func (c *Coordinator) OnCommand(ctx context.Context, cmd string) {
	switch cmd {
	case CommandReload:
		slog.Info("received reload command")
		c.Request(ctx)
	default:
		slog.Warn("unknown control command", "cmd", cmd)
	}
}

// Request asks for a reload. Returns immediately; the reload itself
// runs asynchronously.
func (c *Coordinator) Request(ctx context.Context) {
	c.mu.Lock()
	if c.reloading {
		c.pending = true
		c.mu.Unlock()
		slog.Info("reload requested while one is in flight, delaying until it completes")
		return
	}
	c.reloading = true
	handlers := c.handlers
	c.mu.Unlock()

	go c.run(ctx, handlers)
}

func (c *Coordinator) run(ctx context.Context, handlers []Handler) {
	for {
		for _, h := range handlers {
			if err := h(ctx); err != nil {
				// previous configuration stays active; no retry until
				// the next explicit request
				slog.Error("reload failed, keeping previous configuration", "error", err)
				break
			}
		}

		c.mu.Lock()
		if c.pending {
			c.pending = false
			c.mu.Unlock()
			slog.Info("running coalesced reload")
			continue
		}
		c.reloading = false
		c.mu.Unlock()
		slog.Info("reload completed")
		return
	}
}

// Idle reports whether no reload is running or pending.
func (c *Coordinator) Idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.reloading && !c.pending
}
