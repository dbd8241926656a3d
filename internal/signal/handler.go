// Package signal turns SIGINT and SIGTERM into context cancellation for pixel commands.
//
// Docker children share the terminal's process group, so they receive the
// interrupt themselves; the handler only makes sure pixel stops scheduling
// further work and that the cancellation cause reads as an interrupt.
//
// Import rules:
//   - CAN import: std lib, internal/errors
//   - MUST NOT import: other internal packages
package signal

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	pixelerrors "github.com/mrz1836/pixel/internal/errors"
)

// Handler manages graceful shutdown by listening for interrupt signals.
// It wraps a context and cancels it with ErrInterrupted as the cause when
// SIGINT or SIGTERM is received.
type Handler struct {
	ctx         context.Context //nolint:containedctx // intentional: handler manages context lifecycle
	cancel      context.CancelCauseFunc
	interrupted chan struct{}
	done        chan struct{}
	once        sync.Once
	stopOnce    sync.Once
	sigChan     chan os.Signal
}

// NewHandler creates a signal handler that listens for SIGINT and SIGTERM.
//
// Usage:
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	ctx = h.Context()
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancelCause(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
		// Buffer of 1 ensures signal.Notify doesn't drop signals if handler is busy.
		sigChan: make(chan os.Signal, 1),
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the cancellable context.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel that closes when an interrupt signal is received.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// WasInterrupted reports whether a signal has been received.
func (h *Handler) WasInterrupted() bool {
	select {
	case <-h.interrupted:
		return true
	default:
		return false
	}
}

// Stop cleans up the signal handler and stops listening for signals.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel(context.Canceled)
	})
}

// handleSignal processes a received signal. Only the first signal has effect.
func (h *Handler) handleSignal() {
	h.once.Do(func() {
		h.cancel(pixelerrors.ErrInterrupted)
		close(h.interrupted)
	})
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.done:
			return
		case <-h.sigChan:
			h.handleSignal()
		}
	}
}

// IsInterrupt reports whether ctx was canceled because of an interrupt signal.
func IsInterrupt(ctx context.Context) bool {
	return ctx.Err() != nil && errors.Is(context.Cause(ctx), pixelerrors.ErrInterrupted)
}
