// Package source abstracts the delivery of classified input events. The raw
// OS hook lives behind the Source interface; this package ships a
// deterministic synthetic implementation for demos and tests.
package source

import (
	"context"
	"errors"

	"github.com/davrk/keypulse/internal/model"
)

// ErrUnavailable indicates the host denied input capture, for example a
// missing accessibility permission. Attach must return it rather than
// silently delivering nothing.
var ErrUnavailable = errors.New("input capture unavailable")

// Sink accepts classified events from a source. Implementations must be safe
// to call from any goroutine and must not block.
type Sink interface {
	SubmitKey(model.KeyEvent)
	SubmitMouse(model.MouseEvent)
}

// Source delivers classified input events until detached.
type Source interface {
	// Attach starts delivery into sink. It returns an error when capture
	// cannot be established; otherwise the returned detach function stops
	// delivery and does not return until delivery has ceased.
	Attach(ctx context.Context, sink Sink) (detach func(), err error)
}

// AttachFunc adapts a function literal to the Source interface.
type AttachFunc func(ctx context.Context, sink Sink) (func(), error)

// Attach calls the underlying function.
func (f AttachFunc) Attach(ctx context.Context, sink Sink) (func(), error) {
	return f(ctx, sink)
}
