// Package logctx threads a log sink through context.Context so that
// deeply nested calls (mutation handlers, reporting agents, service
// backends) can log without a logger parameter on every signature.
package logctx

import (
	"context"
	"io"
	"os"
)

type writerKey struct{}

// With returns a new context carrying w as the log destination.
func With(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, writerKey{}, w)
}

// Writer returns the context's log destination, or os.Stdout if none
// was set.
//
//	slog.New(slog.NewTextHandler(logctx.Writer(ctx), nil))
func Writer(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(writerKey{}).(io.Writer); ok && w != nil {
		return w
	}
	return os.Stdout
}
