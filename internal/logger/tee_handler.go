package logger

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler duplicates records to a local handler and a remote shipping
// handler. The remote side is best-effort: its failure is reported but the
// local write has already happened by then.
type teeHandler struct {
	local  slog.Handler
	remote slog.Handler
}

// newTeeHandler pairs the local JSON handler with a remote shipper. With a
// nil remote the local handler is returned as-is.
func newTeeHandler(local, remote slog.Handler) slog.Handler {
	if remote == nil {
		return local
	}
	return &teeHandler{local: local, remote: remote}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.local.Enabled(ctx, level) || h.remote.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var localErr, remoteErr error
	if h.local.Enabled(ctx, r.Level) {
		localErr = h.local.Handle(ctx, r.Clone())
	}
	if h.remote.Enabled(ctx, r.Level) {
		remoteErr = h.remote.Handle(ctx, r.Clone())
	}
	return errors.Join(localErr, remoteErr)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{
		local:  h.local.WithAttrs(attrs),
		remote: h.remote.WithAttrs(attrs),
	}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{
		local:  h.local.WithGroup(name),
		remote: h.remote.WithGroup(name),
	}
}
