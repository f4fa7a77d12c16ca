package logx

import (
	"context"

	"pkt.systems/ahalaj/schema"
	"pkt.systems/pslog"
)

type contextKey int

const (
	tabKey contextKey = iota
	surfaceKey
)

// Surface names the front end a request arrived through.
type Surface string

const (
	// SurfaceHTTP is the web form.
	SurfaceHTTP Surface = "http"
	// SurfaceSSH is the SSH shell.
	SurfaceSSH Surface = "ssh"
	// SurfaceTUI is the terminal UI.
	SurfaceTUI Surface = "tui"
	// SurfaceCLI is a one-shot command.
	SurfaceCLI Surface = "cli"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithTab annotates the logger with the tab id if present.
func WithTab(ctx context.Context, tabID schema.TabID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if tabID != "" {
		if current, ok := ctx.Value(tabKey).(schema.TabID); ok && current == tabID {
			return log
		}
		log = log.With("tab", tabID)
	}
	return log
}

// WithItem annotates the logger with an item id.
func WithItem(log pslog.Logger, itemID schema.ItemID) pslog.Logger {
	return log.With("item", itemID.String())
}

// ContextWithTab stores the tab marker on the context for log de-duplication.
func ContextWithTab(ctx context.Context, tabID schema.TabID) context.Context {
	if ctx == nil || tabID == "" {
		return ctx
	}
	return context.WithValue(ctx, tabKey, tabID)
}

// ContextWithTabLogger attaches the logger and tab marker to the context.
func ContextWithTabLogger(ctx context.Context, log pslog.Logger, tabID schema.TabID) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithTab(ctx, tabID)
}

// ContextWithSurface attaches a logger annotated with the surface name.
func ContextWithSurface(ctx context.Context, surface Surface) context.Context {
	if ctx == nil || surface == "" {
		return ctx
	}
	if current, ok := ctx.Value(surfaceKey).(Surface); ok && current == surface {
		return ctx
	}
	ctx = pslog.ContextWithLogger(ctx, pslog.Ctx(ctx).With("surface", string(surface)))
	return context.WithValue(ctx, surfaceKey, surface)
}

// CopyContextFields copies tab and surface markers from src to dst.
func CopyContextFields(dst context.Context, src context.Context) context.Context {
	if src == nil {
		return dst
	}
	if tab, ok := src.Value(tabKey).(schema.TabID); ok && tab != "" {
		dst = ContextWithTab(dst, tab)
	}
	if surface, ok := src.Value(surfaceKey).(Surface); ok && surface != "" {
		dst = context.WithValue(dst, surfaceKey, surface)
	}
	return dst
}
