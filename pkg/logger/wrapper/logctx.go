package wrap

import (
	"context"
)

type (
	// LogCtx holds contextual information for logging
	LogCtx struct {
		Action    string
		UserID    string
		RequestID string
		ZoneID    string
		PlanID    string
		SimID     string
	}

	// logCtxKeyStruct is an unexported type for context keys defined in this package.
	logCtxKeyStruct struct{}
)

// LogCtxKey is the key for log context values
var LogCtxKey = &logCtxKeyStruct{}

// WithLogCtx returns a new context with the provided LogCtx.
// Empty fields of newLc are taken from the LogCtx already stored in ctx.
func WithLogCtx(ctx context.Context, newLc LogCtx) context.Context {
	if lc, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
		if newLc.Action == "" {
			newLc.Action = lc.Action
		}
		if newLc.UserID == "" {
			newLc.UserID = lc.UserID
		}
		if newLc.RequestID == "" {
			newLc.RequestID = lc.RequestID
		}
		if newLc.ZoneID == "" {
			newLc.ZoneID = lc.ZoneID
		}
		if newLc.PlanID == "" {
			newLc.PlanID = lc.PlanID
		}
		if newLc.SimID == "" {
			newLc.SimID = lc.SimID
		}
	}
	return context.WithValue(ctx, LogCtxKey, newLc)
}

func update(ctx context.Context, fn func(lc *LogCtx)) context.Context {
	lc, _ := ctx.Value(LogCtxKey).(LogCtx)
	fn(&lc)
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithUserID adds or updates the UserID in the LogCtx within the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.UserID = userID })
}

// WithRequestID adds or updates the RequestID in the LogCtx within the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.RequestID = requestID })
}

// WithZoneID adds or updates the ZoneID in the LogCtx within the context
func WithZoneID(ctx context.Context, zoneID string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.ZoneID = zoneID })
}

// WithPlanID adds or updates the PlanID in the LogCtx within the context
func WithPlanID(ctx context.Context, planID string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.PlanID = planID })
}

// WithSimID adds or updates the SimID in the LogCtx within the context
func WithSimID(ctx context.Context, simID string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.SimID = simID })
}

// WithAction adds or updates the Action in the LogCtx within the context
func WithAction(ctx context.Context, action string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.Action = action })
}

// FromContext returns the LogCtx stored in ctx, if any.
func FromContext(ctx context.Context) (LogCtx, bool) {
	lc, ok := ctx.Value(LogCtxKey).(LogCtx)
	return lc, ok
}

// GetRequestID returns the request id stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	lc, _ := FromContext(ctx)
	return lc.RequestID
}
