package wrap

import (
	"context"
	"errors"
)

// ctxError carries the log context of the place where an error happened
// up to the place where it is logged.
type ctxError struct {
	err    error
	logCtx LogCtx
}

func (e *ctxError) Error() string { return e.err.Error() }
func (e *ctxError) Unwrap() error { return e.err }

// Error wraps err with the LogCtx currently stored in ctx.
// Wrapping an already wrapped error produces a new outer wrapper, so the
// innermost context is kept in the chain and the latest one wins in ErrorCtx.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	c, _ := ctx.Value(LogCtxKey).(LogCtx)
	return &ctxError{
		err:    err,
		logCtx: c,
	}
}

// ErrorCtx returns ctx with the LogCtx carried by err merged over it.
// Fields the error did not record are kept from ctx.
func ErrorCtx(ctx context.Context, err error) context.Context {
	var e *ctxError
	if !errors.As(err, &e) || e == nil {
		return ctx
	}
	return WithLogCtx(ctx, e.logCtx)
}
