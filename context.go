/*
We pass context through context.Context between the wallet router and the
callers that drive it. To do so, hlwallet defines some common keys to store
info, such as the block time and the logger.

There should exist two functions for every XYZ of type T
that we want to support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

WithXYZ may error/panic if the value was previously set
to avoid lower-level modules overwriting the value
(eg. block time)
*/
package hlwallet

import (
	"context"
	"time"

	"github.com/iov-one/hlwallet/errors"
	"github.com/tendermint/tendermint/libs/log"
)

type contextKey int // local to the hlwallet module

const (
	contextKeyLogger contextKey = iota
	contextKeyBlockTime
)

var (
	// DefaultLogger is used for all context that have not
	// set anything themselves
	DefaultLogger = log.NewNopLogger()
)

// WithBlockTime sets the time of the execution environment "now". Every
// operation processed within this context sees this time as the current one.
func WithBlockTime(ctx context.Context, t time.Time) context.Context {
	if _, ok := ctx.Value(contextKeyBlockTime).(time.Time); ok {
		panic("block time already set")
	}
	return context.WithValue(ctx, contextKeyBlockTime, t.UTC())
}

// BlockTime returns current time as declared in the context. An error is
// returned if block time is not present in the context.
func BlockTime(ctx context.Context) (time.Time, error) {
	t, ok := ctx.Value(contextKeyBlockTime).(time.Time)
	if !ok {
		return t, errors.Wrap(errors.ErrHuman, "block time not present in the context")
	}
	return t, nil
}

// WithLogger sets the logger for this context
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or
// DefaultLogger if none was set
func GetLogger(ctx context.Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}
