package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCount fails when more than limit goroutines are running.
func GoroutineCount(limit int) Check {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("goroutine count %d exceeds %d", n, limit)
		}
		return nil
	}
}

// Pinger is implemented by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping adapts a Pinger into a Check.
func Ping(p Pinger) Check {
	return func(ctx context.Context) error {
		return errors.Wrap(p.Ping(ctx), "ping")
	}
}
