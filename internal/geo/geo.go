// Package geo resolves the caller's approximate location. Location is
// optional context for discovery: every failure degrades to "no location".
package geo

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/model"
)

// ErrUnavailable means no location could be determined.
var ErrUnavailable = eris.New("geo: location unavailable")

// Locator produces a location.
type Locator interface {
	Locate(ctx context.Context) (*model.Location, error)
}

// Static is a fixed location, typically from flags or a request body.
type Static model.Location

// Locate returns the fixed coordinates.
func (s Static) Locate(_ context.Context) (*model.Location, error) {
	loc := model.Location(s)
	return &loc, nil
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (*model.Location, error)

// Locate calls f.
func (f LocatorFunc) Locate(ctx context.Context) (*model.Location, error) {
	return f(ctx)
}

// Probe asks locator for a location, bounded by timeout. Denial, timeout, or
// a nil locator all yield nil; the reason is logged at debug level only.
func Probe(ctx context.Context, locator Locator, timeout time.Duration) *model.Location {
	log := zap.L().With(zap.String("component", "geo"))
	if locator == nil {
		log.Debug("no locator configured")
		return nil
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		loc *model.Location
		err error
	}
	ch := make(chan result, 1)
	go func() {
		loc, err := locator.Locate(ctx)
		ch <- result{loc, err}
	}()

	select {
	case <-ctx.Done():
		log.Debug("location probe timed out", zap.Error(ctx.Err()))
		return nil
	case r := <-ch:
		if r.err != nil {
			log.Debug("location probe failed", zap.Error(r.err))
			return nil
		}
		if r.loc == nil {
			log.Debug("location probe returned nothing")
			return nil
		}
		return r.loc
	}
}
