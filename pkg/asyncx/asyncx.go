// Package asyncx holds the small concurrency helpers used for background
// dispatch. Anything fired through here survives the request that started it.
package asyncx

import (
	"context"

	"github.com/hayat-market/authgate/pkg/logx"
)

// Do fires fn in a goroutine and forgets it. A panic inside fn is recovered
// and logged instead of taking the process down; fire-and-forget work must
// never crash the request path that spawned it.
func Do(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logx.WithFields(logx.Fields{"panic": r}).Error("background task panicked")
			}
		}()
		fn()
	}()
}

// DoCtx fires fn with a context detached from cancellation but still carrying
// the caller's values. The spawning request finishing (or failing) must not
// abort work already handed off.
func DoCtx(ctx context.Context, fn func(context.Context)) {
	detached := context.WithoutCancel(ctx)
	Do(func() { fn(detached) })
}
