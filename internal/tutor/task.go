package tutor

import (
	"context"
	"sync"
)

// Result is the outcome of one assistant call: Text on success, Err on failure.
type Result struct {
	Text string
	Err  error
}

func (r Result) OK() bool { return r.Err == nil }

// Reply is the transcript text for r.
func (r Result) Reply() string {
	switch {
	case r.Err != nil:
		return FallbackCloud
	case r.Text == "":
		return FallbackFuzzy
	default:
		return r.Text
	}
}

// Task is one in-flight call. It is bound to the context it was started
// with and can be cancelled independently.
type Task struct {
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once
	res    Result
}

// Start runs fn in its own goroutine.
func Start(ctx context.Context, fn func(context.Context) (string, error)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer cancel()
		text, err := fn(ctx)
		t.finish(Result{Text: text, Err: err})
	}()
	return t
}

func (t *Task) finish(r Result) {
	t.once.Do(func() {
		t.res = r
		close(t.done)
	})
}

// Cancel stops the call; Wait then reports context.Canceled unless the call
// had already finished.
func (t *Task) Cancel() {
	t.cancel()
	t.finish(Result{Err: context.Canceled})
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) Result {
	select {
	case <-t.done:
		return t.res
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
}

// Ask starts a tutoring call and waits for it.
func Ask(ctx context.Context, a Assistant, req Request) Result {
	return Start(ctx, func(ctx context.Context) (string, error) {
		return a.Help(ctx, req)
	}).Wait(ctx)
}
