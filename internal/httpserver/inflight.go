package httpserver

import (
	"context"
	"sync"

	"github.com/ashkam58/pythongrade3/internal/tutor"
)

// inflight tracks running tutor calls by the widget they will answer.
// Navigation replaces the widget, so its calls are cancelled there.
type inflight struct {
	mu    sync.Mutex
	tasks map[string]map[*tutor.Task]struct{}
}

func newInflight() *inflight {
	return &inflight{tasks: make(map[string]map[*tutor.Task]struct{})}
}

// start runs fn as a task answering widgetID. The task is registered before
// cancel can observe the registry, so a navigation racing the call still
// stops it. remove must be called once the task is no longer awaited.
func (f *inflight) start(ctx context.Context, widgetID string, fn func(context.Context) (string, error)) (t *tutor.Task, remove func()) {
	f.mu.Lock()
	t = tutor.Start(ctx, fn)
	set, ok := f.tasks[widgetID]
	if !ok {
		set = make(map[*tutor.Task]struct{})
		f.tasks[widgetID] = set
	}
	set[t] = struct{}{}
	f.mu.Unlock()

	return t, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(set, t)
		if cur, ok := f.tasks[widgetID]; ok && len(cur) == 0 {
			delete(f.tasks, widgetID)
		}
	}
}

// cancel stops every call waiting on widgetID and reports how many there were.
func (f *inflight) cancel(widgetID string) int {
	f.mu.Lock()
	tasks := make([]*tutor.Task, 0, len(f.tasks[widgetID]))
	for t := range f.tasks[widgetID] {
		tasks = append(tasks, t)
	}
	delete(f.tasks, widgetID)
	f.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
	}
	return len(tasks)
}
