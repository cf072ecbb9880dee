package tutor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAssistant struct {
	reply string
	err   error
	got   Request
}

func (s *stubAssistant) Help(_ context.Context, req Request) (string, error) {
	s.got = req
	return s.reply, s.err
}

func TestNewWidgetGreets(t *testing.T) {
	w := NewWidget()
	require.Len(t, w.Messages, 1)
	assert.Equal(t, Message{Role: RoleModel, Text: Greeting}, w.Messages[0])
	assert.False(t, w.Busy)
	assert.NotEmpty(t, w.ID)
	assert.NotEqual(t, w.ID, NewWidget().ID)
}

func TestSubmitIgnoresBlank(t *testing.T) {
	w := NewWidget()
	assert.False(t, w.Submit("   \n"))
	assert.Len(t, w.Messages, 1)
	assert.False(t, w.Busy)
}

func TestSubmitAndResolve(t *testing.T) {
	w := NewWidget()
	require.True(t, w.Submit("why quotes?"))
	assert.True(t, w.Busy)
	assert.Equal(t, Message{Role: RoleUser, Text: "why quotes?"}, w.Last())

	w.Resolve(Result{Text: "Text needs quotes! 🎉"})
	assert.False(t, w.Busy)
	assert.Equal(t, Message{Role: RoleModel, Text: "Text needs quotes! 🎉"}, w.Last())
	assert.Len(t, w.Messages, 3)
}

func TestResultReply(t *testing.T) {
	assert.Equal(t, "hi", Result{Text: "hi"}.Reply())
	assert.Equal(t, FallbackFuzzy, Result{}.Reply())
	assert.Equal(t, FallbackCloud, Result{Err: errors.New("boom")}.Reply())
	assert.Equal(t, FallbackCloud, Result{Text: "partial", Err: errors.New("boom")}.Reply())
}

func TestAskPassesRequest(t *testing.T) {
	a := &stubAssistant{reply: "Try a bracket!"}
	req := Request{Context: "Learning Python print() function", Code: `print("Hi")`, Question: "help"}

	res := Ask(context.Background(), a, req)
	require.True(t, res.OK())
	assert.Equal(t, "Try a bracket!", res.Text)
	assert.Equal(t, req, a.got)
}

func TestAskFailure(t *testing.T) {
	res := Ask(context.Background(), &stubAssistant{err: errors.New("offline")}, Request{Question: "q"})
	assert.False(t, res.OK())
	assert.Equal(t, FallbackCloud, res.Reply())
}

func TestTaskCancel(t *testing.T) {
	started := make(chan struct{})
	task := Start(context.Background(), func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	})
	<-started
	task.Cancel()

	res := task.Wait(context.Background())
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.False(t, res.OK())

	// The result is fixed once cancelled.
	task.Cancel()
	assert.ErrorIs(t, task.Wait(context.Background()).Err, context.Canceled)
}

func TestTaskWaitRespectsCallerContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	task := Start(context.Background(), func(ctx context.Context) (string, error) {
		<-release
		return "late", nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	res := task.Wait(ctx)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}
