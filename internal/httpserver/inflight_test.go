package httpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInflightCancel(t *testing.T) {
	f := newInflight()
	block := func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	a, removeA := f.start(context.Background(), "w1", block)
	b, removeB := f.start(context.Background(), "w1", block)
	other, removeOther := f.start(context.Background(), "w2", func(context.Context) (string, error) {
		return "hi", nil
	})

	assert.Equal(t, "hi", other.Wait(context.Background()).Text)
	removeOther()
	assert.Zero(t, f.cancel("w2"))

	assert.Equal(t, 2, f.cancel("w1"))
	assert.ErrorIs(t, a.Wait(context.Background()).Err, context.Canceled)
	assert.ErrorIs(t, b.Wait(context.Background()).Err, context.Canceled)
	removeA()
	removeB()
	assert.Zero(t, f.cancel("w1"))
	assert.Empty(t, f.tasks)
}
