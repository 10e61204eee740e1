package goroutine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
	done chan struct{}
}

func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	l.msgs = append(l.msgs, fmt.Sprintf(format, args...))
	l.mu.Unlock()
	close(l.done)
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	rec := &recordingLogger{done: make(chan struct{})}
	handler := NewRecoveryHandler(rec)

	handler.SafeGo(func() { panic("boom") })

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("panic was not reported")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Len(t, rec.msgs, 1)
	assert.Contains(t, rec.msgs[0], "boom")
}

func TestSafeGoWithContext_PassesContext(t *testing.T) {
	handler := NewRecoveryHandler(&recordingLogger{done: make(chan struct{})})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan context.Context, 1)
	handler.SafeGoWithContext(ctx, func(c context.Context) { got <- c })

	select {
	case c := <-got:
		assert.Equal(t, ctx, c)
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}
