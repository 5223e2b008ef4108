package kafka

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/iwtcode/spiroBench/internal/domain"
	"github.com/iwtcode/spiroBench/internal/middleware/logging"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	block  chan struct{}
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.block != nil {
		<-w.block
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testLogger() *logging.Logger {
	return logging.NewWithWriter(&logging.Config{Enabled: false}, "TEST", io.Discard)
}

func TestPublishDeliversOnClose(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 8, testLogger())

	require.True(t, p.Publish(domain.BenchEvent{Type: domain.EventLog, Message: "hello", Timestamp: time.Unix(1, 0)}))
	require.True(t, p.Publish(domain.BenchEvent{Type: domain.EventTelemetry, SessionID: "s-1"}))
	require.NoError(t, p.Close())

	require.True(t, w.closed)
	require.Len(t, w.msgs, 2)
	require.Equal(t, []byte(domain.EventLog), w.msgs[0].Key)
	require.Equal(t, []byte("s-1"), w.msgs[1].Key)

	var got domain.BenchEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	require.Equal(t, "hello", got.Message)
}

func TestPublishDropsWhenQueueIsFull(t *testing.T) {
	w := &fakeWriter{block: make(chan struct{})}
	p := newProducer(w, 1, testLogger())

	// первое событие забирает drain и зависает на записи, второе занимает очередь
	require.True(t, p.Publish(domain.BenchEvent{Type: domain.EventLog}))
	require.Eventually(t, func() bool { return len(p.queue) == 0 }, time.Second, time.Millisecond)
	require.True(t, p.Publish(domain.BenchEvent{Type: domain.EventLog}))
	require.False(t, p.Publish(domain.BenchEvent{Type: domain.EventLog}))
	require.Equal(t, int64(1), p.Dropped())

	close(w.block)
	require.NoError(t, p.Close())
	require.Len(t, w.msgs, 2)
}

func TestPublishAfterCloseIsRejected(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 4, testLogger())
	require.NoError(t, p.Close())

	require.NotPanics(t, func() {
		require.False(t, p.Publish(domain.BenchEvent{Type: domain.EventLog}))
	})
	require.NoError(t, p.Close(), "повторное закрытие")
	require.Empty(t, w.msgs)
	require.Zero(t, p.Dropped(), "отказ после закрытия не считается переполнением")
}
