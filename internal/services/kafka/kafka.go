package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iwtcode/spiroBench/internal/config"
	"github.com/iwtcode/spiroBench/internal/domain"
	"github.com/iwtcode/spiroBench/internal/interfaces"
	"github.com/iwtcode/spiroBench/internal/middleware/logging"

	"github.com/segmentio/kafka-go"
)

const writeTimeout = 2 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	writer  messageWriter
	logger  *logging.Logger
	queue   chan domain.BenchEvent
	wg      sync.WaitGroup
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// NewKafkaProducer создает новый экземпляр продюсера Kafka
func NewKafkaProducer(cfg *config.AppConfig, logger *logging.Logger) (interfaces.KafkaService, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBroker),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return newProducer(writer, cfg.Runner.QueueSize, logger), nil
}

func newProducer(w messageWriter, queueSize int, logger *logging.Logger) *KafkaProducer {
	if queueSize <= 0 {
		queueSize = 1
	}
	p := &KafkaProducer{
		writer: w,
		logger: logger.WithPrefix("KAFKA"),
		queue:  make(chan domain.BenchEvent, queueSize),
	}
	p.wg.Add(1)
	go p.drain()
	return p
}

// Produce отправляет сообщение в Kafka
func (p *KafkaProducer) Produce(ctx context.Context, key, value []byte) error {
	return p.writer.WriteMessages(ctx,
		kafka.Message{
			Key:   key,
			Value: value,
		},
	)
}

// Publish не блокирует цикл стенда: при переполненной очереди событие отбрасывается.
// После Close события не принимаются.
func (p *KafkaProducer) Publish(event domain.BenchEvent) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.queue <- event:
		return true
	default:
		if n := p.dropped.Add(1); n%100 == 1 {
			p.logger.Warn("Telemetry queue is full, dropping events", "dropped", n)
		}
		return false
	}
}

// Dropped возвращает число отброшенных событий.
func (p *KafkaProducer) Dropped() int64 {
	return p.dropped.Load()
}

func (p *KafkaProducer) drain() {
	defer p.wg.Done()
	for event := range p.queue {
		value, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("Failed to serialize event for Kafka", "type", event.Type, "error", err)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err = p.Produce(ctx, event.Key(), value)
		cancel()
		if err != nil {
			p.logger.Error("Failed to send event to Kafka", "type", event.Type, "error", err)
		}
	}
}

// Close дожидается отправки очереди и закрывает соединение с Kafka.
// Повторный вызов ничего не делает.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return p.writer.Close()
}
