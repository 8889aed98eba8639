package notification

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/google/uuid"
)

// Config holds notification service configuration
type Config struct {
	WorkerCount  int           // default: 2
	QueueSize    int           // default: 256
	MaxRetries   int           // default: 3
	RetryBackoff time.Duration // default: 1 second, doubled per attempt
	SendTimeout  time.Duration // default: 10 seconds
}

type service struct {
	transport notification.Transport
	hub       *sse.Hub
	config    Config

	queue   chan notification.Message
	wg      sync.WaitGroup
	stopCh  chan struct{}
	mu      sync.RWMutex
	stopped bool
}

// NewNotificationService creates a new notification service with background workers.
// hub may be nil; when set, every delivered message is also pushed to the live feed.
func NewNotificationService(transport notification.Transport, hub *sse.Hub, cfg Config) notification.Service {
	// Set defaults
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 256
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = 10 * time.Second
	}

	s := &service{
		transport: transport,
		hub:       hub,
		config:    cfg,
		queue:     make(chan notification.Message, cfg.QueueSize),
		stopCh:    make(chan struct{}),
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)

	return s
}

// Notify queues a message for async delivery. A full queue drops the message.
func (s *service) Notify(ctx context.Context, topic notification.Topic, text string) error {
	if strings.TrimSpace(text) == "" {
		return notification.ErrEmptyMessage
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return notification.ErrServiceStopped
	}

	msg := notification.Message{
		ID:        uuid.New().String(),
		Topic:     topic,
		Text:      text,
		CreatedAt: time.Now(),
	}

	select {
	case s.queue <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		slog.Warn("Notification queue full, dropping message", "topic", topic, "id", msg.ID)
		return notification.ErrQueueFull
	}
}

// worker is the background worker that processes the notification queue
func (s *service) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case msg := <-s.queue:
			s.deliver(id, msg)
		case <-s.stopCh:
			// Drain what was accepted before Stop.
			for {
				select {
				case msg := <-s.queue:
					s.deliver(id, msg)
				default:
					return
				}
			}
		}
	}
}

func (s *service) deliver(worker int, msg notification.Message) {
	var lastErr error
	for attempt := 1; attempt <= s.config.MaxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.SendTimeout)
		err := s.transport.Send(ctx, msg)
		cancel()

		if err == nil {
			if s.hub != nil {
				s.hub.Publish(sse.Event{Stream: sse.StreamAll, Event: "notification", Data: msg})
			}
			return
		}

		lastErr = err
		slog.Warn("Notification delivery failed",
			"worker", worker,
			"id", msg.ID,
			"topic", msg.Topic,
			"attempt", attempt,
			"max_retries", s.config.MaxRetries,
			"error", err,
		)

		if attempt < s.config.MaxRetries {
			time.Sleep(s.config.RetryBackoff << (attempt - 1))
		}
	}

	slog.Error("Notification dropped after retries", "id", msg.ID, "topic", msg.Topic, "error", lastErr)
}

// Stop rejects new messages, delivers the queued ones and waits for the workers.
func (s *service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("Notification service stopped")
}
