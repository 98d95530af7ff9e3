package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/DuelBot_Go/internal/logger"
)

// ErrPublisherClosed is returned when publishing after Shutdown
var ErrPublisherClosed = errors.New("resilient publisher is shut down")

type retryItem struct {
	event    Event
	attempts int
	lastErr  error
}

// ResilientPublisher wraps a Bus so that failed deliveries are retried in the
// background with exponential backoff and finally written to a dead-letter file.
type ResilientPublisher struct {
	inner      Bus
	maxRetries int
	baseDelay  time.Duration
	deadLetter *DeadLetterWriter

	queue    chan retryItem
	shutdown chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewResilientPublisher creates a publisher and starts its retry loop
func NewResilientPublisher(inner Bus, maxRetries int, baseDelay time.Duration, deadLetterPath string) (*ResilientPublisher, error) {
	dlw, err := NewDeadLetterWriter(deadLetterPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dead letter file: %w", err)
	}
	if maxRetries <= 0 {
		maxRetries = RetryMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = RetryInitialDelaySeconds * time.Second
	}

	p := &ResilientPublisher{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		deadLetter: dlw,
		queue:      make(chan retryItem, RetryQueueBufferSize),
		shutdown:   make(chan struct{}),
	}
	p.wg.Add(1)
	go p.retryLoop()
	return p, nil
}

// PublishWithRetry publishes once and queues the event for retry on failure.
// It never returns the delivery error to the caller.
func (p *ResilientPublisher) PublishWithRetry(ctx context.Context, evt Event) {
	err := p.inner.Publish(ctx, evt)
	if err == nil {
		return
	}

	logger.FromContext(ctx).Warn(LogMsgEventPublishFailed, "event_type", evt.Type, "error", err)
	p.enqueue(retryItem{event: evt, attempts: 1, lastErr: err})
}

// Publish implements Bus
func (p *ResilientPublisher) Publish(ctx context.Context, evt Event) error {
	select {
	case <-p.shutdown:
		return ErrPublisherClosed
	default:
	}
	p.PublishWithRetry(ctx, evt)
	return nil
}

// Subscribe delegates to the inner bus
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.inner.Subscribe(eventType, handler)
}

func (p *ResilientPublisher) enqueue(item retryItem) {
	select {
	case <-p.shutdown:
		logger.Warn(LogMsgEventDroppedShutdown, "event_type", item.event.Type)
		p.writeDeadLetter(item)
		return
	default:
	}

	select {
	case p.queue <- item:
	default:
		logger.Error(LogMsgRetryQueueFull, "event_type", item.event.Type)
		p.writeDeadLetter(item)
	}
}

func (p *ResilientPublisher) retryLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.shutdown:
			p.drain()
			return
		case item := <-p.queue:
			p.retry(item)
		}
	}
}

func (p *ResilientPublisher) retry(item retryItem) {
	for item.attempts <= p.maxRetries {
		timer := time.NewTimer(CalculateRetryDelay(p.baseDelay, item.attempts))
		select {
		case <-p.shutdown:
			timer.Stop()
			p.writeDeadLetter(item)
			return
		case <-timer.C:
		}

		item.attempts++
		err := p.inner.Publish(context.Background(), item.event)
		if err == nil {
			logger.Info(LogMsgEventRetrySucceeded, "event_type", item.event.Type, "attempts", item.attempts)
			return
		}
		item.lastErr = err
		logger.Warn(LogMsgEventRetryFailed, "event_type", item.event.Type, "attempt", item.attempts, "error", err)
	}

	logger.Error(LogMsgEventRetryExhausted, "event_type", item.event.Type, "attempts", item.attempts)
	p.writeDeadLetter(item)
}

func (p *ResilientPublisher) drain() {
	drained := 0
	for {
		select {
		case item := <-p.queue:
			p.writeDeadLetter(item)
			drained++
		default:
			if drained > 0 {
				logger.Info(LogMsgQueueDrainedShutdown, "count", drained)
			}
			return
		}
	}
}

func (p *ResilientPublisher) writeDeadLetter(item retryItem) {
	if err := p.deadLetter.Write(item.event, item.attempts, item.lastErr); err != nil {
		logger.Error(LogMsgDeadLetterWriteFailed, "event_type", item.event.Type, "error", err)
	}
}

// Shutdown stops retrying, dead-letters anything still queued and closes the file
func (p *ResilientPublisher) Shutdown(ctx context.Context) error {
	p.once.Do(func() { close(p.shutdown) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return p.deadLetter.Close()
	case <-ctx.Done():
		logger.Warn(LogMsgShutdownTimeout)
		return ctx.Err()
	}
}

var _ Bus = (*ResilientPublisher)(nil)
