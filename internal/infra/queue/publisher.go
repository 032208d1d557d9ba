package queue

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher ставит задачи истечения бронирований в delay-очередь
type Publisher struct {
	url      string
	topology Topology
	logger   Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher подключается к брокеру и объявляет топологию
func NewPublisher(url string, topology Topology, logger Logger) (*Publisher, error) {
	p := &Publisher{url: url, topology: topology, logger: logger}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("%w: dial: %v", ErrConnection, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: channel open: %v", ErrConnection, err)
	}

	if err := declare(ch, p.topology); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	p.conn, p.ch = conn, ch
	return nil
}

// Schedule публикует задачу истечения бронирования, которая сработает через delay
func (p *Publisher) Schedule(ctx context.Context, bookingID int64, delay time.Duration) error {
	now := time.Now().UTC()
	body, err := encode(ExpirationMessage{
		BookingID:   bookingID,
		ScheduledAt: now,
		FireAt:      now.Add(delay),
	})
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPublish, err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    now,
		Expiration:   expiration(delay),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		p.logger.Warn("queue: publisher channel closed, reconnecting")
		p.closeLocked()
		if err := p.connect(); err != nil {
			return err
		}
	}

	if err := p.ch.PublishWithContext(ctx, "", p.topology.DelayQueue, false, false, pub); err != nil {
		return fmt.Errorf("%w: booking id=%d: %v", ErrPublish, bookingID, err)
	}

	p.logger.Info("queue: scheduled expiration of booking id=%d in %s", bookingID, delay)
	return nil
}

// expiration TTL сообщения в миллисекундах в формате AMQP
func expiration(delay time.Duration) string {
	ms := delay.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return strconv.FormatInt(ms, 10)
}

func (p *Publisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close закрывает канал и соединение
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}
