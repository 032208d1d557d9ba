package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// ExpirationHandler обработчик сработавших задач
type ExpirationHandler interface {
	Expire(ctx context.Context, bookingID int64) error
}

type action int

const (
	actionAck action = iota
	actionRequeue
	actionDrop
)

// Consumer читает рабочую очередь и передает задачи обработчику
// Доставка at-least-once: Ack после обработки, Nack с requeue при ошибке
type Consumer struct {
	url      string
	topology Topology
	prefetch int
	handler  ExpirationHandler
	logger   Logger
}

// NewConsumer создает потребителя рабочей очереди
func NewConsumer(url string, topology Topology, prefetch int, handler ExpirationHandler, logger Logger) *Consumer {
	return &Consumer{
		url:      url,
		topology: topology,
		prefetch: prefetch,
		handler:  handler,
		logger:   logger,
	}
}

// Run переподключается к брокеру с экспоненциальной задержкой до отмены ctx
func (c *Consumer) Run(ctx context.Context) {
	backoff := minBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Error("queue: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("queue: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("%w: channel open: %v", ErrConnection, err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		c.logger.Warn("queue: set QoS failed: %v", err)
	}
	if err := declare(ch, c.topology); err != nil {
		return err
	}

	deliveries, err := ch.Consume(c.topology.WorkQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%w: consume %s: %v", ErrConnection, c.topology.WorkQueue, err)
	}
	c.logger.Info("queue: consuming %s", c.topology.WorkQueue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.settle(d, c.process(ctx, d.Body))
		}
	}
}

// process обрабатывает тело сообщения и решает, как его подтвердить
func (c *Consumer) process(ctx context.Context, body []byte) action {
	msg, err := decode(body)
	if err != nil {
		c.logger.Error("queue: dropping message: %v", err)
		return actionDrop
	}

	if err := c.handler.Expire(ctx, msg.BookingID); err != nil {
		c.logger.Error("queue: expire booking id=%d failed: %v", msg.BookingID, err)
		return actionRequeue
	}
	return actionAck
}

func (c *Consumer) settle(d amqp.Delivery, a action) {
	var err error
	switch a {
	case actionAck:
		err = d.Ack(false)
	case actionRequeue:
		err = d.Nack(false, true)
	case actionDrop:
		err = d.Nack(false, false)
	}
	if err != nil {
		c.logger.Warn("queue: settle delivery tag=%d failed: %v", d.DeliveryTag, err)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
