package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// declare объявляет exchange, рабочую очередь и delay-очередь с dead-letter на рабочую
// Операции идемпотентны
func declare(ch *amqp.Channel, t Topology) error {
	if err := ch.ExchangeDeclare(t.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("%w: exchange declare %s: %v", ErrConnection, t.Exchange, err)
	}

	if _, err := ch.QueueDeclare(t.WorkQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("%w: queue declare %s: %v", ErrConnection, t.WorkQueue, err)
	}
	if err := ch.QueueBind(t.WorkQueue, t.WorkQueue, t.Exchange, false, nil); err != nil {
		return fmt.Errorf("%w: queue bind %s: %v", ErrConnection, t.WorkQueue, err)
	}

	delayArgs := amqp.Table{
		"x-dead-letter-exchange":    t.Exchange,
		"x-dead-letter-routing-key": t.WorkQueue,
	}
	if _, err := ch.QueueDeclare(t.DelayQueue, true, false, false, false, delayArgs); err != nil {
		return fmt.Errorf("%w: queue declare %s: %v", ErrConnection, t.DelayQueue, err)
	}

	return nil
}
