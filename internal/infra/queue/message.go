// Package queue реализует отложенные задачи истечения бронирований на RabbitMQ.
// Задача публикуется в delay-очередь с TTL сообщения; по истечении TTL брокер
// перекладывает ее через dead-letter exchange в рабочую очередь.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidMessage = errors.New("queue: invalid message")
	ErrPublish        = errors.New("queue: publish failed")
	ErrConnection     = errors.New("queue: connection error")
)

// ExpirationMessage тело задачи истечения бронирования
type ExpirationMessage struct {
	BookingID   int64     `json:"booking_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	FireAt      time.Time `json:"fire_at"`
}

func encode(msg ExpirationMessage) ([]byte, error) {
	return json.Marshal(msg)
}

func decode(body []byte) (ExpirationMessage, error) {
	var msg ExpirationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.BookingID <= 0 {
		return msg, fmt.Errorf("%w: booking_id must be positive", ErrInvalidMessage)
	}
	return msg, nil
}

// Topology имена exchange и очередей
type Topology struct {
	Exchange   string
	WorkQueue  string
	DelayQueue string
}
