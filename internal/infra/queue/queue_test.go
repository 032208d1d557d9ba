package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SkiBookingService/pkg/logger"
)

type fakeHandler struct {
	calls []int64
	err   error
}

func (f *fakeHandler) Expire(_ context.Context, bookingID int64) error {
	f.calls = append(f.calls, bookingID)
	return f.err
}

func TestMessage_EncodeDecode(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	body, err := encode(ExpirationMessage{BookingID: 42, ScheduledAt: at, FireAt: at.Add(24 * time.Hour)})
	require.NoError(t, err)

	msg, err := decode(body)
	require.NoError(t, err)
	assert.Equal(t, int64(42), msg.BookingID)
	assert.True(t, msg.FireAt.Equal(at.Add(24*time.Hour)))
}

func TestDecode_Invalid(t *testing.T) {
	_, err := decode([]byte("not json"))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = decode([]byte(`{"booking_id":0}`))
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestExpiration(t *testing.T) {
	assert.Equal(t, "86400000", expiration(24*time.Hour))
	assert.Equal(t, "0", expiration(-time.Second))
}

func TestConsumer_Process(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		handlerErr error
		want       action
		wantCalls  int
	}{
		{name: "handled", body: `{"booking_id":7}`, want: actionAck, wantCalls: 1},
		{name: "handler failure requeues", body: `{"booking_id":7}`, handlerErr: errors.New("db down"), want: actionRequeue, wantCalls: 1},
		{name: "garbage dropped", body: `{`, want: actionDrop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &fakeHandler{err: tt.handlerErr}
			c := NewConsumer("amqp://unused", Topology{}, 1, h, logger.NewNop())

			assert.Equal(t, tt.want, c.process(context.Background(), []byte(tt.body)))
			assert.Len(t, h.calls, tt.wantCalls)
		})
	}
}

func TestConsumer_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConsumer("amqp://127.0.0.1:1/", Topology{}, 1, &fakeHandler{}, logger.NewNop())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}
