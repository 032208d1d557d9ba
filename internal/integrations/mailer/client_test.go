package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/m04kA/SMC-SkiBookingService/pkg/logger"
)

type fakeSender struct {
	mu   sync.Mutex
	msgs []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, messages...)
	return f.err
}

func notification() Notification {
	return Notification{
		Email:       "ana@example.com",
		UserName:    "Ana",
		ServiceName: "Grand",
		DateFrom:    time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		DateTo:      time.Date(2023, 12, 4, 0, 0, 0, 0, time.UTC),
	}
}

func TestClient_NotifyApproved(t *testing.T) {
	s := &fakeSender{}
	c := &Client{sender: s, from: "noreply@ski.example", logger: logger.NewNop()}

	require.NoError(t, c.NotifyApproved(context.Background(), notification()))
	require.Len(t, s.msgs, 1)

	msg := s.msgs[0]
	assert.Equal(t, []string{subjectApproved}, msg.GetGenHeader(mail.HeaderSubject))
	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, rcpts)
}

func TestClient_SendError(t *testing.T) {
	s := &fakeSender{err: errors.New("connection refused")}
	c := &Client{sender: s, from: "noreply@ski.example", logger: logger.NewNop()}

	err := c.NotifyDenied(context.Background(), notification())
	assert.ErrorIs(t, err, ErrSend)
}

func TestClient_InvalidAddress(t *testing.T) {
	c := &Client{sender: &fakeSender{}, from: "noreply@ski.example", logger: logger.NewNop()}

	n := notification()
	n.Email = "not an address"
	assert.ErrorIs(t, c.NotifyApproved(context.Background(), n), ErrMessage)
}

func TestDispatcher_SendsInBackground(t *testing.T) {
	s := &fakeSender{err: errors.New("smtp down")}
	c := &Client{sender: s, from: "noreply@ski.example", logger: logger.NewNop()}
	d := NewDispatcher(c, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Approved(ctx, notification())
	d.Denied(ctx, notification())
	cancel()
	d.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Len(t, s.msgs, 2)
}
