package mailer

import (
	"context"
	"sync"
	"time"
)

const sendTimeout = 30 * time.Second

// Notifier синхронная отправка уведомлений
type Notifier interface {
	NotifyApproved(ctx context.Context, n Notification) error
	NotifyDenied(ctx context.Context, n Notification) error
}

// Dispatcher отправляет уведомления в фоне; ошибки только логируются
type Dispatcher struct {
	notifier Notifier
	logger   Logger
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, logger Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, logger: logger}
}

// Approved ставит письмо о подтверждении в фоновую отправку
func (d *Dispatcher) Approved(ctx context.Context, n Notification) {
	d.dispatch(ctx, "approved", n, d.notifier.NotifyApproved)
}

// Denied ставит письмо об отклонении в фоновую отправку
func (d *Dispatcher) Denied(ctx context.Context, n Notification) {
	d.dispatch(ctx, "denied", n, d.notifier.NotifyDenied)
}

func (d *Dispatcher) dispatch(ctx context.Context, kind string, n Notification, send func(context.Context, Notification) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()

		if err := send(sendCtx, n); err != nil {
			d.logger.Error("mailer: %s notification to %s failed: %v", kind, n.Email, err)
		}
	}()
}

// Wait дожидается завершения всех фоновых отправок
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// LogNotifier пишет уведомления в лог вместо SMTP
type LogNotifier struct {
	logger Logger
}

func NewLogNotifier(logger Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) NotifyApproved(_ context.Context, n Notification) error {
	l.logger.Info("mailer: [approved] to=%s service=%q", n.Email, n.ServiceName)
	return nil
}

func (l *LogNotifier) NotifyDenied(_ context.Context, n Notification) error {
	l.logger.Info("mailer: [denied] to=%s service=%q", n.Email, n.ServiceName)
	return nil
}
