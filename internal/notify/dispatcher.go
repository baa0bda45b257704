package notify

import (
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/Leganyst/services-marketplace/internal/logger"
)

const (
	defaultWorkers = 8
	// Сколько задач может ждать свободного воркера, дальше Submit отказывает.
	maxBlockingTasks = 1024
)

// Dispatcher рассылает уведомления по синкам через ограниченный пул горутин.
type Dispatcher struct {
	pool  *ants.Pool
	sinks []Sink
}

func NewDispatcher(workers int, sinks ...Sink) (*Dispatcher, error) {
	if workers <= 0 {
		workers = defaultWorkers
	}
	pool, err := ants.NewPool(workers,
		ants.WithMaxBlockingTasks(maxBlockingTasks),
		ants.WithPanicHandler(func(p any) {
			logger.Error("notify: worker panic: %v", p)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("notify: create pool: %w", err)
	}
	return &Dispatcher{pool: pool, sinks: sinks}, nil
}

// Notify ставит доставку в очередь и сразу возвращает управление.
func (d *Dispatcher) Notify(ns ...Notification) {
	now := time.Now().UTC()
	for _, n := range ns {
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		err := d.pool.Submit(func() {
			d.deliver(n)
		})
		if err != nil {
			logger.With(zap.String("user_id", n.UserID.String()), zap.Error(err)).
				Warn("notification dropped")
		}
	}
}

func (d *Dispatcher) deliver(n Notification) {
	for _, s := range d.sinks {
		if err := s.Deliver(n); err != nil {
			logger.With(
				zap.String("user_id", n.UserID.String()),
				zap.String("kind", string(n.Kind)),
				zap.Error(err),
			).Warn("notification delivery failed")
		}
	}
}

// Running: число занятых воркеров.
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Close ждёт завершения доставок не дольше timeout.
func (d *Dispatcher) Close(timeout time.Duration) error {
	return d.pool.ReleaseTimeout(timeout)
}
