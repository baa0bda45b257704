package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/Leganyst/services-marketplace/internal/logger"
	"github.com/Leganyst/services-marketplace/internal/model"
)

// DisputedLister: источник спорных контрактов.
type DisputedLister interface {
	ListByStatus(ctx context.Context, statuses ...model.ContractStatus) ([]model.Contract, error)
}

// Digest: сводка по спорам, ожидающим администратора.
type Digest struct {
	Count     int
	OldestID  string
	OldestAge time.Duration
}

// DisputeDigestJob периодически сообщает, сколько споров ждут решения.
type DisputeDigestJob struct {
	contracts DisputedLister
	interval  time.Duration
	now       func() time.Time
}

func NewDisputeDigestJob(contracts DisputedLister, interval time.Duration) *DisputeDigestJob {
	return &DisputeDigestJob{
		contracts: contracts,
		interval:  interval,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (j *DisputeDigestJob) GetName() string {
	return "dispute_digest"
}

func (j *DisputeDigestJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute: тело задачи для gocron.
func (j *DisputeDigestJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := j.Run(ctx); err != nil {
		logger.Error("dispute digest failed: %v", err)
	}
}

// Run собирает сводку. Время спора считается от последнего изменения контракта.
func (j *DisputeDigestJob) Run(ctx context.Context) (Digest, error) {
	disputed, err := j.contracts.ListByStatus(ctx, model.ContractStatusDisputed)
	if err != nil {
		return Digest{}, err
	}

	d := Digest{Count: len(disputed)}
	if d.Count == 0 {
		logger.Debug("no disputes awaiting resolution")
		return d, nil
	}

	oldest := disputed[0]
	for _, c := range disputed[1:] {
		if c.UpdatedAt.Before(oldest.UpdatedAt) {
			oldest = c
		}
	}
	d.OldestID = oldest.ID.String()
	d.OldestAge = j.now().Sub(oldest.UpdatedAt)

	logger.With(
		zap.Int("disputed", d.Count),
		zap.String("oldest_contract_id", d.OldestID),
		zap.Duration("oldest_age", d.OldestAge),
	).Warn("disputes awaiting admin resolution")
	return d, nil
}
