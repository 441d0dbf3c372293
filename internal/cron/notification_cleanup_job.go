package cron

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/procureflow-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	defaultRetentionDays   = 30
	defaultCleanupBatch    = 500
	notificationCleanupJob = "notification-cleanup"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type expiredNotificationDeleter interface {
	DeleteReadOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) (int64, error)
}

// NotificationCleanupJobParams configure the retention job. Retention is in
// days. Rows go in batches, one transaction per batch.
type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository expiredNotificationDeleter
	Retention  int
	BatchSize  int
}

type cleanupJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      expiredNotificationDeleter
	retention time.Duration
	batch     int
	now       func() time.Time
}

func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("cleanup job: logger required")
	case params.DB == nil:
		return nil, errors.New("cleanup job: transaction runner required")
	case params.Repository == nil:
		return nil, errors.New("cleanup job: notifications repository required")
	}
	days := params.Retention
	if days <= 0 {
		days = defaultRetentionDays
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultCleanupBatch
	}
	return &cleanupJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		retention: time.Duration(days) * 24 * time.Hour,
		batch:     batch,
		now:       time.Now,
	}, nil
}

func (j *cleanupJob) Name() string { return notificationCleanupJob }

// Run deletes read notifications older than the retention window. It stops
// early when the context is cancelled and keeps what earlier batches removed.
func (j *cleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	var total int64
	batches := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var removed int64
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			n, err := j.repo.DeleteReadOlderThan(ctx, tx, cutoff, j.batch)
			removed = n
			return err
		})
		if err != nil {
			return err
		}
		total += removed
		batches++
		if removed < int64(j.batch) {
			break
		}
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"batches":      batches,
		"rows_deleted": total,
	}), "notifications.cleanup.done")
	return nil
}
