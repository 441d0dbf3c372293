package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/procureflow-backend/internal/materialrequests"
	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/events"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
)

const (
	defaultReminderAfter = 48 * time.Hour
	defaultReminderBatch = 200
)

var reviewStages = []enums.MRFStage{
	enums.MRFStagePendingExecutiveReview,
	enums.MRFStagePendingChairmanReview,
}

type waitingRequestLister interface {
	ListWaitingSince(ctx context.Context, stages []enums.MRFStage, before time.Time, limit int) ([]models.MaterialRequest, error)
}

type eventForwarder interface {
	Forward(ctx context.Context, evts ...events.Event) int
}

// ReviewReminderJobParams configure the pending review reminder.
type ReviewReminderJobParams struct {
	Logger    *logger.Logger
	Requests  waitingRequestLister
	Forwarder eventForwarder
	After     time.Duration
	MaxBatch  int
}

type reviewReminderJob struct {
	logg      *logger.Logger
	requests  waitingRequestLister
	forwarder eventForwarder
	after     time.Duration
	maxBatch  int
	now       func() time.Time
}

func NewReviewReminderJob(params ReviewReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Requests == nil {
		return nil, fmt.Errorf("material request repository required")
	}
	if params.Forwarder == nil {
		return nil, fmt.Errorf("event forwarder required")
	}
	after := params.After
	if after <= 0 {
		after = defaultReminderAfter
	}
	batch := params.MaxBatch
	if batch <= 0 {
		batch = defaultReminderBatch
	}
	return &reviewReminderJob{
		logg:      params.Logger,
		requests:  params.Requests,
		forwarder: params.Forwarder,
		after:     after,
		maxBatch:  batch,
		now:       time.Now,
	}, nil
}

func (j *reviewReminderJob) Name() string { return "review-reminder" }

// Run emits one reminder per request that has sat in a review stage longer
// than the configured age, oldest first.
func (j *reviewReminderJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(-j.after)
	waiting, err := j.requests.ListWaitingSince(ctx, reviewStages, cutoff, j.maxBatch)
	if err != nil {
		return fmt.Errorf("list waiting requests: %w", err)
	}

	reminders := make([]events.Event, 0, len(waiting))
	for i := range waiting {
		reminders = append(reminders, materialrequests.ReminderEvent(&waiting[i], now))
	}
	created := j.forwarder.Forward(ctx, reminders...)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":                cutoff,
		"requests_waiting":      len(waiting),
		"notifications_created": created,
	})
	j.logg.Info(logCtx, "review reminders sent")
	return nil
}
