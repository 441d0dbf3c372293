package procurement

import (
	"context"
	"fmt"

	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/procureflow-backend/pkg/errors"
	"github.com/angelmondragon/procureflow-backend/pkg/events"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
)

type dispatcher interface {
	Dispatch(ctx context.Context, evt events.Event) ([]models.Notification, error)
}

// Coordinator hands the events of a committed transition to the notification
// dispatcher. Dispatch problems are logged and never reach the caller.
type Coordinator struct {
	dispatcher dispatcher
	logg       *logger.Logger
}

func NewCoordinator(dispatcher dispatcher, logg *logger.Logger) (*Coordinator, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("notification dispatcher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Coordinator{dispatcher: dispatcher, logg: logg}, nil
}

// Forward dispatches evts in order and returns how many notifications were
// created. One event failing does not stop the rest.
func (c *Coordinator) Forward(ctx context.Context, evts ...events.Event) int {
	created := 0
	for _, evt := range evts {
		created += c.forwardOne(ctx, evt)
	}
	return created
}

func (c *Coordinator) forwardOne(ctx context.Context, evt events.Event) (created int) {
	logCtx := c.logg.WithEventID(ctx, evt.ID.String())
	logCtx = c.logg.WithField(logCtx, "event_type", evt.Type.String())

	defer func() {
		if r := recover(); r != nil {
			c.logg.Error(logCtx, "notification dispatch panicked", fmt.Errorf("panic: %v", r))
		}
	}()

	notifications, err := c.dispatcher.Dispatch(ctx, evt)
	if err != nil {
		logCtx = c.logg.WithField(logCtx, "retryable", pkgerrors.IsRetryable(err))
		c.logg.Error(logCtx, "notification dispatch failed", err)
	}
	return len(notifications)
}
