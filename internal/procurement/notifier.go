package procurement

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/procureflow-backend/internal/notifications"
	"github.com/angelmondragon/procureflow-backend/internal/users"
	"github.com/angelmondragon/procureflow-backend/pkg/idempotency"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
	"github.com/angelmondragon/procureflow-backend/pkg/metrics"
	"github.com/angelmondragon/procureflow-backend/pkg/redis"
)

// NotifierParams bundles what the api and the cron worker share to turn
// workflow events into feed entries.
type NotifierParams struct {
	DB             *gorm.DB
	Store          redis.IdempotencyStore
	IdempotencyTTL time.Duration
	Metrics        *metrics.WorkflowMetrics
	Logger         *logger.Logger
}

// NewNotifier builds the dispatcher over the default rule table and wraps it
// in a Coordinator.
func NewNotifier(params NotifierParams) (*Coordinator, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("idempotency store required")
	}

	guard, err := idempotency.NewManager(params.Store, params.IdempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("dispatch guard: %w", err)
	}
	prefs, err := notifications.NewPreferenceStore(params.DB)
	if err != nil {
		return nil, err
	}
	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Repo:        notifications.NewRepository(params.DB),
		Directory:   users.NewRepository(params.DB),
		Preferences: prefs,
		Guard:       guard,
		Metrics:     params.Metrics,
		Logger:      params.Logger,
	})
	if err != nil {
		return nil, err
	}
	return NewCoordinator(dispatcher, params.Logger)
}
