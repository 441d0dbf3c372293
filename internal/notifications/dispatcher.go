package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/procureflow-backend/pkg/db"
	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/events"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
	"github.com/angelmondragon/procureflow-backend/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const dispatchConsumer = "notification-dispatch"

type directory interface {
	ListActiveByRole(ctx context.Context, role enums.Role) ([]models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type preferenceLoader interface {
	Load(ctx context.Context, userID uuid.UUID) (Preferences, error)
}

type eventGuard interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// DispatcherParams wire the dispatcher. Rules defaults to RuleTable.
type DispatcherParams struct {
	Repo        Repository
	Directory   directory
	Preferences preferenceLoader
	Guard       eventGuard
	Rules       []Rule
	Metrics     *metrics.WorkflowMetrics
	Logger      *logger.Logger
}

// Dispatcher fans workflow events out into per-recipient feed entries.
type Dispatcher struct {
	repo  Repository
	users directory
	prefs preferenceLoader
	guard eventGuard
	rules []Rule
	stats *metrics.WorkflowMetrics
	logg  *logger.Logger
	now   func() time.Time
}

func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Directory == nil {
		return nil, fmt.Errorf("user directory required")
	}
	if params.Preferences == nil {
		return nil, fmt.Errorf("preference store required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	rules := params.Rules
	if rules == nil {
		rules = RuleTable
	}
	return &Dispatcher{
		repo:  params.Repo,
		users: params.Directory,
		prefs: params.Preferences,
		guard: params.Guard,
		rules: rules,
		stats: params.Metrics,
		logg:  params.Logger,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Dispatch creates the notifications evt calls for and returns them in
// insertion order: rule order, then directory order within a role. An event id
// that was already dispatched produces nothing. A rule that fails to render is
// skipped without affecting the others. When the guard cannot be reached the
// event is still dispatched and the notifications unique key drops repeats.
func (d *Dispatcher) Dispatch(ctx context.Context, evt events.Event) ([]models.Notification, error) {
	if evt.ID == uuid.Nil {
		return nil, fmt.Errorf("event id required")
	}
	logCtx := d.logg.WithEventID(ctx, evt.ID.String())
	logCtx = d.logg.WithField(logCtx, "event_type", evt.Type.String())

	matched := rulesForEvent(d.rules, evt)
	if len(matched) == 0 {
		d.logg.Debug(logCtx, "no notification rules for event")
		return nil, nil
	}

	claimed := true
	already, err := d.guard.CheckAndMarkProcessed(ctx, dispatchConsumer, evt.ID)
	if err != nil {
		// the unique index on (event_id, recipient_id, rule_index) still dedupes
		claimed = false
		d.stats.ObserveDispatch(evt.Type.String(), metrics.DispatchDegraded)
		d.logg.Error(logCtx, "dispatch guard unavailable, relying on unique index", err)
	} else if already {
		d.stats.ObserveDispatch(evt.Type.String(), metrics.DispatchDuplicate)
		d.logg.Info(logCtx, "event already dispatched")
		return nil, nil
	}

	var (
		created     []models.Notification
		renderErrs  error
		storageErrs error
	)
	fields := evt.Payload.Fields()
	now := d.now()
	prefsCache := map[uuid.UUID]Preferences{}

	for _, ir := range matched {
		ruleCtx := d.logg.WithField(logCtx, "rule_index", ir.index)
		content, err := render(ir.rule, fields)
		if err != nil {
			d.stats.ObserveDispatch(evt.Type.String(), metrics.DispatchFailed)
			d.logg.Error(ruleCtx, "notification rule failed to render", err)
			renderErrs = multierr.Append(renderErrs, fmt.Errorf("rule %d: %w", ir.index, err))
			continue
		}

		seen := map[uuid.UUID]struct{}{}
		for _, role := range ir.rule.Roles {
			recipients, err := d.recipients(ctx, role, evt.Payload)
			if err != nil {
				storageErrs = multierr.Append(storageErrs, fmt.Errorf("resolve %s: %w", role, err))
				continue
			}
			for _, user := range recipients {
				if _, dup := seen[user.ID]; dup {
					continue
				}
				seen[user.ID] = struct{}{}

				prefs, ok := prefsCache[user.ID]
				if !ok {
					if prefs, err = d.prefs.Load(ctx, user.ID); err != nil {
						storageErrs = multierr.Append(storageErrs, fmt.Errorf("preferences for %s: %w", user.ID, err))
						continue
					}
					prefsCache[user.ID] = prefs
				}
				if !prefs.InApp || prefs.IsMuted(evt.Type) {
					d.stats.ObserveDispatch(evt.Type.String(), metrics.DispatchSuppressed)
					continue
				}

				notification := models.Notification{
					RecipientID: user.ID,
					EventID:     evt.ID,
					RuleIndex:   ir.index,
					EventType:   evt.Type,
					Type:        ir.rule.Priority.NotificationType(),
					Priority:    ir.rule.Priority,
					Title:       content.Title,
					Message:     content.Message,
					Link:        content.Link,
					Payload:     fields,
					CreatedAt:   now,
				}
				if err := d.repo.Create(ctx, &notification); err != nil {
					if db.IsUniqueViolation(err, "") {
						d.stats.ObserveDispatch(evt.Type.String(), metrics.DispatchDuplicate)
						continue
					}
					d.stats.ObserveDispatch(evt.Type.String(), metrics.DispatchFailed)
					storageErrs = multierr.Append(storageErrs, fmt.Errorf("create notification for %s: %w", user.ID, err))
					continue
				}
				d.stats.ObserveDispatch(evt.Type.String(), metrics.DispatchDelivered)
				created = append(created, notification)
			}
		}
	}

	if storageErrs != nil && claimed {
		// A retry may fill the gaps; the unique index stops duplicates.
		if err := d.guard.Delete(ctx, dispatchConsumer, evt.ID); err != nil {
			d.logg.Error(logCtx, "failed to release dispatch claim", err)
		}
	}

	logCtx = d.logg.WithField(logCtx, "notifications_created", len(created))
	d.logg.Info(logCtx, "event dispatched")
	return created, multierr.Combine(renderErrs, storageErrs)
}

func (d *Dispatcher) recipients(ctx context.Context, role enums.Role, payload events.Payload) ([]models.User, error) {
	if role != enums.RoleRequester {
		return d.users.ListActiveByRole(ctx, role)
	}
	if payload.RequesterID == uuid.Nil {
		return nil, nil
	}
	user, err := d.users.FindByID(ctx, payload.RequesterID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, nil
	}
	return []models.User{*user}, nil
}
