package notifications

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/procureflow-backend/internal/users"
	"github.com/angelmondragon/procureflow-backend/pkg/db/dbtest"
	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/events"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryGuard struct {
	mu       sync.Mutex
	seen     map[uuid.UUID]bool
	released []uuid.UUID
}

func (g *memoryGuard) CheckAndMarkProcessed(_ context.Context, _ string, eventID uuid.UUID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen == nil {
		g.seen = map[uuid.UUID]bool{}
	}
	if g.seen[eventID] {
		return true, nil
	}
	g.seen[eventID] = true
	return false, nil
}

func (g *memoryGuard) Delete(_ context.Context, _ string, eventID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, eventID)
	g.released = append(g.released, eventID)
	return nil
}

type unreachableGuard struct {
	deletes int
}

func (g *unreachableGuard) CheckAndMarkProcessed(context.Context, string, uuid.UUID) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func (g *unreachableGuard) Delete(context.Context, string, uuid.UUID) error {
	g.deletes++
	return errors.New("redis: connection refused")
}

type dispatchFixture struct {
	conn       *gorm.DB
	directory  *users.Repository
	prefs      *PreferenceStore
	guard      *memoryGuard
	dispatcher *Dispatcher
}

func newDispatchFixture(t *testing.T, rules []Rule) *dispatchFixture {
	t.Helper()
	conn := dbtest.Open(t)
	prefs, err := NewPreferenceStore(conn)
	require.NoError(t, err)
	f := &dispatchFixture{
		conn:      conn,
		directory: users.NewRepository(conn),
		prefs:     prefs,
		guard:     &memoryGuard{},
	}
	f.dispatcher, err = NewDispatcher(DispatcherParams{
		Repo:        NewRepository(conn),
		Directory:   f.directory,
		Preferences: f.prefs,
		Guard:       f.guard,
		Rules:       rules,
		Logger:      logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return f
}

func (f *dispatchFixture) user(t *testing.T, email string, role enums.Role) *models.User {
	t.Helper()
	user, err := f.directory.Create(context.Background(), users.CreateUserDTO{Email: email, Name: email, Role: role})
	require.NoError(t, err)
	return user
}

func chairmanEvent(requesterID uuid.UUID) events.Event {
	return events.New(enums.EventMRFSentToChairman, uuid.New(), time.Now(), events.Payload{
		MRFID:         "MRF-1",
		MRFTitle:      "Generators",
		Amount:        decimal.NewFromInt(1500000),
		RequesterID:   requesterID,
		RequesterName: "Ada",
		Department:    "Operations",
	})
}

func TestNewDispatcherRequiresDependencies(t *testing.T) {
	_, err := NewDispatcher(DispatcherParams{})
	require.Error(t, err)
}

func TestDispatchRoutesHighValueRequestToChairman(t *testing.T) {
	f := newDispatchFixture(t, nil)
	chair := f.user(t, "chair@corp.test", enums.RoleChairman)
	employee := f.user(t, "emp@corp.test", enums.RoleEmployee)
	requester := f.user(t, "req@corp.test", enums.RoleEmployee)

	created, err := f.dispatcher.Dispatch(context.Background(), chairmanEvent(requester.ID))
	require.NoError(t, err)
	require.Len(t, created, 2)

	first := created[0]
	assert.Equal(t, chair.ID, first.RecipientID)
	assert.Equal(t, enums.NotificationPriorityHigh, first.Priority)
	assert.Equal(t, enums.NotificationTypeActionRequired, first.Type)
	assert.Contains(t, first.Title+first.Message, "MRF-1")
	assert.Contains(t, first.Message, "1500000")
	require.NotNil(t, first.Link)
	assert.Equal(t, "/material-requests/MRF-1", *first.Link)

	assert.Equal(t, requester.ID, created[1].RecipientID)

	var employeeRows int64
	require.NoError(t, f.conn.Model(&models.Notification{}).Where("recipient_id = ?", employee.ID).Count(&employeeRows).Error)
	assert.Zero(t, employeeRows)
}

func TestDispatchSkipsMutedRecipientsUntilUnmuted(t *testing.T) {
	f := newDispatchFixture(t, nil)
	ctx := context.Background()
	chair := f.user(t, "chair@corp.test", enums.RoleChairman)

	_, err := f.prefs.Mute(ctx, chair.ID, enums.EventMRFSentToChairman)
	require.NoError(t, err)

	created, err := f.dispatcher.Dispatch(ctx, chairmanEvent(uuid.Nil))
	require.NoError(t, err)
	assert.Empty(t, created)

	_, err = f.prefs.Unmute(ctx, chair.ID, enums.EventMRFSentToChairman)
	require.NoError(t, err)

	created, err = f.dispatcher.Dispatch(ctx, chairmanEvent(uuid.Nil))
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, chair.ID, created[0].RecipientID)
}

func TestDispatchSkipsRecipientsWithInAppDisabled(t *testing.T) {
	f := newDispatchFixture(t, nil)
	ctx := context.Background()
	chair := f.user(t, "chair@corp.test", enums.RoleChairman)

	prefs := DefaultPreferences()
	prefs.InApp = false
	_, err := f.prefs.Save(ctx, chair.ID, prefs)
	require.NoError(t, err)

	created, err := f.dispatcher.Dispatch(ctx, chairmanEvent(uuid.Nil))
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestDispatchIgnoresInactiveOrUnknownRequester(t *testing.T) {
	f := newDispatchFixture(t, nil)
	ctx := context.Background()
	requester := f.user(t, "req@corp.test", enums.RoleEmployee)
	require.NoError(t, f.directory.Deactivate(ctx, requester.ID))

	created, err := f.dispatcher.Dispatch(ctx, chairmanEvent(requester.ID))
	require.NoError(t, err)
	assert.Empty(t, created)

	created, err = f.dispatcher.Dispatch(ctx, chairmanEvent(uuid.New()))
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestDispatchDeduplicatesRecipientsWithinRule(t *testing.T) {
	f := newDispatchFixture(t, []Rule{{
		Event:    enums.EventGRNCreated,
		Roles:    []enums.Role{enums.RoleWarehouse, enums.RoleRequester},
		Title:    "Inspect {grnId}",
		Message:  "{grnId} arrived",
		Priority: enums.NotificationPriorityHigh,
	}})
	warehouse := f.user(t, "ware@corp.test", enums.RoleWarehouse)

	evt := events.New(enums.EventGRNCreated, uuid.New(), time.Now(), events.Payload{GRNID: "GRN-000001", RequesterID: warehouse.ID})
	created, err := f.dispatcher.Dispatch(context.Background(), evt)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Nil(t, created[0].Link)
}

func TestDispatchSameEventTwiceCreatesNothingNew(t *testing.T) {
	f := newDispatchFixture(t, nil)
	ctx := context.Background()
	f.user(t, "chair@corp.test", enums.RoleChairman)

	evt := chairmanEvent(uuid.Nil)
	created, err := f.dispatcher.Dispatch(ctx, evt)
	require.NoError(t, err)
	require.Len(t, created, 1)

	again, err := f.dispatcher.Dispatch(ctx, evt)
	require.NoError(t, err)
	assert.Empty(t, again)

	// The unique index still holds when the guard has forgotten the event.
	require.NoError(t, f.guard.Delete(ctx, dispatchConsumer, evt.ID))
	again, err = f.dispatcher.Dispatch(ctx, evt)
	require.NoError(t, err)
	assert.Empty(t, again)

	var count int64
	require.NoError(t, f.conn.Model(&models.Notification{}).Where("event_id = ?", evt.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDispatchRenderFailureOnlySkipsItsRule(t *testing.T) {
	f := newDispatchFixture(t, []Rule{
		{Event: enums.EventGRNRejected, Roles: []enums.Role{enums.RoleWarehouse}, Priority: enums.NotificationPriorityHigh,
			Title: "Rejected {grnNumber}", Message: "broken"},
		{Event: enums.EventGRNRejected, Roles: []enums.Role{enums.RoleWarehouse}, Priority: enums.NotificationPriorityLow,
			Title: "Rejected {grnId}", Message: "{grnId}: {reason}"},
	})
	warehouse := f.user(t, "ware@corp.test", enums.RoleWarehouse)

	evt := events.New(enums.EventGRNRejected, uuid.New(), time.Now(), events.Payload{GRNID: "GRN-000002", Reason: "damaged"})
	created, err := f.dispatcher.Dispatch(context.Background(), evt)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "grnNumber"))
	require.Len(t, created, 1)
	assert.Equal(t, warehouse.ID, created[0].RecipientID)
	assert.Equal(t, 1, created[0].RuleIndex)
	assert.Equal(t, "GRN-000002: damaged", created[0].Message)
	assert.Empty(t, f.guard.released)
}

func TestDispatchWithoutRulesIsNoop(t *testing.T) {
	f := newDispatchFixture(t, []Rule{})
	f.user(t, "chair@corp.test", enums.RoleChairman)

	created, err := f.dispatcher.Dispatch(context.Background(), chairmanEvent(uuid.Nil))
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, f.guard.seen)
}

func TestDispatchProceedsWhenGuardUnavailable(t *testing.T) {
	f := newDispatchFixture(t, nil)
	ctx := context.Background()
	chair := f.user(t, "chair@corp.test", enums.RoleChairman)

	guard := &unreachableGuard{}
	f.dispatcher.guard = guard

	evt := chairmanEvent(uuid.Nil)
	created, err := f.dispatcher.Dispatch(ctx, evt)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, chair.ID, created[0].RecipientID)

	again, err := f.dispatcher.Dispatch(ctx, evt)
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Zero(t, guard.deletes)

	var count int64
	require.NoError(t, f.conn.Model(&models.Notification{}).Where("event_id = ?", evt.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDispatchReminderReachesOnlyTheWaitingReviewer(t *testing.T) {
	f := newDispatchFixture(t, nil)
	ctx := context.Background()
	exec := f.user(t, "exec@corp.test", enums.RoleExecutive)
	chair := f.user(t, "chair@corp.test", enums.RoleChairman)

	reminder := func(stage enums.MRFStage) events.Event {
		return events.New(enums.EventMRFPendingReviewReminder, uuid.Nil, time.Now(), events.Payload{
			MRFID: "MRF-000004", MRFTitle: "Diesel", RequesterName: "Ada", Stage: stage.String(),
		})
	}

	created, err := f.dispatcher.Dispatch(ctx, reminder(enums.MRFStagePendingExecutiveReview))
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, exec.ID, created[0].RecipientID)

	created, err = f.dispatcher.Dispatch(ctx, reminder(enums.MRFStagePendingChairmanReview))
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, chair.ID, created[0].RecipientID)
}
