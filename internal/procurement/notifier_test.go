package procurement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/procureflow-backend/internal/users"
	"github.com/angelmondragon/procureflow-backend/pkg/db/dbtest"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/events"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
)

type memoryStore struct {
	values map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "procureflow:idempotency:" + scope + ":" + id
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func TestNewNotifierRequiresDependencies(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	if _, err := NewNotifier(NotifierParams{Store: &memoryStore{}, Logger: logg}); err == nil {
		t.Fatal("expected error for missing database")
	}
	if _, err := NewNotifier(NotifierParams{DB: dbtest.Open(t), Logger: logg}); err == nil {
		t.Fatal("expected error for missing store")
	}
}

func TestNotifierDispatchesOncePerEvent(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	directory := users.NewRepository(conn)

	_, err := directory.Create(ctx, users.CreateUserDTO{Email: "exec@corp.test", Name: "Exec", Role: enums.RoleExecutive})
	require.NoError(t, err)
	requester, err := directory.Create(ctx, users.CreateUserDTO{Email: "req@corp.test", Name: "Rita", Role: enums.RoleEmployee, Department: "IT"})
	require.NoError(t, err)

	notifier, err := NewNotifier(NotifierParams{
		DB:             conn,
		Store:          &memoryStore{values: map[string]string{}},
		IdempotencyTTL: time.Hour,
		Logger:         logger.New(logger.Options{ServiceName: "test"}),
	})
	require.NoError(t, err)

	evt := events.New(enums.EventMRFSubmitted, requester.ID, time.Now(), events.Payload{
		MRFID:         "MRF-000001",
		MRFTitle:      "Laptops",
		Amount:        decimal.NewFromInt(2500),
		RequesterID:   requester.ID,
		RequesterName: "Rita",
		Department:    "IT",
		Urgency:       "high",
	})

	assert.Equal(t, 2, notifier.Forward(ctx, evt))
	assert.Zero(t, notifier.Forward(ctx, evt))

	unknown := events.New(enums.EventMRFSubmitted, uuid.New(), time.Now(), events.Payload{MRFID: "MRF-000002"})
	unknown.ID = uuid.Nil
	assert.Zero(t, notifier.Forward(ctx, unknown))
}
