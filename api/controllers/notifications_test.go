package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/procureflow-backend/api/middleware"
	"github.com/angelmondragon/procureflow-backend/internal/notifications"
	pkgAuth "github.com/angelmondragon/procureflow-backend/pkg/auth"
	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/procureflow-backend/pkg/errors"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
)

type testNotificationsService struct {
	markReadFn    func(ctx context.Context, recipientID, notificationID uuid.UUID) error
	markAllReadFn func(ctx context.Context, recipientID uuid.UUID) (int64, error)
	listFn        func(ctx context.Context, params notifications.ListParams) ([]models.Notification, error)
}

func (s *testNotificationsService) List(ctx context.Context, params notifications.ListParams) ([]models.Notification, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return nil, nil
}

func (s *testNotificationsService) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, recipientID, notificationID)
	}
	return nil
}

func (s *testNotificationsService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if s.markAllReadFn != nil {
		return s.markAllReadFn(ctx, recipientID)
	}
	return 0, nil
}

type testPreferenceStore struct {
	prefs notifications.Preferences
	err   error
	muted []enums.EventType
}

func (s *testPreferenceStore) Load(ctx context.Context, userID uuid.UUID) (notifications.Preferences, error) {
	return s.prefs, s.err
}

func (s *testPreferenceStore) Save(ctx context.Context, userID uuid.UUID, prefs notifications.Preferences) (notifications.Preferences, error) {
	s.prefs = prefs
	return prefs, s.err
}

func (s *testPreferenceStore) Mute(ctx context.Context, userID uuid.UUID, eventType enums.EventType) (notifications.Preferences, error) {
	if s.err != nil {
		return notifications.Preferences{}, s.err
	}
	s.muted = append(s.muted, eventType)
	s.prefs.Muted = append(s.prefs.Muted, eventType)
	return s.prefs, nil
}

func (s *testPreferenceStore) Unmute(ctx context.Context, userID uuid.UUID, eventType enums.EventType) (notifications.Preferences, error) {
	s.prefs.Muted = nil
	return s.prefs, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withActor(req *http.Request, actor pkgAuth.Actor) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.RouteContext(req.Context())
	if routeCtx == nil {
		routeCtx = chi.NewRouteContext()
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	}
	routeCtx.URLParams.Add(key, value)
	return req
}

func TestListNotificationsReturnsFeed(t *testing.T) {
	actor := pkgAuth.Actor{UserID: uuid.New(), Role: enums.RoleChairman}
	now := time.Now().UTC()
	svc := &testNotificationsService{
		listFn: func(ctx context.Context, params notifications.ListParams) ([]models.Notification, error) {
			if params.RecipientID != actor.UserID {
				t.Fatalf("unexpected recipient %s", params.RecipientID)
			}
			if !params.UnreadOnly {
				t.Fatal("expected unread filter")
			}
			if params.Limit != feedDefaultLimit {
				t.Fatalf("expected default limit, got %d", params.Limit)
			}
			return []models.Notification{
				{ID: uuid.New(), EventType: enums.EventMRFSentToChairman, Title: "Approval needed", CreatedAt: now},
				{ID: uuid.New(), EventType: enums.EventMRFSubmitted, Title: "Submitted", ReadAt: &now, CreatedAt: now},
			}, nil
		},
	}

	req := withActor(httptest.NewRequest(http.MethodGet, "/api/v1/notifications?unreadOnly=true", nil), actor)
	resp := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data notifications.FeedDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data.Notifications) != 2 || envelope.Data.UnreadCount != 1 {
		t.Fatalf("unexpected feed %+v", envelope.Data)
	}
}

func TestListNotificationsRejectsOutOfRangeLimit(t *testing.T) {
	actor := pkgAuth.Actor{UserID: uuid.New(), Role: enums.RoleFinance}
	svc := &testNotificationsService{
		listFn: func(ctx context.Context, params notifications.ListParams) ([]models.Notification, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	req := withActor(httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=0", nil), actor)
	resp := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListNotificationsRequiresActor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	resp := httptest.NewRecorder()
	ListNotifications(&testNotificationsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestMarkNotificationReadSuccess(t *testing.T) {
	actor := pkgAuth.Actor{UserID: uuid.New(), Role: enums.RoleFinance}
	notificationID := uuid.New()
	called := false
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, rid, nid uuid.UUID) error {
			called = true
			if rid != actor.UserID {
				t.Fatalf("unexpected recipient %s", rid)
			}
			if nid != notificationID {
				t.Fatalf("unexpected notification %s", nid)
			}
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+notificationID.String()+"/read", nil)
	req = addRouteParam(withActor(req, actor), "notificationId", notificationID.String())
	resp := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestMarkNotificationReadInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/invalid/read", nil)
	req = addRouteParam(withActor(req, pkgAuth.Actor{UserID: uuid.New()}), "notificationId", "invalid")
	resp := httptest.NewRecorder()
	MarkNotificationRead(&testNotificationsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, rid, nid uuid.UUID) error {
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		},
	}
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+id+"/read", nil)
	req = addRouteParam(withActor(req, pkgAuth.Actor{UserID: uuid.New()}), "notificationId", id)
	resp := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestMarkAllNotificationsReadSuccess(t *testing.T) {
	actor := pkgAuth.Actor{UserID: uuid.New(), Role: enums.RoleWarehouse}
	svc := &testNotificationsService{
		markAllReadFn: func(ctx context.Context, rid uuid.UUID) (int64, error) {
			if rid != actor.UserID {
				t.Fatalf("unexpected recipient %s", rid)
			}
			return 5, nil
		},
	}

	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/notifications/read-all", nil), actor)
	resp := httptest.NewRecorder()
	MarkAllNotificationsRead(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]float64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["updated"] != 5 {
		t.Fatalf("expected updated=5 got %v", envelope.Data["updated"])
	}
}

func TestSaveNotificationPreferencesRequiresAllToggles(t *testing.T) {
	store := &testPreferenceStore{}
	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/preferences", strings.NewReader(`{"email":true}`))
	req = withActor(req, pkgAuth.Actor{UserID: uuid.New()})
	resp := httptest.NewRecorder()
	SaveNotificationPreferences(store, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/notifications/preferences",
		strings.NewReader(`{"email":false,"inApp":true,"sound":true,"muted":["payment_completed"]}`))
	req = withActor(req, pkgAuth.Actor{UserID: uuid.New()})
	resp = httptest.NewRecorder()
	SaveNotificationPreferences(store, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if store.prefs.Email || !store.prefs.InApp || !store.prefs.Sound {
		t.Fatalf("unexpected saved preferences %+v", store.prefs)
	}
	if len(store.prefs.Muted) != 1 || store.prefs.Muted[0] != enums.EventPaymentCompleted {
		t.Fatalf("unexpected muted set %v", store.prefs.Muted)
	}
}

func TestMuteNotificationEventUsesPathParam(t *testing.T) {
	store := &testPreferenceStore{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/preferences/muted/payment_completed", nil)
	req = addRouteParam(withActor(req, pkgAuth.Actor{UserID: uuid.New()}), "eventType", "payment_completed")
	resp := httptest.NewRecorder()
	MuteNotificationEvent(store, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(store.muted) != 1 || store.muted[0] != enums.EventPaymentCompleted {
		t.Fatalf("unexpected mute calls %v", store.muted)
	}
}
