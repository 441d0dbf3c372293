package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/procureflow-backend/internal/auth"
	"github.com/angelmondragon/procureflow-backend/internal/users"
	pkgAuth "github.com/angelmondragon/procureflow-backend/pkg/auth"
	"github.com/angelmondragon/procureflow-backend/pkg/config"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/procureflow-backend/pkg/errors"
)

type stubAuthService struct {
	resp *auth.LoginResponse
	err  error
}

func (s stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.resp, s.err
}

type stubStaffService struct {
	registered []auth.RegisterStaffRequest
	err        error
}

func (s *stubStaffService) Register(ctx context.Context, actor pkgAuth.Actor, req auth.RegisterStaffRequest) (*auth.RegisterStaffResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.registered = append(s.registered, req)
	return &auth.RegisterStaffResponse{
		User:              &users.UserDTO{ID: uuid.New(), Email: req.Email, Name: req.Name, Role: req.Role},
		TemporaryPassword: "Temp1234Temp1234",
	}, nil
}

func (s *stubStaffService) Deactivate(ctx context.Context, actor pkgAuth.Actor, userID uuid.UUID) error {
	return s.err
}

func (s *stubStaffService) List(ctx context.Context, actor pkgAuth.Actor, role enums.Role) ([]*users.UserDTO, error) {
	return nil, s.err
}

func TestAuthLoginSuccess(t *testing.T) {
	handler := AuthLogin(stubAuthService{resp: &auth.LoginResponse{
		AccessToken: "access-token",
		User:        &users.UserDTO{Email: "exec@corp.test", Role: enums.RoleExecutive},
	}}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"exec@corp.test","password":"secret"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.AccessToken != "access-token" {
		t.Fatalf("unexpected token %q", envelope.Data.AccessToken)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	handler := AuthLogin(stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}, testLogger())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"exec@corp.test","password":"nope"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthLoginValidatesBody(t *testing.T) {
	handler := AuthLogin(stubAuthService{}, testLogger())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"not-an-email"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRegisterStaffCreated(t *testing.T) {
	svc := &stubStaffService{}
	admin := pkgAuth.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/staff",
		strings.NewReader(`{"email":"wh@corp.test","name":"  Wendy ","role":"warehouse"}`))
	resp := httptest.NewRecorder()
	RegisterStaff(svc, testLogger())(resp, withActor(req, admin))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.registered) != 1 || svc.registered[0].Name != "Wendy" {
		t.Fatalf("unexpected register calls %+v", svc.registered)
	}
}

func TestDeactivateStaffMapsNotFound(t *testing.T) {
	svc := &stubStaffService{err: pkgerrors.New(pkgerrors.CodeNotFound, "user not found")}
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/staff/"+id, nil)
	req = addRouteParam(withActor(req, pkgAuth.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}), "userId", id)
	resp := httptest.NewRecorder()
	DeactivateStaff(svc, testLogger())(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	resp := httptest.NewRecorder()
	HealthReady(cfg, testLogger(), map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}})(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get(envHeader) != "test" {
		t.Fatalf("expected env header")
	}

	resp = httptest.NewRecorder()
	HealthReady(cfg, testLogger(), map[string]Pinger{"redis": stubPinger{err: errors.New("dial tcp: refused")}})(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
