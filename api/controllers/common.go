package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/procureflow-backend/api/middleware"
	pkgAuth "github.com/angelmondragon/procureflow-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/procureflow-backend/pkg/errors"
	"github.com/angelmondragon/procureflow-backend/pkg/events"
)

// EventForwarder hands committed workflow events to the notification dispatcher.
type EventForwarder interface {
	Forward(ctx context.Context, evts ...events.Event) int
}

func requireActor(r *http.Request) (pkgAuth.Actor, error) {
	actor := middleware.ActorFromContext(r.Context())
	if actor.UserID == uuid.Nil {
		return actor, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return actor, nil
}

func uuidParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key).WithDetails(map[string]string{key: "must be a uuid"})
	}
	return id, nil
}

func optionalUUIDQuery(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key).WithDetails(map[string]string{key: "must be a uuid"})
	}
	return id, nil
}

func forward(ctx context.Context, fwd EventForwarder, evts []events.Event) {
	if fwd == nil || len(evts) == 0 {
		return
	}
	fwd.Forward(ctx, evts...)
}

func eventTypeParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "eventType"))
}
