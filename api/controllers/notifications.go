package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/procureflow-backend/api/responses"
	"github.com/angelmondragon/procureflow-backend/api/validators"
	"github.com/angelmondragon/procureflow-backend/internal/notifications"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/procureflow-backend/pkg/errors"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
)

const (
	feedDefaultLimit = 100
	feedMaxLimit     = 500
)

// PreferenceStore is the subset of the preference store the HTTP layer uses.
type PreferenceStore interface {
	Load(ctx context.Context, userID uuid.UUID) (notifications.Preferences, error)
	Save(ctx context.Context, userID uuid.UUID, prefs notifications.Preferences) (notifications.Preferences, error)
	Mute(ctx context.Context, userID uuid.UUID, eventType enums.EventType) (notifications.Preferences, error)
	Unmute(ctx context.Context, userID uuid.UUID, eventType enums.EventType) (notifications.Preferences, error)
}

// ListNotifications returns the caller's feed, newest first.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", feedDefaultLimit, 1, feedMaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unreadOnly, err := validators.ParseQueryBool(r, "unreadOnly")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := notifications.ListParams{RecipientID: actor.UserID, Limit: limit, UnreadOnly: unreadOnly}

		rows, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, notifications.NewFeedDTO(rows))
	}
}

func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		notificationID, err := uuidParam(r, "notificationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkRead(r.Context(), actor.UserID, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"read": true})
	}
}

func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.MarkAllRead(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": count})
	}
}

func GetNotificationPreferences(store PreferenceStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefs, err := store.Load(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}

type preferencesBody struct {
	Email *bool             `json:"email" validate:"required"`
	InApp *bool             `json:"inApp" validate:"required"`
	Sound *bool             `json:"sound" validate:"required"`
	Muted []enums.EventType `json:"muted"`
}

// SaveNotificationPreferences replaces the caller's preferences wholesale.
func SaveNotificationPreferences(store PreferenceStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body preferencesBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefs, err := store.Save(r.Context(), actor.UserID, notifications.Preferences{
			Email: *body.Email,
			InApp: *body.InApp,
			Sound: *body.Sound,
			Muted: body.Muted,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}

func MuteNotificationEvent(store PreferenceStore, logg *logger.Logger) http.HandlerFunc {
	return toggleMute(store.Mute, logg)
}

func UnmuteNotificationEvent(store PreferenceStore, logg *logger.Logger) http.HandlerFunc {
	return toggleMute(store.Unmute, logg)
}

type muteFunc func(ctx context.Context, userID uuid.UUID, eventType enums.EventType) (notifications.Preferences, error)

func toggleMute(fn muteFunc, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefs, err := fn(r.Context(), actor.UserID, enums.EventType(eventTypeParam(r)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}
