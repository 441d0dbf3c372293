package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/procureflow-backend/internal/workflow"
	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/procureflow-backend/pkg/errors"
	"github.com/angelmondragon/procureflow-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Preferences are a user's delivery settings. With InApp off the user gets no
// feed entries at all.
type Preferences struct {
	Email bool              `json:"email"`
	InApp bool              `json:"inApp"`
	Sound bool              `json:"sound"`
	Muted []enums.EventType `json:"muted"`
}

// DefaultPreferences apply to users who never saved any.
func DefaultPreferences() Preferences {
	return Preferences{Email: true, InApp: true, Sound: false, Muted: []enums.EventType{}}
}

// IsMuted reports whether eventType is in the muted set.
func (p Preferences) IsMuted(eventType enums.EventType) bool {
	for _, muted := range p.Muted {
		if muted == eventType {
			return true
		}
	}
	return false
}

// PreferenceStore loads and saves notification preferences.
type PreferenceStore struct {
	db *gorm.DB
}

func NewPreferenceStore(db *gorm.DB) (*PreferenceStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database required")
	}
	return &PreferenceStore{db: db}, nil
}

// Load returns the stored preferences for userID, or the defaults.
func (s *PreferenceStore) Load(ctx context.Context, userID uuid.UUID) (Preferences, error) {
	row, err := findPreference(ctx, s.db, userID)
	if err != nil {
		return Preferences{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification preferences")
	}
	if row == nil {
		return DefaultPreferences(), nil
	}
	return fromModel(row), nil
}

// Save overwrites the preferences for userID.
func (s *PreferenceStore) Save(ctx context.Context, userID uuid.UUID, prefs Preferences) (Preferences, error) {
	if userID == uuid.Nil {
		return Preferences{}, workflow.Validation("user id required", nil)
	}
	muted, err := normalizeMuted(prefs.Muted)
	if err != nil {
		return Preferences{}, err
	}
	prefs.Muted = muted
	if err := upsertPreference(ctx, s.db, toModel(userID, prefs)); err != nil {
		return Preferences{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save notification preferences")
	}
	return prefs, nil
}

// Mute adds eventType to the muted set. Muting twice is a no-op.
func (s *PreferenceStore) Mute(ctx context.Context, userID uuid.UUID, eventType enums.EventType) (Preferences, error) {
	return s.updateMuted(ctx, userID, eventType, func(list types.StringList) types.StringList {
		return list.Add(string(eventType))
	})
}

// Unmute removes eventType from the muted set. Unmuting an event that is not
// muted is a no-op.
func (s *PreferenceStore) Unmute(ctx context.Context, userID uuid.UUID, eventType enums.EventType) (Preferences, error) {
	return s.updateMuted(ctx, userID, eventType, func(list types.StringList) types.StringList {
		return list.Remove(string(eventType))
	})
}

func (s *PreferenceStore) updateMuted(ctx context.Context, userID uuid.UUID, eventType enums.EventType, apply func(types.StringList) types.StringList) (Preferences, error) {
	if userID == uuid.Nil {
		return Preferences{}, workflow.Validation("user id required", nil)
	}
	if !eventType.IsValid() {
		return Preferences{}, workflow.Validation("unknown event type", map[string]string{"event_type": string(eventType)})
	}

	var out Preferences
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockPreference(ctx, tx, userID)
		if err != nil {
			return err
		}
		row.MutedEvents = apply(row.MutedEvents)
		if err := tx.WithContext(ctx).Model(row).Update("muted_events", row.MutedEvents).Error; err != nil {
			return err
		}
		out = fromModel(row)
		return nil
	})
	if err != nil {
		return Preferences{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update muted events")
	}
	return out, nil
}

func findPreference(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*models.NotificationPreference, error) {
	var row models.NotificationPreference
	err := db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// lockPreference inserts the default row when none exists and reads the row
// FOR UPDATE, so concurrent mute and unmute calls apply one after another.
func lockPreference(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.NotificationPreference, error) {
	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(toModel(userID, DefaultPreferences())).Error
	if err != nil {
		return nil, err
	}
	var row models.NotificationPreference
	err = tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func upsertPreference(ctx context.Context, db *gorm.DB, row *models.NotificationPreference) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email_enabled", "in_app_enabled", "sound_enabled", "muted_events", "updated_at"}),
	}).Create(row).Error
}

func normalizeMuted(events []enums.EventType) ([]enums.EventType, error) {
	out := make([]enums.EventType, 0, len(events))
	seen := make(map[enums.EventType]struct{}, len(events))
	for _, eventType := range events {
		if !eventType.IsValid() {
			return nil, workflow.Validation("unknown event type", map[string]string{"event_type": string(eventType)})
		}
		if _, ok := seen[eventType]; ok {
			continue
		}
		seen[eventType] = struct{}{}
		out = append(out, eventType)
	}
	return out, nil
}

func toModel(userID uuid.UUID, prefs Preferences) *models.NotificationPreference {
	muted := make(types.StringList, 0, len(prefs.Muted))
	for _, eventType := range prefs.Muted {
		muted = append(muted, string(eventType))
	}
	return &models.NotificationPreference{
		UserID:       userID,
		EmailEnabled: prefs.Email,
		InAppEnabled: prefs.InApp,
		SoundEnabled: prefs.Sound,
		MutedEvents:  muted,
	}
}

func fromModel(row *models.NotificationPreference) Preferences {
	muted := make([]enums.EventType, 0, len(row.MutedEvents))
	for _, raw := range row.MutedEvents {
		if eventType, err := enums.ParseEventType(raw); err == nil {
			muted = append(muted, eventType)
		}
	}
	return Preferences{
		Email: row.EmailEnabled,
		InApp: row.InAppEnabled,
		Sound: row.SoundEnabled,
		Muted: muted,
	}
}
