package materialrequests

import (
	"context"
	"time"

	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists material requests. WriteIfStage only succeeds while the
// stored stage still equals expected; otherwise it returns db.ErrStaleWrite
// (or gorm.ErrRecordNotFound when the row is gone).
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, mr *models.MaterialRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error)
	WriteIfStage(ctx context.Context, mr *models.MaterialRequest, expected enums.MRFStage) error
	List(ctx context.Context, filter ListFilter) ([]models.MaterialRequest, error)
	ListWaitingSince(ctx context.Context, stages []enums.MRFStage, before time.Time, limit int) ([]models.MaterialRequest, error)
}

type referenceAllocator interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// ListFilter narrows List results. Zero values are ignored.
type ListFilter struct {
	Stage       enums.MRFStage
	RequesterID uuid.UUID
}
