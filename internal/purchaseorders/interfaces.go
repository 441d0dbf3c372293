package purchaseorders

import (
	"context"

	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists purchase orders. WriteIfStage only succeeds while the
// stored stage still equals expected.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, po *models.PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	FindByMaterialRequest(ctx context.Context, mrID uuid.UUID) (*models.PurchaseOrder, error)
	FindByNumber(ctx context.Context, number string) (*models.PurchaseOrder, error)
	WriteIfStage(ctx context.Context, po *models.PurchaseOrder, expected enums.POStage) error
	List(ctx context.Context, filter ListFilter) ([]models.PurchaseOrder, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type referenceAllocator interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// ListFilter narrows List results. Zero values are ignored.
type ListFilter struct {
	Stage             enums.POStage
	MaterialRequestID uuid.UUID
}
