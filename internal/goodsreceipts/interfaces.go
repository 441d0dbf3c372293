package goodsreceipts

import (
	"context"

	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists goods received notes with their items. WriteIfStatus
// only succeeds while the stored status still equals expected and never
// touches items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, grn *models.GoodsReceivedNote) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.GoodsReceivedNote, error)
	WriteIfStatus(ctx context.Context, grn *models.GoodsReceivedNote, expected enums.GRNStatus) error
	List(ctx context.Context, filter ListFilter) ([]models.GoodsReceivedNote, error)
}

type referenceAllocator interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// ListFilter narrows List results. Zero values are ignored.
type ListFilter struct {
	Status   enums.GRNStatus
	PONumber string
}
