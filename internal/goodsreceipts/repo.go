package goodsreceipts

import (
	"context"

	"github.com/angelmondragon/procureflow-backend/pkg/db"
	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a goods received note repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Create inserts the note and its items in one transaction.
func (r *repositoryImpl) Create(ctx context.Context, grn *models.GoodsReceivedNote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(grn).Error
	})
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.GoodsReceivedNote, error) {
	var grn models.GoodsReceivedNote
	err := r.db.WithContext(ctx).
		Preload("Items", itemsByPosition).
		First(&grn, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &grn, nil
}

func (r *repositoryImpl) WriteIfStatus(ctx context.Context, grn *models.GoodsReceivedNote, expected enums.GRNStatus) error {
	return db.UpdateIfMatch(ctx, r.db, &models.GoodsReceivedNote{}, grn.ID, "status", expected, map[string]any{
		"status":              grn.Status,
		"payment_status":      grn.PaymentStatus,
		"inspected_by":        grn.InspectedBy,
		"inspected_at":        grn.InspectedAt,
		"finance_received_at": grn.FinanceReceivedAt,
		"payment_approved_by": grn.PaymentApprovedBy,
		"payment_approved_at": grn.PaymentApprovedAt,
		"paid_at":             grn.PaidAt,
		"rejection_reason":    grn.RejectionReason,
		"updated_at":          grn.UpdatedAt,
	})
}

func (r *repositoryImpl) List(ctx context.Context, filter ListFilter) ([]models.GoodsReceivedNote, error) {
	query := r.db.WithContext(ctx).Model(&models.GoodsReceivedNote{}).Preload("Items", itemsByPosition)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PONumber != "" {
		query = query.Where("po_number = ?", filter.PONumber)
	}

	var rows []models.GoodsReceivedNote
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func itemsByPosition(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }
