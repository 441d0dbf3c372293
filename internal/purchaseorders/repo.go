package purchaseorders

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

// NewRepository returns a purchase order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, po *models.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *repositoryImpl) FindByMaterialRequest(ctx context.Context, mrID uuid.UUID) (*models.PurchaseOrder, error) {
	return r.findOne(ctx, "material_request_id = ?", mrID)
}

func (r *repositoryImpl) FindByNumber(ctx context.Context, number string) (*models.PurchaseOrder, error) {
	return r.findOne(ctx, "number = ?", number)
}

func (r *repositoryImpl) findOne(ctx context.Context, query string, arg any) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	if err := r.db.WithContext(ctx).Where(query, arg).First(&po).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *repositoryImpl) WriteIfStage(ctx context.Context, po *models.PurchaseOrder, expected enums.POStage) error {
	return db.UpdateIfMatch(ctx, r.db, &models.PurchaseOrder{}, po.ID, "stage", expected, map[string]any{
		"vendor_ids":              po.VendorIDs,
		"amount":                  po.Amount,
		"delivery_date":           po.DeliveryDate,
		"payment_terms":           po.PaymentTerms,
		"document_ref":            po.DocumentRef,
		"stage":                   po.Stage,
		"rejection_reason":        po.RejectionReason,
		"signed_by":               po.SignedBy,
		"signed_at":               po.SignedAt,
		"sent_to_vendors_at":      po.SentToVendorsAt,
		"sent_to_supply_chain_at": po.SentToSupplyChainAt,
		"sent_to_finance_at":      po.SentToFinanceAt,
		"updated_at":              po.UpdatedAt,
	})
}

func (r *repositoryImpl) List(ctx context.Context, filter ListFilter) ([]models.PurchaseOrder, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrder{})
	if filter.Stage != "" {
		query = query.Where("stage = ?", filter.Stage)
	}
	if filter.MaterialRequestID != uuid.Nil {
		query = query.Where("material_request_id = ?", filter.MaterialRequestID)
	}

	var rows []models.PurchaseOrder
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
