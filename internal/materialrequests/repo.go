package materialrequests

import (
	"context"
	"time"

	"github.com/angelmondragon/procureflow-backend/pkg/db"
	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a material request repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, mr *models.MaterialRequest) error {
	return r.db.WithContext(ctx).Create(mr).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error) {
	var mr models.MaterialRequest
	if err := r.db.WithContext(ctx).First(&mr, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &mr, nil
}

func (r *repositoryImpl) WriteIfStage(ctx context.Context, mr *models.MaterialRequest, expected enums.MRFStage) error {
	return db.UpdateIfMatch(ctx, r.db, &models.MaterialRequest{}, mr.ID, "stage", expected, mutableColumns(mr))
}

func (r *repositoryImpl) List(ctx context.Context, filter ListFilter) ([]models.MaterialRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.MaterialRequest{})
	if filter.Stage != "" {
		query = query.Where("stage = ?", filter.Stage)
	}
	if filter.RequesterID != uuid.Nil {
		query = query.Where("requester_id = ?", filter.RequesterID)
	}

	var rows []models.MaterialRequest
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListWaitingSince(ctx context.Context, stages []enums.MRFStage, before time.Time, limit int) ([]models.MaterialRequest, error) {
	if len(stages) == 0 {
		return nil, nil
	}
	query := r.db.WithContext(ctx).
		Where("stage IN ? AND updated_at < ?", stages, before).
		Order("updated_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.MaterialRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// mutableColumns lists everything a transition may change; identity,
// requester and creation time are fixed at creation.
func mutableColumns(mr *models.MaterialRequest) map[string]any {
	return map[string]any{
		"title":                 mr.Title,
		"category":              mr.Category,
		"description":           mr.Description,
		"quantity":              mr.Quantity,
		"estimated_cost":        mr.EstimatedCost,
		"urgency":               mr.Urgency,
		"justification":         mr.Justification,
		"department":            mr.Department,
		"stage":                 mr.Stage,
		"rejection_reason":      mr.RejectionReason,
		"decision_comment":      mr.DecisionComment,
		"submitted_at":          mr.SubmittedAt,
		"executive_decision_at": mr.ExecutiveDecisionAt,
		"executive_decision_by": mr.ExecutiveDecisionBy,
		"chairman_decision_at":  mr.ChairmanDecisionAt,
		"chairman_decision_by":  mr.ChairmanDecisionBy,
		"updated_at":            mr.UpdatedAt,
	}
}
