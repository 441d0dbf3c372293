package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/procureflow-backend/pkg/enums"
)

// MaterialRequest is a staff request for materials (MRF) moving through
// executive, chairman, purchasing and payment stages.
type MaterialRequest struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Reference           string          `gorm:"column:reference;type:text;not null;uniqueIndex"`
	Title               string          `gorm:"column:title;type:text;not null"`
	Category            string          `gorm:"column:category;type:text"`
	Description         string          `gorm:"column:description;type:text"`
	Quantity            int             `gorm:"column:quantity;not null"`
	EstimatedCost       decimal.Decimal `gorm:"column:estimated_cost;type:numeric(18,2);not null"`
	Urgency             enums.Urgency   `gorm:"column:urgency;type:text;not null"`
	Justification       string          `gorm:"column:justification;type:text"`
	RequesterID         uuid.UUID       `gorm:"column:requester_id;type:uuid;not null;index"`
	RequesterName       string          `gorm:"column:requester_name;type:text;not null"`
	Department          string          `gorm:"column:department;type:text"`
	Stage               enums.MRFStage  `gorm:"column:stage;type:text;not null;index"`
	RejectionReason     *string         `gorm:"column:rejection_reason;type:text"`
	DecisionComment     *string         `gorm:"column:decision_comment;type:text"`
	SubmittedAt         *time.Time      `gorm:"column:submitted_at"`
	ExecutiveDecisionAt *time.Time      `gorm:"column:executive_decision_at"`
	ExecutiveDecisionBy *uuid.UUID      `gorm:"column:executive_decision_by;type:uuid"`
	ChairmanDecisionAt  *time.Time      `gorm:"column:chairman_decision_at"`
	ChairmanDecisionBy  *uuid.UUID      `gorm:"column:chairman_decision_by;type:uuid"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (MaterialRequest) TableName() string { return "material_requests" }

func (m *MaterialRequest) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
