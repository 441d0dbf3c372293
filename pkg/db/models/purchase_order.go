package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/types"
)

// PurchaseOrder is issued to vendors against exactly one approved material request.
type PurchaseOrder struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Number              string           `gorm:"column:number;type:text;not null;uniqueIndex"`
	MaterialRequestID   uuid.UUID        `gorm:"column:material_request_id;type:uuid;not null;uniqueIndex:ux_purchase_orders_material_request"`
	VendorIDs           types.StringList `gorm:"column:vendor_ids;type:jsonb;not null"`
	Amount              decimal.Decimal  `gorm:"column:amount;type:numeric(18,2);not null"`
	DeliveryDate        *time.Time       `gorm:"column:delivery_date"`
	PaymentTerms        string           `gorm:"column:payment_terms;type:text"`
	DocumentRef         string           `gorm:"column:document_ref;type:text"`
	Stage               enums.POStage    `gorm:"column:stage;type:text;not null;index"`
	RejectionReason     *string          `gorm:"column:rejection_reason;type:text"`
	CreatedBy           uuid.UUID        `gorm:"column:created_by;type:uuid;not null"`
	SignedBy            *uuid.UUID       `gorm:"column:signed_by;type:uuid"`
	SignedAt            *time.Time       `gorm:"column:signed_at"`
	SentToVendorsAt     *time.Time       `gorm:"column:sent_to_vendors_at"`
	SentToSupplyChainAt *time.Time       `gorm:"column:sent_to_supply_chain_at"`
	SentToFinanceAt     *time.Time       `gorm:"column:sent_to_finance_at"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (PurchaseOrder) TableName() string { return "purchase_orders" }

func (p *PurchaseOrder) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.VendorIDs == nil {
		p.VendorIDs = types.StringList{}
	}
	return nil
}
