package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/procureflow-backend/pkg/enums"
)

// GoodsReceivedNote records a delivery against a purchase order and follows it
// through inspection and payment.
type GoodsReceivedNote struct {
	ID                uuid.UUID              `gorm:"type:uuid;primaryKey"`
	Number            string                 `gorm:"column:number;type:text;not null;uniqueIndex"`
	PONumber          string                 `gorm:"column:po_number;type:text;not null;index"`
	Vendor            string                 `gorm:"column:vendor;type:text;not null"`
	Location          string                 `gorm:"column:location;type:text"`
	InvoiceRef        string                 `gorm:"column:invoice_ref;type:text"`
	TotalAmount       decimal.Decimal        `gorm:"column:total_amount;type:numeric(18,2);not null"`
	Status            enums.GRNStatus        `gorm:"column:status;type:text;not null;index"`
	PaymentStatus     enums.GRNPaymentStatus `gorm:"column:payment_status;type:text;not null"`
	ReceivedBy        uuid.UUID              `gorm:"column:received_by;type:uuid;not null"`
	ReceivedByName    string                 `gorm:"column:received_by_name;type:text"`
	InspectedBy       *uuid.UUID             `gorm:"column:inspected_by;type:uuid"`
	InspectedAt       *time.Time             `gorm:"column:inspected_at"`
	FinanceReceivedAt *time.Time             `gorm:"column:finance_received_at"`
	PaymentApprovedBy *uuid.UUID             `gorm:"column:payment_approved_by;type:uuid"`
	PaymentApprovedAt *time.Time             `gorm:"column:payment_approved_at"`
	PaidAt            *time.Time             `gorm:"column:paid_at"`
	RejectionReason   *string                `gorm:"column:rejection_reason;type:text"`
	Items             []GoodsReceivedItem    `gorm:"foreignKey:GRNID"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (GoodsReceivedNote) TableName() string { return "goods_received_notes" }

func (g *GoodsReceivedNote) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// GoodsReceivedItem is one received line. Items are written with their note
// and never updated afterwards.
type GoodsReceivedItem struct {
	ID               uuid.UUID           `gorm:"type:uuid;primaryKey"`
	GRNID            uuid.UUID           `gorm:"column:grn_id;type:uuid;not null;index"`
	Position         int                 `gorm:"column:position;not null"`
	Name             string              `gorm:"column:name;type:text;not null"`
	QuantityOrdered  int                 `gorm:"column:quantity_ordered;not null"`
	QuantityReceived int                 `gorm:"column:quantity_received;not null"`
	UnitPrice        decimal.Decimal     `gorm:"column:unit_price;type:numeric(18,2);not null"`
	Condition        enums.ItemCondition `gorm:"column:condition;type:text;not null"`
	Remarks          string              `gorm:"column:remarks;type:text"`
}

func (GoodsReceivedItem) TableName() string { return "goods_received_note_items" }

func (i *GoodsReceivedItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// LineTotal is quantity received times unit price.
func (i GoodsReceivedItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.QuantityReceived)))
}
