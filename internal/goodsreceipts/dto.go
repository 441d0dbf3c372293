package goodsreceipts

import (
	"time"

	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemInput is one received line.
type ItemInput struct {
	Name             string
	QuantityOrdered  int
	QuantityReceived int
	UnitPrice        decimal.Decimal
	Condition        enums.ItemCondition
	Remarks          string
}

// CreateInput records a delivery against a purchase order.
type CreateInput struct {
	PONumber   string
	Vendor     string
	Location   string
	InvoiceRef string
	Items      []ItemInput
}

// RejectInput rejects a note before it completes.
type RejectInput struct {
	ID     uuid.UUID
	Reason string
}

// TransitionResult is the committed note plus the emitted events in order.
type TransitionResult struct {
	Note   *models.GoodsReceivedNote
	Events []events.Event
}

// ItemDTO is one line of a goods received note.
type ItemDTO struct {
	Name             string              `json:"name"`
	QuantityOrdered  int                 `json:"quantityOrdered"`
	QuantityReceived int                 `json:"quantityReceived"`
	UnitPrice        decimal.Decimal     `json:"unitPrice"`
	Condition        enums.ItemCondition `json:"condition"`
	Remarks          string              `json:"remarks,omitempty"`
}

// GoodsReceivedNoteDTO is the API view of a goods received note.
type GoodsReceivedNoteDTO struct {
	ID                uuid.UUID              `json:"id"`
	Number            string                 `json:"number"`
	PONumber          string                 `json:"poNumber"`
	Vendor            string                 `json:"vendor"`
	Location          string                 `json:"location,omitempty"`
	InvoiceRef        string                 `json:"invoiceRef,omitempty"`
	TotalAmount       decimal.Decimal        `json:"totalAmount"`
	Status            enums.GRNStatus        `json:"status"`
	PaymentStatus     enums.GRNPaymentStatus `json:"paymentStatus"`
	ReceivedBy        uuid.UUID              `json:"receivedBy"`
	ReceivedByName    string                 `json:"receivedByName,omitempty"`
	InspectedAt       *time.Time             `json:"inspectedAt,omitempty"`
	FinanceReceivedAt *time.Time             `json:"financeReceivedAt,omitempty"`
	PaymentApprovedAt *time.Time             `json:"paymentApprovedAt,omitempty"`
	PaidAt            *time.Time             `json:"paidAt,omitempty"`
	RejectionReason   *string                `json:"rejectionReason,omitempty"`
	Items             []ItemDTO              `json:"items"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

func NewGoodsReceivedNoteDTO(note *models.GoodsReceivedNote) *GoodsReceivedNoteDTO {
	if note == nil {
		return nil
	}
	items := make([]ItemDTO, 0, len(note.Items))
	for _, item := range note.Items {
		items = append(items, ItemDTO{
			Name:             item.Name,
			QuantityOrdered:  item.QuantityOrdered,
			QuantityReceived: item.QuantityReceived,
			UnitPrice:        item.UnitPrice,
			Condition:        item.Condition,
			Remarks:          item.Remarks,
		})
	}
	return &GoodsReceivedNoteDTO{
		ID:                note.ID,
		Number:            note.Number,
		PONumber:          note.PONumber,
		Vendor:            note.Vendor,
		Location:          note.Location,
		InvoiceRef:        note.InvoiceRef,
		TotalAmount:       note.TotalAmount,
		Status:            note.Status,
		PaymentStatus:     note.PaymentStatus,
		ReceivedBy:        note.ReceivedBy,
		ReceivedByName:    note.ReceivedByName,
		InspectedAt:       note.InspectedAt,
		FinanceReceivedAt: note.FinanceReceivedAt,
		PaymentApprovedAt: note.PaymentApprovedAt,
		PaidAt:            note.PaidAt,
		RejectionReason:   note.RejectionReason,
		Items:             items,
		CreatedAt:         note.CreatedAt,
		UpdatedAt:         note.UpdatedAt,
	}
}

func NewGoodsReceivedNoteDTOs(rows []models.GoodsReceivedNote) []*GoodsReceivedNoteDTO {
	out := make([]*GoodsReceivedNoteDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewGoodsReceivedNoteDTO(&rows[i]))
	}
	return out
}
