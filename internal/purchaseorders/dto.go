package purchaseorders

import (
	"time"

	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IssueInput carries the purchase order terms for a material request. Drafts
// accept any subset; issuing requires all of them.
type IssueInput struct {
	MaterialRequestID uuid.UUID
	VendorIDs         []string
	Amount            *decimal.Decimal
	DeliveryDate      *time.Time
	PaymentTerms      string
	DocumentRef       string
}

// DecisionInput is the supply chain verdict on a purchase order awaiting signature.
type DecisionInput struct {
	ID      uuid.UUID
	Approve bool
	Comment string
}

// TransitionResult is the committed purchase order, its parent material
// request and the emitted events, in emission order.
type TransitionResult struct {
	Order   *models.PurchaseOrder
	Request *models.MaterialRequest
	Events  []events.Event
}

// PurchaseOrderDTO is the API view of a purchase order.
type PurchaseOrderDTO struct {
	ID                  uuid.UUID       `json:"id"`
	Number              string          `json:"number"`
	MaterialRequestID   uuid.UUID       `json:"materialRequestId"`
	VendorIDs           []string        `json:"vendorIds"`
	Amount              decimal.Decimal `json:"amount"`
	DeliveryDate        *time.Time      `json:"deliveryDate,omitempty"`
	PaymentTerms        string          `json:"paymentTerms,omitempty"`
	DocumentRef         string          `json:"documentRef,omitempty"`
	Stage               enums.POStage   `json:"stage"`
	RejectionReason     *string         `json:"rejectionReason,omitempty"`
	SignedBy            *uuid.UUID      `json:"signedBy,omitempty"`
	SignedAt            *time.Time      `json:"signedAt,omitempty"`
	SentToVendorsAt     *time.Time      `json:"sentToVendorsAt,omitempty"`
	SentToSupplyChainAt *time.Time      `json:"sentToSupplyChainAt,omitempty"`
	SentToFinanceAt     *time.Time      `json:"sentToFinanceAt,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func NewPurchaseOrderDTO(po *models.PurchaseOrder) *PurchaseOrderDTO {
	if po == nil {
		return nil
	}
	vendors := []string(po.VendorIDs)
	if vendors == nil {
		vendors = []string{}
	}
	return &PurchaseOrderDTO{
		ID:                  po.ID,
		Number:              po.Number,
		MaterialRequestID:   po.MaterialRequestID,
		VendorIDs:           vendors,
		Amount:              po.Amount,
		DeliveryDate:        po.DeliveryDate,
		PaymentTerms:        po.PaymentTerms,
		DocumentRef:         po.DocumentRef,
		Stage:               po.Stage,
		RejectionReason:     po.RejectionReason,
		SignedBy:            po.SignedBy,
		SignedAt:            po.SignedAt,
		SentToVendorsAt:     po.SentToVendorsAt,
		SentToSupplyChainAt: po.SentToSupplyChainAt,
		SentToFinanceAt:     po.SentToFinanceAt,
		CreatedAt:           po.CreatedAt,
		UpdatedAt:           po.UpdatedAt,
	}
}

func NewPurchaseOrderDTOs(rows []models.PurchaseOrder) []*PurchaseOrderDTO {
	out := make([]*PurchaseOrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewPurchaseOrderDTO(&rows[i]))
	}
	return out
}
