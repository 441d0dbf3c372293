package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/procureflow-backend/api/responses"
	"github.com/angelmondragon/procureflow-backend/api/validators"
	"github.com/angelmondragon/procureflow-backend/internal/materialrequests"
	"github.com/angelmondragon/procureflow-backend/internal/purchaseorders"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
)

type purchaseOrderBody struct {
	MaterialRequestID uuid.UUID        `json:"materialRequestId" validate:"required"`
	VendorIDs         []string         `json:"vendorIds" validate:"max=50,dive,max=120"`
	Amount            *decimal.Decimal `json:"amount" validate:"omitempty,money"`
	DeliveryDate      *time.Time       `json:"deliveryDate"`
	PaymentTerms      string           `json:"paymentTerms" validate:"max=500"`
	DocumentRef       string           `json:"documentRef" validate:"max=500"`
}

func (b purchaseOrderBody) input() purchaseorders.IssueInput {
	vendors := make([]string, 0, len(b.VendorIDs))
	for _, vendor := range b.VendorIDs {
		if v := validators.SanitizeString(vendor, 120); v != "" {
			vendors = append(vendors, v)
		}
	}
	return purchaseorders.IssueInput{
		MaterialRequestID: b.MaterialRequestID,
		VendorIDs:         vendors,
		Amount:            b.Amount,
		DeliveryDate:      b.DeliveryDate,
		PaymentTerms:      strings.TrimSpace(b.PaymentTerms),
		DocumentRef:       strings.TrimSpace(b.DocumentRef),
	}
}

type purchaseOrderTransitionResponse struct {
	PurchaseOrder   *purchaseorders.PurchaseOrderDTO      `json:"purchaseOrder"`
	MaterialRequest *materialrequests.MaterialRequestDTO `json:"materialRequest,omitempty"`
}

func newPurchaseOrderTransitionResponse(result *purchaseorders.TransitionResult) purchaseOrderTransitionResponse {
	return purchaseOrderTransitionResponse{
		PurchaseOrder:   purchaseorders.NewPurchaseOrderDTO(result.Order),
		MaterialRequest: materialrequests.NewMaterialRequestDTO(result.Request),
	}
}

func SavePurchaseOrderDraft(svc purchaseorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body purchaseOrderBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		po, err := svc.SaveDraft(r.Context(), actor, body.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, purchaseorders.NewPurchaseOrderDTO(po))
	}
}

// GeneratePurchaseOrder issues the order to vendors and hands it to supply
// chain for signature.
func GeneratePurchaseOrder(svc purchaseorders.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body purchaseOrderBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Generate(r.Context(), actor, body.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		forward(r.Context(), fwd, result.Events)
		responses.WriteSuccessStatus(w, http.StatusCreated, newPurchaseOrderTransitionResponse(result))
	}
}

func ForwardPurchaseOrderToSupplyChain(svc purchaseorders.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ForwardToSupplyChain(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		forward(r.Context(), fwd, result.Events)
		responses.WriteSuccess(w, newPurchaseOrderTransitionResponse(result))
	}
}

func SupplyChainDecision(svc purchaseorders.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body decisionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SupplyChainDecision(r.Context(), actor, purchaseorders.DecisionInput{
			ID:      id,
			Approve: *body.Approve,
			Comment: strings.TrimSpace(body.Comment),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		forward(r.Context(), fwd, result.Events)
		responses.WriteSuccess(w, newPurchaseOrderTransitionResponse(result))
	}
}

func GetPurchaseOrder(svc purchaseorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		po, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchaseorders.NewPurchaseOrderDTO(po))
	}
}

func ListPurchaseOrders(svc purchaseorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var filter purchaseorders.ListFilter
		if filter.Stage, err = validators.ParseQueryEnum[enums.POStage](r, "stage"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.MaterialRequestID, err = optionalUUIDQuery(r, "materialRequestId"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), actor, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchaseorders.NewPurchaseOrderDTOs(rows))
	}
}
