package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/procureflow-backend/api/responses"
	"github.com/angelmondragon/procureflow-backend/api/validators"
	"github.com/angelmondragon/procureflow-backend/internal/goodsreceipts"
	pkgAuth "github.com/angelmondragon/procureflow-backend/pkg/auth"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
)

type goodsReceivedItemBody struct {
	Name             string              `json:"name" validate:"required,max=200"`
	QuantityOrdered  int                 `json:"quantityOrdered" validate:"min=0"`
	QuantityReceived int                 `json:"quantityReceived" validate:"min=0"`
	UnitPrice        decimal.Decimal     `json:"unitPrice" validate:"money"`
	Condition        enums.ItemCondition `json:"condition" validate:"required,enum"`
	Remarks          string              `json:"remarks" validate:"max=1000"`
}

type goodsReceivedNoteBody struct {
	PONumber   string                  `json:"poNumber" validate:"required,max=64"`
	Vendor     string                  `json:"vendor" validate:"required,max=200"`
	Location   string                  `json:"location" validate:"max=200"`
	InvoiceRef string                  `json:"invoiceRef" validate:"max=200"`
	Items      []goodsReceivedItemBody `json:"items" validate:"required,min=1,dive"`
}

type rejectBody struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

// CreateGoodsReceivedNote records a delivery against a purchase order.
func CreateGoodsReceivedNote(svc goodsreceipts.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body goodsReceivedNoteBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := goodsreceipts.CreateInput{
			PONumber:   strings.TrimSpace(body.PONumber),
			Vendor:     validators.SanitizeString(body.Vendor, 200),
			Location:   validators.SanitizeString(body.Location, 200),
			InvoiceRef: strings.TrimSpace(body.InvoiceRef),
			Items:      make([]goodsreceipts.ItemInput, 0, len(body.Items)),
		}
		for _, item := range body.Items {
			input.Items = append(input.Items, goodsreceipts.ItemInput{
				Name:             validators.SanitizeString(item.Name, 200),
				QuantityOrdered:  item.QuantityOrdered,
				QuantityReceived: item.QuantityReceived,
				UnitPrice:        item.UnitPrice,
				Condition:        item.Condition,
				Remarks:          strings.TrimSpace(item.Remarks),
			})
		}

		result, err := svc.Create(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		forward(r.Context(), fwd, result.Events)
		responses.WriteSuccessStatus(w, http.StatusCreated, goodsreceipts.NewGoodsReceivedNoteDTO(result.Note))
	}
}

func InspectGoodsReceivedNote(svc goodsreceipts.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return advanceNote(svc.Inspect, fwd, logg)
}

func ForwardGoodsReceivedNoteToFinance(svc goodsreceipts.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return advanceNote(svc.ForwardToFinance, fwd, logg)
}

func ProcessGoodsReceivedNotePayment(svc goodsreceipts.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return advanceNote(svc.ProcessPayment, fwd, logg)
}

func CompleteGoodsReceivedNotePayment(svc goodsreceipts.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return advanceNote(svc.CompletePayment, fwd, logg)
}

type noteAdvanceFunc func(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID) (*goodsreceipts.TransitionResult, error)

func advanceNote(fn noteAdvanceFunc, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuidParam(r, "noteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := fn(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		forward(r.Context(), fwd, result.Events)
		responses.WriteSuccess(w, goodsreceipts.NewGoodsReceivedNoteDTO(result.Note))
	}
}

func RejectGoodsReceivedNote(svc goodsreceipts.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuidParam(r, "noteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body rejectBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Reject(r.Context(), actor, goodsreceipts.RejectInput{ID: id, Reason: strings.TrimSpace(body.Reason)})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		forward(r.Context(), fwd, result.Events)
		responses.WriteSuccess(w, goodsreceipts.NewGoodsReceivedNoteDTO(result.Note))
	}
}

func GetGoodsReceivedNote(svc goodsreceipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuidParam(r, "noteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		note, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, goodsreceipts.NewGoodsReceivedNoteDTO(note))
	}
}

func ListGoodsReceivedNotes(svc goodsreceipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := goodsreceipts.ListFilter{PONumber: strings.TrimSpace(r.URL.Query().Get("poNumber"))}
		if filter.Status, err = validators.ParseQueryEnum[enums.GRNStatus](r, "status"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), actor, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, goodsreceipts.NewGoodsReceivedNoteDTOs(rows))
	}
}
