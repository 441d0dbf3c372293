package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/procureflow-backend/api/responses"
	"github.com/angelmondragon/procureflow-backend/api/validators"
	"github.com/angelmondragon/procureflow-backend/internal/materialrequests"
	pkgAuth "github.com/angelmondragon/procureflow-backend/pkg/auth"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
)

type materialRequestBody struct {
	Title         string           `json:"title" validate:"max=200"`
	Category      string           `json:"category" validate:"max=120"`
	Description   string           `json:"description" validate:"max=4000"`
	Quantity      int              `json:"quantity" validate:"min=0"`
	EstimatedCost *decimal.Decimal `json:"estimatedCost" validate:"omitempty,money"`
	Urgency       enums.Urgency    `json:"urgency" validate:"omitempty,enum"`
	Justification string           `json:"justification" validate:"max=4000"`
	Department    string           `json:"department" validate:"max=120"`
}

func (b materialRequestBody) input() materialrequests.RequestInput {
	return materialrequests.RequestInput{
		Title:         validators.SanitizeString(b.Title, 200),
		Category:      validators.SanitizeString(b.Category, 120),
		Description:   strings.TrimSpace(b.Description),
		Quantity:      b.Quantity,
		EstimatedCost: b.EstimatedCost,
		Urgency:       b.Urgency,
		Justification: strings.TrimSpace(b.Justification),
		Department:    validators.SanitizeString(b.Department, 120),
	}
}

type submitMaterialRequestBody struct {
	DraftID *uuid.UUID `json:"draftId"`
	materialRequestBody
}

type decisionBody struct {
	Approve *bool  `json:"approve" validate:"required"`
	Comment string `json:"comment" validate:"max=2000"`
}

// SaveMaterialRequestDraft stores an incomplete request in Draft.
func SaveMaterialRequestDraft(svc materialrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body materialRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mr, err := svc.SaveDraft(r.Context(), actor, body.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, materialrequests.NewMaterialRequestDTO(mr))
	}
}

// SubmitMaterialRequest submits a new request, or an existing draft when
// draftId is present.
func SubmitMaterialRequest(svc materialrequests.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body submitMaterialRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := materialrequests.SubmitInput{RequestInput: body.input()}
		if body.DraftID != nil {
			input.DraftID = *body.DraftID
		}
		result, err := svc.Submit(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		forward(r.Context(), fwd, result.Events)
		responses.WriteSuccessStatus(w, http.StatusCreated, materialrequests.NewMaterialRequestDTO(result.Request))
	}
}

func ExecutiveDecision(svc materialrequests.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return decide(svc.ExecutiveDecision, fwd, logg)
}

func ChairmanDecision(svc materialrequests.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return decide(svc.ChairmanDecision, fwd, logg)
}

type decisionFunc func(ctx context.Context, actor pkgAuth.Actor, input materialrequests.DecisionInput) (*materialrequests.TransitionResult, error)

func decide(fn decisionFunc, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuidParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body decisionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := fn(r.Context(), actor, materialrequests.DecisionInput{
			ID:      id,
			Approve: *body.Approve,
			Comment: strings.TrimSpace(body.Comment),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		forward(r.Context(), fwd, result.Events)
		responses.WriteSuccess(w, materialrequests.NewMaterialRequestDTO(result.Request))
	}
}

// ResubmitMaterialRequest reopens a rejected request for executive review.
func ResubmitMaterialRequest(svc materialrequests.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuidParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body materialRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Resubmit(r.Context(), actor, materialrequests.ResubmitInput{ID: id, RequestInput: body.input()})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		forward(r.Context(), fwd, result.Events)
		responses.WriteSuccess(w, materialrequests.NewMaterialRequestDTO(result.Request))
	}
}

func ProcessMaterialRequestPayment(svc materialrequests.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return advanceRequest(svc.ProcessPayment, fwd, logg)
}

func CompleteMaterialRequestPayment(svc materialrequests.Service, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return advanceRequest(svc.CompletePayment, fwd, logg)
}

type requestAdvanceFunc func(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID) (*materialrequests.TransitionResult, error)

func advanceRequest(fn requestAdvanceFunc, fwd EventForwarder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuidParam(r, "requestId")
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
		responses.WriteSuccess(w, materialrequests.NewMaterialRequestDTO(result.Request))
	}
}

func GetMaterialRequest(svc materialrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuidParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mr, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, materialrequests.NewMaterialRequestDTO(mr))
	}
}

// ListMaterialRequests filters by ?stage= and ?requesterId=.
func ListMaterialRequests(svc materialrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var filter materialrequests.ListFilter
		if filter.Stage, err = validators.ParseQueryEnum[enums.MRFStage](r, "stage"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.RequesterID, err = optionalUUIDQuery(r, "requesterId"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), actor, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, materialrequests.NewMaterialRequestDTOs(rows))
	}
}
