package materialrequests

import (
	"time"

	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestInput carries the editable fields of a material request. On an
// existing record only non-zero fields are applied.
type RequestInput struct {
	Title         string
	Category      string
	Description   string
	Quantity      int
	EstimatedCost *decimal.Decimal
	Urgency       enums.Urgency
	Justification string
	Department    string
}

// SubmitInput submits a new request, or an existing draft when DraftID is set.
type SubmitInput struct {
	DraftID uuid.UUID
	RequestInput
}

// DecisionInput is an approve/reject decision by an executive or the chairman.
// Comment is mandatory on reject.
type DecisionInput struct {
	ID      uuid.UUID
	Approve bool
	Comment string
}

// ResubmitInput reopens a rejected request with updated fields.
type ResubmitInput struct {
	ID uuid.UUID
	RequestInput
}

// TransitionResult is the committed record plus the events the transition emitted.
type TransitionResult struct {
	Request *models.MaterialRequest
	Events  []events.Event
}

// MaterialRequestDTO is the API view of a material request.
type MaterialRequestDTO struct {
	ID                  uuid.UUID       `json:"id"`
	Reference           string          `json:"reference"`
	Title               string          `json:"title"`
	Category            string          `json:"category,omitempty"`
	Description         string          `json:"description,omitempty"`
	Quantity            int             `json:"quantity"`
	EstimatedCost       decimal.Decimal `json:"estimatedCost"`
	Urgency             enums.Urgency   `json:"urgency"`
	Justification       string          `json:"justification,omitempty"`
	RequesterID         uuid.UUID       `json:"requesterId"`
	RequesterName       string          `json:"requesterName"`
	Department          string          `json:"department,omitempty"`
	Stage               enums.MRFStage  `json:"stage"`
	RejectionReason     *string         `json:"rejectionReason,omitempty"`
	DecisionComment     *string         `json:"decisionComment,omitempty"`
	SubmittedAt         *time.Time      `json:"submittedAt,omitempty"`
	ExecutiveDecisionAt *time.Time      `json:"executiveDecisionAt,omitempty"`
	ChairmanDecisionAt  *time.Time      `json:"chairmanDecisionAt,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func NewMaterialRequestDTO(mr *models.MaterialRequest) *MaterialRequestDTO {
	if mr == nil {
		return nil
	}
	return &MaterialRequestDTO{
		ID:                  mr.ID,
		Reference:           mr.Reference,
		Title:               mr.Title,
		Category:            mr.Category,
		Description:         mr.Description,
		Quantity:            mr.Quantity,
		EstimatedCost:       mr.EstimatedCost,
		Urgency:             mr.Urgency,
		Justification:       mr.Justification,
		RequesterID:         mr.RequesterID,
		RequesterName:       mr.RequesterName,
		Department:          mr.Department,
		Stage:               mr.Stage,
		RejectionReason:     mr.RejectionReason,
		DecisionComment:     mr.DecisionComment,
		SubmittedAt:         mr.SubmittedAt,
		ExecutiveDecisionAt: mr.ExecutiveDecisionAt,
		ChairmanDecisionAt:  mr.ChairmanDecisionAt,
		CreatedAt:           mr.CreatedAt,
		UpdatedAt:           mr.UpdatedAt,
	}
}

func NewMaterialRequestDTOs(rows []models.MaterialRequest) []*MaterialRequestDTO {
	out := make([]*MaterialRequestDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewMaterialRequestDTO(&rows[i]))
	}
	return out
}
