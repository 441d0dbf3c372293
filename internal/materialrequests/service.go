package materialrequests

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/procureflow-backend/internal/workflow"
	"github.com/angelmondragon/procureflow-backend/pkg/auth"
	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/procureflow-backend/pkg/errors"
	"github.com/angelmondragon/procureflow-backend/pkg/events"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
	"github.com/angelmondragon/procureflow-backend/pkg/metrics"
	"github.com/angelmondragon/procureflow-backend/pkg/sequence"
	"github.com/angelmondragon/procureflow-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultHighValueThreshold is the estimated cost above which executive
// approval escalates to the chairman.
var DefaultHighValueThreshold = decimal.NewFromInt(1_000_000)

var (
	executiveRoles = []enums.Role{enums.RoleExecutive, enums.RoleAdmin}
	chairmanRoles  = []enums.Role{enums.RoleChairman}
	paymentRoles   = []enums.Role{enums.RoleFinance, enums.RoleAdmin, enums.RoleChairman}
)

// Service drives the material request lifecycle. Every transition returns the
// committed record and the events to dispatch.
type Service interface {
	SaveDraft(ctx context.Context, actor auth.Actor, input RequestInput) (*models.MaterialRequest, error)
	Submit(ctx context.Context, actor auth.Actor, input SubmitInput) (*TransitionResult, error)
	ExecutiveDecision(ctx context.Context, actor auth.Actor, input DecisionInput) (*TransitionResult, error)
	ChairmanDecision(ctx context.Context, actor auth.Actor, input DecisionInput) (*TransitionResult, error)
	Resubmit(ctx context.Context, actor auth.Actor, input ResubmitInput) (*TransitionResult, error)
	ProcessPayment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*TransitionResult, error)
	CompletePayment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*TransitionResult, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.MaterialRequest, error)
	List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]models.MaterialRequest, error)
}

// ServiceParams configure the material request service.
type ServiceParams struct {
	Repo       Repository
	References referenceAllocator
	Threshold  decimal.Decimal
	Metrics    *metrics.WorkflowMetrics
	Logger     *logger.Logger
}

type service struct {
	repo      Repository
	refs      referenceAllocator
	threshold decimal.Decimal
	metrics   *metrics.WorkflowMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the material request service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("material request repository required")
	}
	if params.References == nil {
		return nil, fmt.Errorf("reference allocator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	threshold := params.Threshold
	if threshold.IsZero() {
		threshold = DefaultHighValueThreshold
	}
	return &service{
		repo:      params.Repo,
		refs:      params.References,
		threshold: threshold,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) SaveDraft(ctx context.Context, actor auth.Actor, input RequestInput) (*models.MaterialRequest, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, workflow.Validation("draft requires a title", map[string]string{"title": "required"})
	}
	if input.EstimatedCost != nil && !types.IsMoney(*input.EstimatedCost) {
		return nil, workflow.Validation("invalid material request", map[string]string{"estimated_cost": "must be zero or greater with at most 2 decimal places"})
	}
	if input.Urgency != "" && !input.Urgency.IsValid() {
		return nil, workflow.Validation("invalid material request", map[string]string{"urgency": "must be low, medium or high"})
	}

	mr, err := s.newRequest(ctx, actor, input)
	if err != nil {
		return nil, err
	}
	mr.Stage = enums.MRFStageDraft
	if err := s.repo.Create(ctx, mr); err != nil {
		return nil, workflow.MapWriteError(err, "material request")
	}
	return mr, nil
}

func (s *service) Submit(ctx context.Context, actor auth.Actor, input SubmitInput) (*TransitionResult, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}
	now := s.now()

	if input.DraftID == uuid.Nil {
		if err := validateComplete(input.RequestInput); err != nil {
			return nil, err
		}
		mr, err := s.newRequest(ctx, actor, input.RequestInput)
		if err != nil {
			return nil, err
		}
		mr.Stage = enums.MRFStagePendingExecutiveReview
		mr.SubmittedAt = &now
		if err := s.repo.Create(ctx, mr); err != nil {
			return nil, workflow.MapWriteError(err, "material request")
		}
		s.metrics.ObserveTransition(entityName, enums.MRFStageDraft.String(), mr.Stage.String())
		return s.result(mr, events.New(enums.EventMRFSubmitted, actor.UserID, now, payloadFor(mr, actor, ""))), nil
	}

	mr, err := s.load(ctx, input.DraftID)
	if err != nil {
		return nil, err
	}
	if mr.RequesterID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the requester may submit this draft")
	}
	if mr.Stage != enums.MRFStageDraft {
		return nil, workflow.StateConflict(entityName, "submit", mr.Stage)
	}
	applyInput(mr, input.RequestInput)
	if err := validateComplete(inputFromRecord(mr)); err != nil {
		return nil, err
	}
	mr.SubmittedAt = &now
	if err := s.advance(ctx, mr, enums.MRFStagePendingExecutiveReview, now); err != nil {
		return nil, err
	}
	return s.result(mr, events.New(enums.EventMRFSubmitted, actor.UserID, now, payloadFor(mr, actor, ""))), nil
}

func (s *service) ExecutiveDecision(ctx context.Context, actor auth.Actor, input DecisionInput) (*TransitionResult, error) {
	if err := actor.Require("decide executive review", executiveRoles...); err != nil {
		return nil, err
	}
	mr, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if mr.Stage != enums.MRFStagePendingExecutiveReview {
		return nil, workflow.StateConflict(entityName, "executive decision", mr.Stage)
	}
	comment := strings.TrimSpace(input.Comment)
	if !input.Approve && comment == "" {
		return nil, workflow.Validation("rejection requires a comment", map[string]string{"comment": "required"})
	}

	now := s.now()
	mr.ExecutiveDecisionAt = &now
	mr.ExecutiveDecisionBy = &actor.UserID
	mr.DecisionComment = optional(comment)

	var (
		target    enums.MRFStage
		eventType enums.EventType
	)
	switch {
	case !input.Approve:
		target, eventType = enums.MRFStageRejectedByExecutive, enums.EventMRFRejectedByExecutive
		mr.RejectionReason = &comment
	case mr.EstimatedCost.GreaterThan(s.threshold):
		target, eventType = enums.MRFStagePendingChairmanReview, enums.EventMRFSentToChairman
	default:
		target, eventType = enums.MRFStageApprovedForPO, enums.EventMRFApprovedByExecutive
	}

	if err := s.advance(ctx, mr, target, now); err != nil {
		return nil, err
	}
	return s.result(mr, events.New(eventType, actor.UserID, now, payloadFor(mr, actor, comment))), nil
}

func (s *service) ChairmanDecision(ctx context.Context, actor auth.Actor, input DecisionInput) (*TransitionResult, error) {
	if err := actor.Require("decide chairman review", chairmanRoles...); err != nil {
		return nil, err
	}
	mr, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if mr.Stage != enums.MRFStagePendingChairmanReview {
		return nil, workflow.StateConflict(entityName, "chairman decision", mr.Stage)
	}
	comment := strings.TrimSpace(input.Comment)
	if !input.Approve && comment == "" {
		return nil, workflow.Validation("rejection requires a comment", map[string]string{"comment": "required"})
	}

	now := s.now()
	mr.ChairmanDecisionAt = &now
	mr.ChairmanDecisionBy = &actor.UserID
	mr.DecisionComment = optional(comment)

	target, eventType := enums.MRFStageApprovedForPO, enums.EventMRFApprovedByChairman
	if !input.Approve {
		target, eventType = enums.MRFStageRejectedByChairman, enums.EventMRFRejectedByChairman
		mr.RejectionReason = &comment
	}
	if err := s.advance(ctx, mr, target, now); err != nil {
		return nil, err
	}
	return s.result(mr, events.New(eventType, actor.UserID, now, payloadFor(mr, actor, comment))), nil
}

func (s *service) Resubmit(ctx context.Context, actor auth.Actor, input ResubmitInput) (*TransitionResult, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}
	mr, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if mr.RequesterID != actor.UserID && actor.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the requester may resubmit this request")
	}
	if !mr.Stage.IsRejected() {
		return nil, workflow.StateConflict(entityName, "resubmit", mr.Stage)
	}
	applyInput(mr, input.RequestInput)
	if err := validateComplete(inputFromRecord(mr)); err != nil {
		return nil, err
	}

	now := s.now()
	mr.RejectionReason = nil
	mr.DecisionComment = nil
	mr.SubmittedAt = &now
	if err := s.advance(ctx, mr, enums.MRFStagePendingExecutiveReview, now); err != nil {
		return nil, err
	}
	return s.result(mr, events.New(enums.EventMRFSubmitted, actor.UserID, now, payloadFor(mr, actor, ""))), nil
}

func (s *service) ProcessPayment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*TransitionResult, error) {
	return s.paymentStep(ctx, actor, id, "process payment",
		enums.MRFStagePendingFinancePayment, enums.MRFStagePaymentProcessing, enums.EventMRFPaymentProcessing)
}

func (s *service) CompletePayment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*TransitionResult, error) {
	return s.paymentStep(ctx, actor, id, "complete payment",
		enums.MRFStagePaymentProcessing, enums.MRFStagePaymentCompleted, enums.EventMRFPaymentCompleted)
}

func (s *service) paymentStep(ctx context.Context, actor auth.Actor, id uuid.UUID, operation string, from, to enums.MRFStage, eventType enums.EventType) (*TransitionResult, error) {
	if err := actor.Require(operation, paymentRoles...); err != nil {
		return nil, err
	}
	mr, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if mr.Stage != from {
		return nil, workflow.StateConflict(entityName, operation, mr.Stage)
	}
	now := s.now()
	if err := s.advance(ctx, mr, to, now); err != nil {
		return nil, err
	}
	return s.result(mr, events.New(eventType, actor.UserID, now, payloadFor(mr, actor, ""))), nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.MaterialRequest, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}
	mr, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == enums.RoleEmployee && mr.RequesterID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material request not found")
	}
	return mr, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]models.MaterialRequest, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}
	if filter.Stage != "" && !filter.Stage.IsValid() {
		return nil, workflow.Validation("invalid stage filter", map[string]string{"stage": "unknown stage"})
	}
	if actor.Role == enums.RoleEmployee {
		filter.RequesterID = actor.UserID
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list material requests")
	}
	return rows, nil
}

func (s *service) newRequest(ctx context.Context, actor auth.Actor, input RequestInput) (*models.MaterialRequest, error) {
	reference, err := s.refs.Next(ctx, sequence.PrefixMaterialRequest)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate material request reference")
	}
	department := strings.TrimSpace(input.Department)
	if department == "" {
		department = actor.Department
	}
	mr := &models.MaterialRequest{
		ID:            uuid.New(),
		Reference:     reference,
		Urgency:       enums.UrgencyMedium,
		RequesterID:   actor.UserID,
		RequesterName: actor.Name,
		Department:    department,
	}
	applyInput(mr, input)
	mr.Department = department
	return mr, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error) {
	if id == uuid.Nil {
		return nil, workflow.Validation("material request id required", nil)
	}
	mr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, workflow.MapFindError(err, "material request")
	}
	return mr, nil
}

func (s *service) advance(ctx context.Context, mr *models.MaterialRequest, to enums.MRFStage, now time.Time) error {
	from := mr.Stage
	if err := AdvanceStage(ctx, s.repo, mr, to, now); err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeStaleState) {
			logCtx := s.logg.WithRecord(ctx, entityName, mr.ID.String())
			s.logg.Warn(s.logg.WithFields(logCtx, map[string]any{"from": from, "to": to}), "material request transition lost race")
		}
		return err
	}
	s.metrics.ObserveTransition(entityName, from.String(), to.String())
	return nil
}

func (s *service) result(mr *models.MaterialRequest, evts ...events.Event) *TransitionResult {
	return &TransitionResult{Request: mr, Events: evts}
}

func requireIdentity(actor auth.Actor) error {
	if actor.UserID == uuid.Nil || !actor.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity required")
	}
	return nil
}

func applyInput(mr *models.MaterialRequest, input RequestInput) {
	if v := strings.TrimSpace(input.Title); v != "" {
		mr.Title = v
	}
	if v := strings.TrimSpace(input.Category); v != "" {
		mr.Category = v
	}
	if v := strings.TrimSpace(input.Description); v != "" {
		mr.Description = v
	}
	if input.Quantity != 0 {
		mr.Quantity = input.Quantity
	}
	if input.EstimatedCost != nil {
		mr.EstimatedCost = *input.EstimatedCost
	}
	if input.Urgency != "" {
		mr.Urgency = input.Urgency
	}
	if v := strings.TrimSpace(input.Justification); v != "" {
		mr.Justification = v
	}
	if v := strings.TrimSpace(input.Department); v != "" {
		mr.Department = v
	}
}

func inputFromRecord(mr *models.MaterialRequest) RequestInput {
	cost := mr.EstimatedCost
	return RequestInput{
		Title:         mr.Title,
		Category:      mr.Category,
		Description:   mr.Description,
		Quantity:      mr.Quantity,
		EstimatedCost: &cost,
		Urgency:       mr.Urgency,
		Justification: mr.Justification,
		Department:    mr.Department,
	}
}

func validateComplete(input RequestInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(input.Title) == "" {
		fields["title"] = "required"
	}
	if strings.TrimSpace(input.Category) == "" {
		fields["category"] = "required"
	}
	if strings.TrimSpace(input.Description) == "" {
		fields["description"] = "required"
	}
	if strings.TrimSpace(input.Justification) == "" {
		fields["justification"] = "required"
	}
	if input.Quantity <= 0 {
		fields["quantity"] = "must be greater than zero"
	}
	if input.EstimatedCost != nil && !types.IsMoney(*input.EstimatedCost) {
		fields["estimated_cost"] = "must be zero or greater with at most 2 decimal places"
	}
	if input.Urgency != "" && !input.Urgency.IsValid() {
		fields["urgency"] = "must be low, medium or high"
	}
	if len(fields) > 0 {
		return workflow.Validation("material request is incomplete", fields)
	}
	return nil
}

func payloadFor(mr *models.MaterialRequest, actor auth.Actor, reason string) events.Payload {
	return events.Payload{
		MRFID:         mr.Reference,
		MRFTitle:      mr.Title,
		Amount:        mr.EstimatedCost,
		Reason:        reason,
		RequesterID:   mr.RequesterID,
		RequesterName: mr.RequesterName,
		Department:    mr.Department,
		ActorName:     actor.Name,
		Urgency:       mr.Urgency.String(),
		Stage:         mr.Stage.String(),
	}
}

// ReminderEvent is the system-emitted nudge for a request still waiting on a
// review decision.
func ReminderEvent(mr *models.MaterialRequest, at time.Time) events.Event {
	return events.New(enums.EventMRFPendingReviewReminder, uuid.Nil, at, payloadFor(mr, auth.Actor{}, ""))
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
