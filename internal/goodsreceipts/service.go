package goodsreceipts

import (
	"context"
	"fmt"
	"strconv"
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

const entityName = "goods_received_note"

var (
	receivingRoles = []enums.Role{enums.RoleWarehouse, enums.RoleLogistics, enums.RoleProcurement, enums.RoleAdmin}
	paymentRoles   = []enums.Role{enums.RoleFinance, enums.RoleAdmin, enums.RoleChairman}
	rejectRoles    = []enums.Role{enums.RoleWarehouse, enums.RoleLogistics, enums.RoleProcurement, enums.RoleFinance, enums.RoleAdmin}
)

var nextStatus = map[enums.GRNStatus]enums.GRNStatus{
	enums.GRNStatusPendingInspection: enums.GRNStatusInspected,
	enums.GRNStatusInspected:         enums.GRNStatusWithFinance,
	enums.GRNStatusWithFinance:       enums.GRNStatusPaymentProcessing,
	enums.GRNStatusPaymentProcessing: enums.GRNStatusCompleted,
}

// Service drives goods received notes from receipt through inspection and payment.
type Service interface {
	Create(ctx context.Context, actor auth.Actor, input CreateInput) (*TransitionResult, error)
	Inspect(ctx context.Context, actor auth.Actor, id uuid.UUID) (*TransitionResult, error)
	ForwardToFinance(ctx context.Context, actor auth.Actor, id uuid.UUID) (*TransitionResult, error)
	ProcessPayment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*TransitionResult, error)
	CompletePayment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*TransitionResult, error)
	Reject(ctx context.Context, actor auth.Actor, input RejectInput) (*TransitionResult, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.GoodsReceivedNote, error)
	List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]models.GoodsReceivedNote, error)
}

// ServiceParams configure the goods received note service. AutoForward sends
// an inspected note to finance in the same call.
type ServiceParams struct {
	Repo        Repository
	References  referenceAllocator
	AutoForward bool
	Metrics     *metrics.WorkflowMetrics
	Logger      *logger.Logger
}

type service struct {
	repo        Repository
	refs        referenceAllocator
	autoForward bool
	metrics     *metrics.WorkflowMetrics
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds the goods received note service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("goods received note repository required")
	}
	if params.References == nil {
		return nil, fmt.Errorf("reference allocator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        params.Repo,
		refs:        params.References,
		autoForward: params.AutoForward,
		metrics:     params.Metrics,
		logg:        params.Logger,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateInput) (*TransitionResult, error) {
	if err := actor.Require("create goods received note", receivingRoles...); err != nil {
		return nil, err
	}
	items, err := buildItems(input.Items)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if strings.TrimSpace(input.PONumber) == "" {
		fields["po_number"] = "required"
	}
	if strings.TrimSpace(input.Vendor) == "" {
		fields["vendor"] = "required"
	}
	if len(fields) > 0 {
		return nil, workflow.Validation("goods received note is incomplete", fields)
	}

	number, err := s.refs.Next(ctx, sequence.PrefixGoodsReceived)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate goods received note number")
	}
	grn := &models.GoodsReceivedNote{
		ID:             uuid.New(),
		Number:         number,
		PONumber:       strings.TrimSpace(input.PONumber),
		Vendor:         strings.TrimSpace(input.Vendor),
		Location:       strings.TrimSpace(input.Location),
		InvoiceRef:     strings.TrimSpace(input.InvoiceRef),
		TotalAmount:    Total(items),
		Status:         enums.GRNStatusPendingInspection,
		PaymentStatus:  enums.GRNPaymentStatusNone,
		ReceivedBy:     actor.UserID,
		ReceivedByName: actor.Name,
		Items:          items,
	}
	if err := s.repo.Create(ctx, grn); err != nil {
		return nil, workflow.MapWriteError(err, "goods received note")
	}
	return s.result(grn, events.New(enums.EventGRNCreated, actor.UserID, s.now(), payloadFor(grn, actor, ""))), nil
}

func (s *service) Inspect(ctx context.Context, actor auth.Actor, id uuid.UUID) (*TransitionResult, error) {
	if err := actor.Require("inspect goods received note", receivingRoles...); err != nil {
		return nil, err
	}
	grn, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	grn.InspectedBy = &actor.UserID
	grn.InspectedAt = &now
	if err := s.advance(ctx, grn, enums.GRNStatusPendingInspection, now); err != nil {
		return nil, err
	}
	res := s.result(grn, events.New(enums.EventGRNInspected, actor.UserID, now, payloadFor(grn, actor, "")))
	if !s.autoForward {
		return res, nil
	}

	forwarded, err := s.forward(ctx, actor, grn)
	if err != nil {
		logCtx := s.logg.WithRecord(ctx, entityName, grn.ID.String())
		s.logg.Error(logCtx, "auto-forward to finance failed", err)
		return res, nil
	}
	res.Events = append(res.Events, forwarded...)
	return res, nil
}

func (s *service) ForwardToFinance(ctx context.Context, actor auth.Actor, id uuid.UUID) (*TransitionResult, error) {
	if err := actor.Require("forward goods received note to finance", receivingRoles...); err != nil {
		return nil, err
	}
	grn, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	evts, err := s.forward(ctx, actor, grn)
	if err != nil {
		return nil, err
	}
	return s.result(grn, evts...), nil
}

// forward is a no-op for a note already with finance.
func (s *service) forward(ctx context.Context, actor auth.Actor, grn *models.GoodsReceivedNote) ([]events.Event, error) {
	if grn.Status == enums.GRNStatusWithFinance {
		return nil, nil
	}
	now := s.now()
	grn.FinanceReceivedAt = &now
	if err := s.advance(ctx, grn, enums.GRNStatusInspected, now); err != nil {
		grn.FinanceReceivedAt = nil
		return nil, err
	}
	return []events.Event{events.New(enums.EventGRNSentToFinance, actor.UserID, now, payloadFor(grn, actor, ""))}, nil
}

func (s *service) ProcessPayment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*TransitionResult, error) {
	if err := actor.Require("process goods received note payment", paymentRoles...); err != nil {
		return nil, err
	}
	grn, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	grn.PaymentStatus = enums.GRNPaymentStatusApproved
	grn.PaymentApprovedBy = &actor.UserID
	grn.PaymentApprovedAt = &now
	if err := s.advance(ctx, grn, enums.GRNStatusWithFinance, now); err != nil {
		return nil, err
	}
	return s.result(grn, events.New(enums.EventPaymentProcessing, actor.UserID, now, payloadFor(grn, actor, ""))), nil
}

func (s *service) CompletePayment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*TransitionResult, error) {
	if err := actor.Require("complete goods received note payment", paymentRoles...); err != nil {
		return nil, err
	}
	grn, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	grn.PaymentStatus = enums.GRNPaymentStatusPaid
	grn.PaidAt = &now
	if err := s.advance(ctx, grn, enums.GRNStatusPaymentProcessing, now); err != nil {
		return nil, err
	}
	return s.result(grn, events.New(enums.EventPaymentCompleted, actor.UserID, now, payloadFor(grn, actor, ""))), nil
}

func (s *service) Reject(ctx context.Context, actor auth.Actor, input RejectInput) (*TransitionResult, error) {
	if err := actor.Require("reject goods received note", rejectRoles...); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, workflow.Validation("rejection requires a reason", map[string]string{"reason": "required"})
	}
	grn, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	from := grn.Status
	if from == enums.GRNStatusCompleted || from == enums.GRNStatusRejected {
		return nil, workflow.StateConflict(entityName, "reject", from)
	}

	now := s.now()
	grn.Status = enums.GRNStatusRejected
	grn.RejectionReason = &reason
	grn.UpdatedAt = now
	if err := s.repo.WriteIfStatus(ctx, grn, from); err != nil {
		grn.Status = from
		return nil, workflow.MapWriteError(err, "goods received note")
	}
	s.metrics.ObserveTransition(entityName, from.String(), grn.Status.String())
	return s.result(grn, events.New(enums.EventGRNRejected, actor.UserID, now, payloadFor(grn, actor, reason))), nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.GoodsReceivedNote, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity required")
	}
	return s.load(ctx, id)
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]models.GoodsReceivedNote, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity required")
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, workflow.Validation("invalid status filter", map[string]string{"status": "unknown status"})
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list goods received notes")
	}
	return rows, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.GoodsReceivedNote, error) {
	if id == uuid.Nil {
		return nil, workflow.Validation("goods received note id required", nil)
	}
	grn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, workflow.MapFindError(err, "goods received note")
	}
	return grn, nil
}

// advance moves grn one step forward from expected, which must be its current status.
func (s *service) advance(ctx context.Context, grn *models.GoodsReceivedNote, expected enums.GRNStatus, now time.Time) error {
	from := grn.Status
	to, ok := nextStatus[expected]
	if from != expected || !ok {
		return workflow.StateConflict(entityName, "move to "+to.String(), from)
	}
	grn.Status = to
	grn.UpdatedAt = now
	if err := s.repo.WriteIfStatus(ctx, grn, from); err != nil {
		grn.Status = from
		return workflow.MapWriteError(err, "goods received note")
	}
	s.metrics.ObserveTransition(entityName, from.String(), to.String())
	return nil
}

func (s *service) result(grn *models.GoodsReceivedNote, evts ...events.Event) *TransitionResult {
	return &TransitionResult{Note: grn, Events: evts}
}

// Total is the sum of quantity received times unit price over items.
func Total(items []models.GoodsReceivedItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func buildItems(inputs []ItemInput) ([]models.GoodsReceivedItem, error) {
	if len(inputs) == 0 {
		return nil, workflow.Validation("at least one item required", map[string]string{"items": "required"})
	}
	fields := map[string]string{}
	items := make([]models.GoodsReceivedItem, 0, len(inputs))
	for i, in := range inputs {
		key := "items[" + strconv.Itoa(i) + "]"
		name := strings.TrimSpace(in.Name)
		condition := in.Condition
		if condition == "" {
			condition = enums.ItemConditionGood
		}
		switch {
		case name == "":
			fields[key+".name"] = "required"
		case in.QuantityOrdered < 0 || in.QuantityReceived < 0:
			fields[key+".quantity"] = "must be zero or greater"
		case !types.IsMoney(in.UnitPrice):
			fields[key+".unit_price"] = "must be zero or greater with at most 2 decimal places"
		case !condition.IsValid():
			fields[key+".condition"] = "must be good, partial or damaged"
		}
		items = append(items, models.GoodsReceivedItem{
			Position:         i + 1,
			Name:             name,
			QuantityOrdered:  in.QuantityOrdered,
			QuantityReceived: in.QuantityReceived,
			UnitPrice:        in.UnitPrice,
			Condition:        condition,
			Remarks:          strings.TrimSpace(in.Remarks),
		})
	}
	if len(fields) > 0 {
		return nil, workflow.Validation("invalid goods received items", fields)
	}
	return items, nil
}

func payloadFor(grn *models.GoodsReceivedNote, actor auth.Actor, reason string) events.Payload {
	return events.Payload{
		GRNID:     grn.Number,
		PONumber:  grn.PONumber,
		Amount:    grn.TotalAmount,
		Vendor:    grn.Vendor,
		Reason:    reason,
		ActorName: actor.Name,
	}
}
