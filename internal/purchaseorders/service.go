package purchaseorders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/procureflow-backend/internal/materialrequests"
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
	"gorm.io/gorm"
)

const entityName = "purchase_order"

var (
	procurementRoles = []enums.Role{enums.RoleProcurement, enums.RoleAdmin}
	supplyChainRoles = []enums.Role{enums.RoleSupplyChain, enums.RoleAdmin}
)

var allowedTransitions = map[enums.POStage][]enums.POStage{
	enums.POStageDraft:                       {enums.POStageSentToVendors},
	enums.POStageSentToVendors:               {enums.POStagePendingSupplyChainSignature},
	enums.POStagePendingSupplyChainSignature: {enums.POStageSigned, enums.POStageDraft},
	enums.POStageSigned:                      {enums.POStageSentToFinance},
}

// Service drives the purchase order sub-flow and keeps the parent material
// request in step inside the same transaction.
type Service interface {
	SaveDraft(ctx context.Context, actor auth.Actor, input IssueInput) (*models.PurchaseOrder, error)
	Generate(ctx context.Context, actor auth.Actor, input IssueInput) (*TransitionResult, error)
	ForwardToSupplyChain(ctx context.Context, actor auth.Actor, id uuid.UUID) (*TransitionResult, error)
	SupplyChainDecision(ctx context.Context, actor auth.Actor, input DecisionInput) (*TransitionResult, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.PurchaseOrder, error)
	List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]models.PurchaseOrder, error)
}

// ServiceParams configure the purchase order service.
type ServiceParams struct {
	Repo       Repository
	Requests   materialrequests.Repository
	Tx         txRunner
	References referenceAllocator
	Metrics    *metrics.WorkflowMetrics
	Logger     *logger.Logger
}

type service struct {
	repo     Repository
	requests materialrequests.Repository
	tx       txRunner
	refs     referenceAllocator
	metrics  *metrics.WorkflowMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the purchase order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("purchase order repository required")
	}
	if params.Requests == nil {
		return nil, fmt.Errorf("material request repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.References == nil {
		return nil, fmt.Errorf("reference allocator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     params.Repo,
		requests: params.Requests,
		tx:       params.Tx,
		refs:     params.References,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) SaveDraft(ctx context.Context, actor auth.Actor, input IssueInput) (*models.PurchaseOrder, error) {
	if err := actor.Require("save purchase order draft", procurementRoles...); err != nil {
		return nil, err
	}
	if input.Amount != nil && !types.IsMoney(*input.Amount) {
		return nil, workflow.Validation("invalid purchase order", map[string]string{"amount": "must be zero or greater with at most 2 decimal places"})
	}

	var saved *models.PurchaseOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		poRepo := s.repo.WithTx(tx)
		mr, existing, err := s.loadForIssue(ctx, s.requests.WithTx(tx), poRepo, input.MaterialRequestID)
		if err != nil {
			return err
		}

		now := s.now()
		if existing == nil {
			po, err := s.newOrder(ctx, actor, mr.ID)
			if err != nil {
				return err
			}
			applyIssue(po, input)
			po.Stage = enums.POStageDraft
			if err := poRepo.Create(ctx, po); err != nil {
				return workflow.MapWriteError(err, "purchase order")
			}
			saved = po
			return nil
		}

		applyIssue(existing, input)
		existing.UpdatedAt = now
		if err := poRepo.WriteIfStage(ctx, existing, enums.POStageDraft); err != nil {
			return workflow.MapWriteError(err, "purchase order")
		}
		saved = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *service) Generate(ctx context.Context, actor auth.Actor, input IssueInput) (*TransitionResult, error) {
	if err := actor.Require("generate purchase order", procurementRoles...); err != nil {
		return nil, err
	}

	var result *TransitionResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		poRepo := s.repo.WithTx(tx)
		mrRepo := s.requests.WithTx(tx)
		mr, po, err := s.loadForIssue(ctx, mrRepo, poRepo, input.MaterialRequestID)
		if err != nil {
			return err
		}

		now := s.now()
		isNew := po == nil
		if isNew {
			if po, err = s.newOrder(ctx, actor, mr.ID); err != nil {
				return err
			}
			po.Stage = enums.POStageDraft
		}
		applyIssue(po, input)
		if err := validateIssue(po); err != nil {
			return err
		}
		po.RejectionReason = nil
		po.SentToVendorsAt = &now

		if isNew {
			po.Stage = enums.POStageSentToVendors
			if err := poRepo.Create(ctx, po); err != nil {
				return workflow.MapWriteError(err, "purchase order")
			}
			s.metrics.ObserveTransition(entityName, enums.POStageDraft.String(), po.Stage.String())
		} else if err := s.advance(ctx, poRepo, po, enums.POStageSentToVendors, now); err != nil {
			return err
		}

		if mr.Stage == enums.MRFStageApprovedForPO {
			if err := s.advanceRequest(ctx, mrRepo, mr, enums.MRFStagePOGenerated, now); err != nil {
				return err
			}
		}
		result = &TransitionResult{
			Order:   po,
			Request: mr,
			Events:  []events.Event{events.New(enums.EventPOGenerated, actor.UserID, now, payloadFor(po, mr, actor, ""))},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ForwardToSupplyChain(ctx context.Context, actor auth.Actor, id uuid.UUID) (*TransitionResult, error) {
	if err := actor.Require("forward purchase order to supply chain", procurementRoles...); err != nil {
		return nil, err
	}

	var result *TransitionResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		poRepo := s.repo.WithTx(tx)
		mrRepo := s.requests.WithTx(tx)
		po, mr, err := s.loadPair(ctx, poRepo, mrRepo, id)
		if err != nil {
			return err
		}
		if po.Stage != enums.POStageSentToVendors {
			return workflow.StateConflict(entityName, "forward to supply chain", po.Stage)
		}
		if mr.Stage != enums.MRFStagePOGenerated && mr.Stage != enums.MRFStagePendingSupplyChainSignature {
			return workflow.StateConflict("material_request", "forward to supply chain", mr.Stage)
		}

		now := s.now()
		po.SentToSupplyChainAt = &now
		if err := s.advance(ctx, poRepo, po, enums.POStagePendingSupplyChainSignature, now); err != nil {
			return err
		}
		if mr.Stage == enums.MRFStagePOGenerated {
			if err := s.advanceRequest(ctx, mrRepo, mr, enums.MRFStagePendingSupplyChainSignature, now); err != nil {
				return err
			}
		}
		result = &TransitionResult{
			Order:   po,
			Request: mr,
			Events:  []events.Event{events.New(enums.EventPOSentToSupplyChain, actor.UserID, now, payloadFor(po, mr, actor, ""))},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) SupplyChainDecision(ctx context.Context, actor auth.Actor, input DecisionInput) (*TransitionResult, error) {
	if err := actor.Require("decide purchase order signature", supplyChainRoles...); err != nil {
		return nil, err
	}
	comment := strings.TrimSpace(input.Comment)
	if !input.Approve && comment == "" {
		return nil, workflow.Validation("rejection requires a comment", map[string]string{"comment": "required"})
	}

	var result *TransitionResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		poRepo := s.repo.WithTx(tx)
		mrRepo := s.requests.WithTx(tx)
		po, mr, err := s.loadPair(ctx, poRepo, mrRepo, input.ID)
		if err != nil {
			return err
		}
		if po.Stage != enums.POStagePendingSupplyChainSignature {
			return workflow.StateConflict(entityName, "supply chain decision", po.Stage)
		}

		now := s.now()
		if !input.Approve {
			po.RejectionReason = &comment
			if err := s.advance(ctx, poRepo, po, enums.POStageDraft, now); err != nil {
				return err
			}
			result = &TransitionResult{
				Order:   po,
				Request: mr,
				Events:  []events.Event{events.New(enums.EventPORejectedBySupplyChain, actor.UserID, now, payloadFor(po, mr, actor, comment))},
			}
			return nil
		}

		if mr.Stage != enums.MRFStagePendingSupplyChainSignature {
			return workflow.StateConflict("material_request", "sign purchase order", mr.Stage)
		}
		po.SignedBy = &actor.UserID
		po.SignedAt = &now
		if err := s.advance(ctx, poRepo, po, enums.POStageSigned, now); err != nil {
			return err
		}
		if err := s.advanceRequest(ctx, mrRepo, mr, enums.MRFStageSigned, now); err != nil {
			return err
		}
		signed := events.New(enums.EventPOSigned, actor.UserID, now, payloadFor(po, mr, actor, comment))

		po.SentToFinanceAt = &now
		if err := s.advance(ctx, poRepo, po, enums.POStageSentToFinance, now); err != nil {
			return err
		}
		if err := s.advanceRequest(ctx, mrRepo, mr, enums.MRFStagePendingFinancePayment, now); err != nil {
			return err
		}
		forwarded := events.New(enums.EventPOSentToFinance, actor.UserID, now, payloadFor(po, mr, actor, ""))

		result = &TransitionResult{Order: po, Request: mr, Events: []events.Event{signed, forwarded}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.PurchaseOrder, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity required")
	}
	po, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, workflow.MapFindError(err, "purchase order")
	}
	return po, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]models.PurchaseOrder, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity required")
	}
	if filter.Stage != "" && !filter.Stage.IsValid() {
		return nil, workflow.Validation("invalid stage filter", map[string]string{"stage": "unknown stage"})
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchase orders")
	}
	return rows, nil
}

// loadForIssue returns the parent request and its existing purchase order (nil
// when none exists yet), failing unless a purchase order may be issued now.
func (s *service) loadForIssue(ctx context.Context, mrRepo materialrequests.Repository, poRepo Repository, mrID uuid.UUID) (*models.MaterialRequest, *models.PurchaseOrder, error) {
	if mrID == uuid.Nil {
		return nil, nil, workflow.Validation("material request id required", map[string]string{"material_request_id": "required"})
	}
	mr, err := mrRepo.FindByID(ctx, mrID)
	if err != nil {
		return nil, nil, workflow.MapFindError(err, "material request")
	}
	existing, err := poRepo.FindByMaterialRequest(ctx, mr.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, workflow.MapFindError(err, "purchase order")
	}

	switch mr.Stage {
	case enums.MRFStageApprovedForPO:
		if existing != nil && existing.Stage != enums.POStageDraft {
			return nil, nil, workflow.StateConflict(entityName, "issue purchase order", existing.Stage)
		}
	case enums.MRFStagePendingSupplyChainSignature:
		// Supply chain sent the order back for rework.
		if existing == nil || existing.Stage != enums.POStageDraft || existing.RejectionReason == nil {
			return nil, nil, workflow.StateConflict("material_request", "issue purchase order", mr.Stage)
		}
	default:
		return nil, nil, workflow.StateConflict("material_request", "issue purchase order", mr.Stage)
	}
	return mr, existing, nil
}

func (s *service) loadPair(ctx context.Context, poRepo Repository, mrRepo materialrequests.Repository, id uuid.UUID) (*models.PurchaseOrder, *models.MaterialRequest, error) {
	po, err := poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, workflow.MapFindError(err, "purchase order")
	}
	mr, err := mrRepo.FindByID(ctx, po.MaterialRequestID)
	if err != nil {
		return nil, nil, workflow.MapFindError(err, "material request")
	}
	return po, mr, nil
}

func (s *service) newOrder(ctx context.Context, actor auth.Actor, mrID uuid.UUID) (*models.PurchaseOrder, error) {
	number, err := s.refs.Next(ctx, sequence.PrefixPurchaseOrder)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate purchase order number")
	}
	return &models.PurchaseOrder{
		ID:                uuid.New(),
		Number:            number,
		MaterialRequestID: mrID,
		VendorIDs:         types.StringList{},
		CreatedBy:         actor.UserID,
	}, nil
}

func (s *service) advance(ctx context.Context, repo Repository, po *models.PurchaseOrder, to enums.POStage, now time.Time) error {
	from := po.Stage
	if !canTransition(from, to) {
		return workflow.StateConflict(entityName, "move to "+to.String(), from)
	}
	po.Stage = to
	po.UpdatedAt = now
	if err := repo.WriteIfStage(ctx, po, from); err != nil {
		po.Stage = from
		return workflow.MapWriteError(err, "purchase order")
	}
	s.metrics.ObserveTransition(entityName, from.String(), to.String())
	return nil
}

func (s *service) advanceRequest(ctx context.Context, repo materialrequests.Repository, mr *models.MaterialRequest, to enums.MRFStage, now time.Time) error {
	from := mr.Stage
	if err := materialrequests.AdvanceStage(ctx, repo, mr, to, now); err != nil {
		return err
	}
	s.metrics.ObserveTransition("material_request", from.String(), to.String())
	return nil
}

func canTransition(from, to enums.POStage) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func applyIssue(po *models.PurchaseOrder, input IssueInput) {
	if vendors := types.StringList(input.VendorIDs).Normalize(); len(vendors) > 0 {
		po.VendorIDs = vendors
	}
	if input.Amount != nil {
		po.Amount = *input.Amount
	}
	if input.DeliveryDate != nil {
		date := input.DeliveryDate.UTC()
		po.DeliveryDate = &date
	}
	if v := strings.TrimSpace(input.PaymentTerms); v != "" {
		po.PaymentTerms = v
	}
	if v := strings.TrimSpace(input.DocumentRef); v != "" {
		po.DocumentRef = v
	}
}

func validateIssue(po *models.PurchaseOrder) error {
	fields := map[string]string{}
	if len(po.VendorIDs) == 0 {
		fields["vendor_ids"] = "at least one vendor required"
	}
	if !po.Amount.IsPositive() || !types.IsMoney(po.Amount) {
		fields["amount"] = "must be greater than zero with at most 2 decimal places"
	}
	if po.DeliveryDate == nil {
		fields["delivery_date"] = "required"
	}
	if po.PaymentTerms == "" {
		fields["payment_terms"] = "required"
	}
	if po.DocumentRef == "" {
		fields["document_ref"] = "required"
	}
	if len(fields) > 0 {
		return workflow.Validation("purchase order is incomplete", fields)
	}
	return nil
}

func payloadFor(po *models.PurchaseOrder, mr *models.MaterialRequest, actor auth.Actor, reason string) events.Payload {
	return events.Payload{
		MRFID:         mr.Reference,
		MRFTitle:      mr.Title,
		PONumber:      po.Number,
		Amount:        po.Amount,
		Reason:        reason,
		Vendor:        strings.Join(po.VendorIDs, ", "),
		RequesterID:   mr.RequesterID,
		RequesterName: mr.RequesterName,
		Department:    mr.Department,
		ActorName:     actor.Name,
		Urgency:       mr.Urgency.String(),
	}
}
