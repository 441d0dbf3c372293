package purchaseorders

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/procureflow-backend/internal/materialrequests"
	"github.com/angelmondragon/procureflow-backend/pkg/auth"
	"github.com/angelmondragon/procureflow-backend/pkg/db"
	"github.com/angelmondragon/procureflow-backend/pkg/db/dbtest"
	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/procureflow-backend/pkg/errors"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubReferences struct{ next int }

func (s *stubReferences) Next(ctx context.Context, prefix string) (string, error) {
	s.next++
	return fmt.Sprintf("%s-%06d", prefix, s.next), nil
}

// failingRequests loses every material request compare-and-set.
type failingRequests struct {
	materialrequests.Repository
}

func (f failingRequests) WithTx(tx *gorm.DB) materialrequests.Repository {
	return failingRequests{Repository: f.Repository.WithTx(tx)}
}

func (f failingRequests) WriteIfStage(ctx context.Context, mr *models.MaterialRequest, expected enums.MRFStage) error {
	return db.ErrStaleWrite
}

var (
	procurementOfficer = auth.Actor{UserID: uuid.New(), Name: "Proc", Role: enums.RoleProcurement}
	supplyChainLead    = auth.Actor{UserID: uuid.New(), Name: "Chain", Role: enums.RoleSupplyChain}
)

type fixture struct {
	conn     *gorm.DB
	svc      Service
	orders   Repository
	requests materialrequests.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	f := &fixture{
		conn:     conn,
		orders:   NewRepository(conn),
		requests: materialrequests.NewRepository(conn),
	}
	f.svc = f.build(t, f.requests)
	return f
}

func (f *fixture) build(t *testing.T, requests materialrequests.Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:       f.orders,
		Requests:   requests,
		Tx:         db.Wrap(f.conn),
		References: &stubReferences{},
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func (f *fixture) seedRequest(t *testing.T, stage enums.MRFStage) *models.MaterialRequest {
	t.Helper()
	mr := &models.MaterialRequest{
		Reference:     "MRF-000001",
		Title:         "Generators",
		Quantity:      2,
		EstimatedCost: decimal.NewFromInt(400000),
		Urgency:       enums.UrgencyHigh,
		RequesterID:   uuid.New(),
		RequesterName: "Ada",
		Department:    "Facilities",
		Stage:         stage,
	}
	require.NoError(t, f.requests.Create(context.Background(), mr))
	return mr
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *models.MaterialRequest {
	t.Helper()
	mr, err := f.requests.FindByID(context.Background(), id)
	require.NoError(t, err)
	return mr
}

func issueInput(mrID uuid.UUID) IssueInput {
	amount := decimal.NewFromInt(395000)
	delivery := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	return IssueInput{
		MaterialRequestID: mrID,
		VendorIDs:         []string{"vendor-1", " vendor-2 ", "vendor-1"},
		Amount:            &amount,
		DeliveryDate:      &delivery,
		PaymentTerms:      "net 30",
		DocumentRef:       "docs/po-draft.pdf",
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, pkgerrors.As(err).Code(), err.Error())
}

func TestPurchaseOrderHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mr := f.seedRequest(t, enums.MRFStageApprovedForPO)

	generated, err := f.svc.Generate(ctx, procurementOfficer, issueInput(mr.ID))
	require.NoError(t, err)
	assert.Equal(t, enums.POStageSentToVendors, generated.Order.Stage)
	assert.Equal(t, "PO-000001", generated.Order.Number)
	assert.Equal(t, []string{"vendor-1", "vendor-2"}, []string(generated.Order.VendorIDs))
	assert.Equal(t, enums.MRFStagePOGenerated, f.reload(t, mr.ID).Stage)
	require.Len(t, generated.Events, 1)
	assert.Equal(t, enums.EventPOGenerated, generated.Events[0].Type)
	assert.Equal(t, "PO-000001", generated.Events[0].Payload.PONumber)
	assert.Equal(t, "MRF-000001", generated.Events[0].Payload.MRFID)

	forwarded, err := f.svc.ForwardToSupplyChain(ctx, procurementOfficer, generated.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.POStagePendingSupplyChainSignature, forwarded.Order.Stage)
	assert.Equal(t, enums.MRFStagePendingSupplyChainSignature, f.reload(t, mr.ID).Stage)
	assert.Equal(t, enums.EventPOSentToSupplyChain, forwarded.Events[0].Type)

	signed, err := f.svc.SupplyChainDecision(ctx, supplyChainLead, DecisionInput{ID: generated.Order.ID, Approve: true})
	require.NoError(t, err)
	assert.Equal(t, enums.POStageSentToFinance, signed.Order.Stage)
	require.NotNil(t, signed.Order.SignedBy)
	assert.Equal(t, supplyChainLead.UserID, *signed.Order.SignedBy)
	require.Len(t, signed.Events, 2)
	assert.Equal(t, enums.EventPOSigned, signed.Events[0].Type)
	assert.Equal(t, enums.EventPOSentToFinance, signed.Events[1].Type)

	stored, err := f.orders.FindByID(ctx, generated.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.POStageSentToFinance, stored.Stage)
	assert.Equal(t, enums.MRFStagePendingFinancePayment, f.reload(t, mr.ID).Stage)
}

func TestGenerateRequiresApprovedRequestAndCompleteTerms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := f.seedRequest(t, enums.MRFStagePendingExecutiveReview)
	_, err := f.svc.Generate(ctx, procurementOfficer, issueInput(pending.ID))
	assertCode(t, err, pkgerrors.CodeStateConflict)

	_, err = f.svc.Generate(ctx, procurementOfficer, issueInput(uuid.New()))
	assertCode(t, err, pkgerrors.CodeNotFound)

	_, err = f.svc.Generate(ctx, supplyChainLead, issueInput(pending.ID))
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestGenerateValidatesTerms(t *testing.T) {
	f := newFixture(t)
	mr := f.seedRequest(t, enums.MRFStageApprovedForPO)

	input := issueInput(mr.ID)
	input.VendorIDs = []string{" "}
	zero := decimal.Zero
	input.Amount = &zero
	_, err := f.svc.Generate(context.Background(), procurementOfficer, input)
	assertCode(t, err, pkgerrors.CodeValidation)

	fields := pkgerrors.As(err).Details().(map[string]string)
	assert.Contains(t, fields, "vendor_ids")
	assert.Contains(t, fields, "amount")
	assert.Equal(t, enums.MRFStageApprovedForPO, f.reload(t, mr.ID).Stage)
}

func TestSaveDraftThenGenerateReusesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mr := f.seedRequest(t, enums.MRFStageApprovedForPO)

	draft, err := f.svc.SaveDraft(ctx, procurementOfficer, IssueInput{MaterialRequestID: mr.ID, PaymentTerms: "net 15"})
	require.NoError(t, err)
	assert.Equal(t, enums.POStageDraft, draft.Stage)
	assert.Equal(t, enums.MRFStageApprovedForPO, f.reload(t, mr.ID).Stage)

	input := issueInput(mr.ID)
	input.PaymentTerms = ""
	generated, err := f.svc.Generate(ctx, procurementOfficer, input)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, generated.Order.ID)
	assert.Equal(t, "net 15", generated.Order.PaymentTerms)

	_, err = f.svc.SaveDraft(ctx, procurementOfficer, IssueInput{MaterialRequestID: mr.ID})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestSupplyChainRejectionAndReissue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mr := f.seedRequest(t, enums.MRFStageApprovedForPO)

	generated, err := f.svc.Generate(ctx, procurementOfficer, issueInput(mr.ID))
	require.NoError(t, err)
	_, err = f.svc.ForwardToSupplyChain(ctx, procurementOfficer, generated.Order.ID)
	require.NoError(t, err)

	_, err = f.svc.SupplyChainDecision(ctx, supplyChainLead, DecisionInput{ID: generated.Order.ID})
	assertCode(t, err, pkgerrors.CodeValidation)

	rejected, err := f.svc.SupplyChainDecision(ctx, supplyChainLead, DecisionInput{ID: generated.Order.ID, Comment: "wrong vendor"})
	require.NoError(t, err)
	assert.Equal(t, enums.POStageDraft, rejected.Order.Stage)
	require.NotNil(t, rejected.Order.RejectionReason)
	assert.Equal(t, enums.EventPORejectedBySupplyChain, rejected.Events[0].Type)
	assert.Equal(t, "wrong vendor", rejected.Events[0].Payload.Reason)
	assert.Equal(t, enums.MRFStagePendingSupplyChainSignature, f.reload(t, mr.ID).Stage)

	reissued, err := f.svc.Generate(ctx, procurementOfficer, IssueInput{MaterialRequestID: mr.ID, VendorIDs: []string{"vendor-3"}})
	require.NoError(t, err)
	assert.Equal(t, generated.Order.ID, reissued.Order.ID)
	assert.Equal(t, enums.POStageSentToVendors, reissued.Order.Stage)
	assert.Nil(t, reissued.Order.RejectionReason)
	assert.Equal(t, enums.MRFStagePendingSupplyChainSignature, f.reload(t, mr.ID).Stage)

	_, err = f.svc.ForwardToSupplyChain(ctx, procurementOfficer, generated.Order.ID)
	require.NoError(t, err)
	signed, err := f.svc.SupplyChainDecision(ctx, supplyChainLead, DecisionInput{ID: generated.Order.ID, Approve: true})
	require.NoError(t, err)
	assert.Equal(t, enums.POStageSentToFinance, signed.Order.Stage)
}

func TestGenerateRollsBackWhenRequestWriteLoses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mr := f.seedRequest(t, enums.MRFStageApprovedForPO)

	svc := f.build(t, failingRequests{Repository: f.requests})
	_, err := svc.Generate(ctx, procurementOfficer, issueInput(mr.ID))
	assertCode(t, err, pkgerrors.CodeStaleState)

	_, err = f.orders.FindByMaterialRequest(ctx, mr.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDecisionOutsideSignatureStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mr := f.seedRequest(t, enums.MRFStageApprovedForPO)

	generated, err := f.svc.Generate(ctx, procurementOfficer, issueInput(mr.ID))
	require.NoError(t, err)

	_, err = f.svc.SupplyChainDecision(ctx, supplyChainLead, DecisionInput{ID: generated.Order.ID, Approve: true})
	assertCode(t, err, pkgerrors.CodeStateConflict)

	_, err = f.svc.SupplyChainDecision(ctx, procurementOfficer, DecisionInput{ID: generated.Order.ID, Approve: true})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestListFiltersByStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mr := f.seedRequest(t, enums.MRFStageApprovedForPO)

	_, err := f.svc.Generate(ctx, procurementOfficer, issueInput(mr.ID))
	require.NoError(t, err)

	rows, err := f.svc.List(ctx, supplyChainLead, ListFilter{Stage: enums.POStageSentToVendors})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = f.svc.List(ctx, supplyChainLead, ListFilter{Stage: enums.POStageSigned})
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = f.svc.List(ctx, auth.Actor{}, ListFilter{})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}
