package materialrequests

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/procureflow-backend/pkg/db"
	"github.com/angelmondragon/procureflow-backend/pkg/db/dbtest"
	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedRequest(t *testing.T, repo Repository, ref string, stage enums.MRFStage, requesterID uuid.UUID) *models.MaterialRequest {
	t.Helper()
	mr := &models.MaterialRequest{
		Reference:     ref,
		Title:         "Cement",
		Quantity:      10,
		EstimatedCost: decimal.RequireFromString("1500.50"),
		Urgency:       enums.UrgencyMedium,
		RequesterID:   requesterID,
		RequesterName: "Requester",
		Stage:         stage,
	}
	require.NoError(t, repo.Create(context.Background(), mr))
	return mr
}

func TestRepositoryWriteIfStage(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	mr := seedRequest(t, repo, "MRF-000001", enums.MRFStagePendingExecutiveReview, uuid.New())

	reason := "no budget"
	mr.Stage = enums.MRFStageRejectedByExecutive
	mr.RejectionReason = &reason
	mr.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.WriteIfStage(ctx, mr, enums.MRFStagePendingExecutiveReview))

	stored, err := repo.FindByID(ctx, mr.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.MRFStageRejectedByExecutive, stored.Stage)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, reason, *stored.RejectionReason)
	assert.True(t, stored.EstimatedCost.Equal(decimal.RequireFromString("1500.50")))

	mr.Stage = enums.MRFStageApprovedForPO
	err = repo.WriteIfStage(ctx, mr, enums.MRFStagePendingExecutiveReview)
	require.ErrorIs(t, err, db.ErrStaleWrite)

	missing := &models.MaterialRequest{ID: uuid.New(), Stage: enums.MRFStageApprovedForPO}
	require.ErrorIs(t, repo.WriteIfStage(ctx, missing, enums.MRFStageDraft), gorm.ErrRecordNotFound)
}

func TestRepositoryCreateRejectsDuplicateReference(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	seedRequest(t, repo, "MRF-000001", enums.MRFStageDraft, uuid.New())

	dup := &models.MaterialRequest{Reference: "MRF-000001", Title: "x", Urgency: enums.UrgencyLow, RequesterID: uuid.New(), RequesterName: "x", Stage: enums.MRFStageDraft}
	err := repo.Create(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryListFilters(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	owner := uuid.New()

	seedRequest(t, repo, "MRF-000001", enums.MRFStagePendingExecutiveReview, owner)
	seedRequest(t, repo, "MRF-000002", enums.MRFStageApprovedForPO, owner)
	seedRequest(t, repo, "MRF-000003", enums.MRFStagePendingExecutiveReview, uuid.New())

	rows, err := repo.List(ctx, ListFilter{RequesterID: owner})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.List(ctx, ListFilter{Stage: enums.MRFStagePendingExecutiveReview})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.List(ctx, ListFilter{Stage: enums.MRFStagePendingExecutiveReview, RequesterID: owner})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "MRF-000001", rows[0].Reference)
}

func TestRepositoryListWaitingSince(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	stale := seedRequest(t, repo, "MRF-000001", enums.MRFStagePendingExecutiveReview, uuid.New())
	seedRequest(t, repo, "MRF-000002", enums.MRFStagePendingChairmanReview, uuid.New())
	seedRequest(t, repo, "MRF-000003", enums.MRFStageApprovedForPO, uuid.New())

	old := time.Now().UTC().Add(-72 * time.Hour)
	require.NoError(t, conn.Model(&models.MaterialRequest{}).Where("id = ?", stale.ID).UpdateColumn("updated_at", old).Error)

	rows, err := repo.ListWaitingSince(ctx,
		[]enums.MRFStage{enums.MRFStagePendingExecutiveReview, enums.MRFStagePendingChairmanReview},
		time.Now().UTC().Add(-48*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, stale.ID, rows[0].ID)

	rows, err = repo.ListWaitingSince(ctx, nil, time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAdvanceStageRejectsIllegalMove(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	mr := seedRequest(t, repo, "MRF-000001", enums.MRFStageDraft, uuid.New())

	err := AdvanceStage(context.Background(), repo, mr, enums.MRFStageApprovedForPO, time.Now())
	require.Error(t, err)
	assert.Equal(t, enums.MRFStageDraft, mr.Stage)
	assert.False(t, CanTransition(enums.MRFStagePaymentCompleted, enums.MRFStageDraft))
	assert.True(t, CanTransition(enums.MRFStageRejectedByChairman, enums.MRFStagePendingExecutiveReview))
}
