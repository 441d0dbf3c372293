package materialrequests

import (
	"context"
	"time"

	"github.com/angelmondragon/procureflow-backend/internal/workflow"
	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
)

const entityName = "material_request"

var allowedTransitions = map[enums.MRFStage][]enums.MRFStage{
	enums.MRFStageDraft:                       {enums.MRFStagePendingExecutiveReview},
	enums.MRFStagePendingExecutiveReview:      {enums.MRFStagePendingChairmanReview, enums.MRFStageApprovedForPO, enums.MRFStageRejectedByExecutive},
	enums.MRFStagePendingChairmanReview:       {enums.MRFStageApprovedForPO, enums.MRFStageRejectedByChairman},
	enums.MRFStageApprovedForPO:               {enums.MRFStagePOGenerated},
	enums.MRFStagePOGenerated:                 {enums.MRFStagePendingSupplyChainSignature},
	enums.MRFStagePendingSupplyChainSignature: {enums.MRFStageSigned, enums.MRFStageRejectedBySupplyChain},
	enums.MRFStageSigned:                      {enums.MRFStagePendingFinancePayment},
	enums.MRFStagePendingFinancePayment:       {enums.MRFStagePaymentProcessing},
	enums.MRFStagePaymentProcessing:           {enums.MRFStagePaymentCompleted},
	enums.MRFStageRejectedByExecutive:         {enums.MRFStagePendingExecutiveReview},
	enums.MRFStageRejectedByChairman:          {enums.MRFStagePendingExecutiveReview},
	enums.MRFStageRejectedBySupplyChain:       {enums.MRFStagePendingExecutiveReview},
}

// CanTransition reports whether a material request may move from one stage to another.
func CanTransition(from, to enums.MRFStage) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// AdvanceStage moves mr to stage `to` with a guarded write on its current
// stage. On failure mr keeps its previous stage.
func AdvanceStage(ctx context.Context, repo Repository, mr *models.MaterialRequest, to enums.MRFStage, now time.Time) error {
	from := mr.Stage
	if !CanTransition(from, to) {
		return workflow.StateConflict(entityName, "move to "+to.String(), from)
	}
	mr.Stage = to
	mr.UpdatedAt = now
	if err := repo.WriteIfStage(ctx, mr, from); err != nil {
		mr.Stage = from
		return workflow.MapWriteError(err, "material request")
	}
	return nil
}
