package enums

import "fmt"

// MRFStage tracks a material request through approval, purchasing and payment.
type MRFStage string

const (
	MRFStageDraft                       MRFStage = "draft"
	MRFStagePendingExecutiveReview      MRFStage = "pending_executive_review"
	MRFStagePendingChairmanReview       MRFStage = "pending_chairman_review"
	MRFStageApprovedForPO               MRFStage = "approved_for_po"
	MRFStagePOGenerated                 MRFStage = "po_generated"
	MRFStagePendingSupplyChainSignature MRFStage = "pending_supply_chain_signature"
	MRFStageSigned                      MRFStage = "signed"
	MRFStagePendingFinancePayment       MRFStage = "pending_finance_payment"
	MRFStagePaymentProcessing           MRFStage = "payment_processing"
	MRFStagePaymentCompleted            MRFStage = "payment_completed"
	MRFStageRejectedByExecutive         MRFStage = "rejected_by_executive"
	MRFStageRejectedByChairman          MRFStage = "rejected_by_chairman"
	MRFStageRejectedBySupplyChain       MRFStage = "rejected_by_supply_chain"
)

var validMRFStages = []MRFStage{
	MRFStageDraft,
	MRFStagePendingExecutiveReview,
	MRFStagePendingChairmanReview,
	MRFStageApprovedForPO,
	MRFStagePOGenerated,
	MRFStagePendingSupplyChainSignature,
	MRFStageSigned,
	MRFStagePendingFinancePayment,
	MRFStagePaymentProcessing,
	MRFStagePaymentCompleted,
	MRFStageRejectedByExecutive,
	MRFStageRejectedByChairman,
	MRFStageRejectedBySupplyChain,
}

// String implements fmt.Stringer.
func (v MRFStage) String() string {
	return string(v)
}

// IsValid reports whether the value is a known MRFStage.
func (v MRFStage) IsValid() bool {
	for _, candidate := range validMRFStages {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseMRFStage converts raw input into a MRFStage.
func ParseMRFStage(value string) (MRFStage, error) {
	for _, candidate := range validMRFStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid mrf stage %q", value)
}

// IsRejected reports whether the stage is one of the rejection stages a
// requester can resubmit from.
func (v MRFStage) IsRejected() bool {
	switch v {
	case MRFStageRejectedByExecutive, MRFStageRejectedByChairman, MRFStageRejectedBySupplyChain:
		return true
	}
	return false
}
