package enums

import "fmt"

// POStage is the purchase order sub-flow stage.
type POStage string

const (
	POStageDraft                       POStage = "draft"
	POStageSentToVendors               POStage = "sent_to_vendors"
	POStagePendingSupplyChainSignature POStage = "pending_supply_chain_signature"
	POStageSigned                      POStage = "signed"
	POStageSentToFinance               POStage = "sent_to_finance"
)

var validPOStages = []POStage{
	POStageDraft,
	POStageSentToVendors,
	POStagePendingSupplyChainSignature,
	POStageSigned,
	POStageSentToFinance,
}

// String implements fmt.Stringer.
func (v POStage) String() string {
	return string(v)
}

// IsValid reports whether the value is a known POStage.
func (v POStage) IsValid() bool {
	for _, candidate := range validPOStages {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParsePOStage converts raw input into a POStage.
func ParsePOStage(value string) (POStage, error) {
	for _, candidate := range validPOStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid po stage %q", value)
}
