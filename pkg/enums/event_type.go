package enums

import "fmt"

// EventType names a workflow event that notification rules route on.
type EventType string

const (
	EventMRFSubmitted             EventType = "mrf_submitted"
	EventMRFSentToChairman        EventType = "mrf_sent_to_chairman"
	EventMRFApprovedByExecutive   EventType = "mrf_approved_by_executive"
	EventMRFApprovedByChairman    EventType = "mrf_approved_by_chairman"
	EventMRFRejectedByExecutive   EventType = "mrf_rejected_by_executive"
	EventMRFRejectedByChairman    EventType = "mrf_rejected_by_chairman"
	EventMRFPaymentProcessing     EventType = "mrf_payment_processing"
	EventMRFPaymentCompleted      EventType = "mrf_payment_completed"
	EventMRFPendingReviewReminder EventType = "mrf_pending_review_reminder"
	EventPOGenerated              EventType = "po_generated"
	EventPOSentToSupplyChain      EventType = "po_sent_to_supply_chain"
	EventPOSigned                 EventType = "po_signed"
	EventPOSentToFinance          EventType = "po_sent_to_finance"
	EventPORejectedBySupplyChain  EventType = "po_rejected_by_supply_chain"
	EventGRNCreated               EventType = "grn_created"
	EventGRNInspected             EventType = "grn_inspected"
	EventGRNSentToFinance         EventType = "grn_sent_to_finance"
	EventPaymentProcessing        EventType = "payment_processing"
	EventPaymentCompleted         EventType = "payment_completed"
	EventGRNRejected              EventType = "grn_rejected"
)

var validEventTypes = []EventType{
	EventMRFSubmitted,
	EventMRFSentToChairman,
	EventMRFApprovedByExecutive,
	EventMRFApprovedByChairman,
	EventMRFRejectedByExecutive,
	EventMRFRejectedByChairman,
	EventMRFPaymentProcessing,
	EventMRFPaymentCompleted,
	EventMRFPendingReviewReminder,
	EventPOGenerated,
	EventPOSentToSupplyChain,
	EventPOSigned,
	EventPOSentToFinance,
	EventPORejectedBySupplyChain,
	EventGRNCreated,
	EventGRNInspected,
	EventGRNSentToFinance,
	EventPaymentProcessing,
	EventPaymentCompleted,
	EventGRNRejected,
}

// String implements fmt.Stringer.
func (v EventType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known EventType.
func (v EventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseEventType converts raw input into a EventType.
func ParseEventType(value string) (EventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// EventTypes returns every known event type in declaration order.
func EventTypes() []EventType {
	out := make([]EventType, len(validEventTypes))
	copy(out, validEventTypes)
	return out
}
