package enums

import "fmt"

// GRNStatus tracks a goods received note from inspection to payment.
type GRNStatus string

const (
	GRNStatusPendingInspection GRNStatus = "pending_inspection"
	GRNStatusInspected         GRNStatus = "inspected"
	GRNStatusWithFinance       GRNStatus = "with_finance"
	GRNStatusPaymentProcessing GRNStatus = "payment_processing"
	GRNStatusCompleted         GRNStatus = "completed"
	GRNStatusRejected          GRNStatus = "rejected"
)

var validGRNStatuses = []GRNStatus{
	GRNStatusPendingInspection,
	GRNStatusInspected,
	GRNStatusWithFinance,
	GRNStatusPaymentProcessing,
	GRNStatusCompleted,
	GRNStatusRejected,
}

// String implements fmt.Stringer.
func (v GRNStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known GRNStatus.
func (v GRNStatus) IsValid() bool {
	for _, candidate := range validGRNStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseGRNStatus converts raw input into a GRNStatus.
func ParseGRNStatus(value string) (GRNStatus, error) {
	for _, candidate := range validGRNStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid grn status %q", value)
}
