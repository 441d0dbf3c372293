package enums

import "fmt"

// GRNPaymentStatus mirrors the finance side of a goods received note.
type GRNPaymentStatus string

const (
	GRNPaymentStatusNone     GRNPaymentStatus = "none"
	GRNPaymentStatusApproved GRNPaymentStatus = "approved"
	GRNPaymentStatusPaid     GRNPaymentStatus = "paid"
)

var validGRNPaymentStatuses = []GRNPaymentStatus{
	GRNPaymentStatusNone,
	GRNPaymentStatusApproved,
	GRNPaymentStatusPaid,
}

// IsValid reports whether the value is a known GRNPaymentStatus.
func (v GRNPaymentStatus) IsValid() bool {
	for _, candidate := range validGRNPaymentStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseGRNPaymentStatus converts raw input into a GRNPaymentStatus.
func ParseGRNPaymentStatus(value string) (GRNPaymentStatus, error) {
	for _, candidate := range validGRNPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid grn payment status %q", value)
}
