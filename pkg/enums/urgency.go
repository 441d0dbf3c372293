package enums

import "fmt"

// Urgency is the requester-declared urgency of a material request.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

var validUrgencys = []Urgency{
	UrgencyLow,
	UrgencyMedium,
	UrgencyHigh,
}

// String implements fmt.Stringer.
func (v Urgency) String() string {
	return string(v)
}

// IsValid reports whether the value is a known Urgency.
func (v Urgency) IsValid() bool {
	for _, candidate := range validUrgencys {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseUrgency converts raw input into a Urgency.
func ParseUrgency(value string) (Urgency, error) {
	for _, candidate := range validUrgencys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid urgency %q", value)
}
