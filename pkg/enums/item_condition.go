package enums

import "fmt"

// ItemCondition describes the state of a received line item.
type ItemCondition string

const (
	ItemConditionGood    ItemCondition = "good"
	ItemConditionPartial ItemCondition = "partial"
	ItemConditionDamaged ItemCondition = "damaged"
)

var validItemConditions = []ItemCondition{
	ItemConditionGood,
	ItemConditionPartial,
	ItemConditionDamaged,
}

// IsValid reports whether the value is a known ItemCondition.
func (v ItemCondition) IsValid() bool {
	for _, candidate := range validItemConditions {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseItemCondition converts raw input into a ItemCondition.
func ParseItemCondition(value string) (ItemCondition, error) {
	for _, candidate := range validItemConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item condition %q", value)
}
