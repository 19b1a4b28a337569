package enums

import "fmt"

// VariantSize describes the cup size options for sized product categories.
type VariantSize string

const (
	VariantSizeSmall  VariantSize = "small"
	VariantSizeMedium VariantSize = "medium"
	VariantSizeLarge  VariantSize = "large"
)

var validVariantSizes = []VariantSize{
	VariantSizeSmall,
	VariantSizeMedium,
	VariantSizeLarge,
}

// IsValid reports whether the value matches the canonical variant size enum.
func (v VariantSize) IsValid() bool {
	for _, candidate := range validVariantSizes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVariantSize converts the raw string to VariantSize.
func ParseVariantSize(value string) (VariantSize, error) {
	for _, candidate := range validVariantSizes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid variant size %q", value)
}
