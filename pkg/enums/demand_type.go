package enums

import "fmt"

// DemandType classifies the driver behind a planning requirement.
type DemandType string

const (
	DemandSalesOrder   DemandType = "SO"
	DemandWorkOrder    DemandType = "WO"
	DemandMRP          DemandType = "MRPD"
	DemandReorderLevel DemandType = "REORD"
)

var validDemandTypes = []DemandType{
	DemandSalesOrder,
	DemandWorkOrder,
	DemandMRP,
	DemandReorderLevel,
}

// IsValid reports whether the value matches a known demand type.
func (d DemandType) IsValid() bool {
	for _, candidate := range validDemandTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDemandType converts raw input into DemandType.
func ParseDemandType(value string) (DemandType, error) {
	for _, candidate := range validDemandTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid demand type %q", value)
}
