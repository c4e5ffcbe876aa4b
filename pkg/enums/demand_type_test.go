package enums

import "testing"

func TestParseDemandType(t *testing.T) {
	for _, value := range []string{"SO", "WO", "MRPD", "REORD"} {
		parsed, err := ParseDemandType(value)
		if err != nil {
			t.Fatalf("ParseDemandType(%q) error: %v", value, err)
		}
		if !parsed.IsValid() {
			t.Fatalf("%q should be valid", value)
		}
	}
	if _, err := ParseDemandType("FORECAST"); err == nil {
		t.Fatal("unknown demand type should be rejected")
	}
}

func TestParseSupplyType(t *testing.T) {
	for _, value := range []string{"PO", "WO", "QOH"} {
		parsed, err := ParseSupplyType(value)
		if err != nil {
			t.Fatalf("ParseSupplyType(%q) error: %v", value, err)
		}
		if !parsed.IsValid() {
			t.Fatalf("%q should be valid", value)
		}
	}
	if _, err := ParseSupplyType("PLANNED"); err == nil {
		t.Fatal("planned orders never enter the supply set")
	}
}

func TestPurchaseOrderStatus_IsOpenForSupply(t *testing.T) {
	open := []PurchaseOrderStatus{PurchaseOrderPending, PurchaseOrderApproved}
	for _, status := range open {
		if !status.IsOpenForSupply() {
			t.Fatalf("%s should count as incoming supply", status)
		}
	}
	closed := []PurchaseOrderStatus{PurchaseOrderCancelled, PurchaseOrderRejected, PurchaseOrderCompleted}
	for _, status := range closed {
		if status.IsOpenForSupply() {
			t.Fatalf("%s should not count as incoming supply", status)
		}
	}
}
