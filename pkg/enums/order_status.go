package enums

// SalesOrderStatus mirrors the order header states the loader filters on.
type SalesOrderStatus string

const (
	SalesOrderOpen   SalesOrderStatus = "open"
	SalesOrderQuote  SalesOrderStatus = "quote"
	SalesOrderClosed SalesOrderStatus = "closed"
)

// WorkOrderStatus tracks the lifecycle of a work order.
type WorkOrderStatus string

const (
	WorkOrderOpen   WorkOrderStatus = "open"
	WorkOrderClosed WorkOrderStatus = "closed"
)

// PurchaseOrderStatus tracks the lifecycle of a purchase order line.
type PurchaseOrderStatus string

const (
	PurchaseOrderPending   PurchaseOrderStatus = "pending"
	PurchaseOrderApproved  PurchaseOrderStatus = "approved"
	PurchaseOrderCancelled PurchaseOrderStatus = "cancelled"
	PurchaseOrderRejected  PurchaseOrderStatus = "rejected"
	PurchaseOrderCompleted PurchaseOrderStatus = "completed"
)

// IsOpenForSupply reports whether a purchase-order line still counts as
// incoming supply.
func (p PurchaseOrderStatus) IsOpenForSupply() bool {
	switch p {
	case PurchaseOrderCancelled, PurchaseOrderRejected, PurchaseOrderCompleted:
		return false
	}
	return true
}
