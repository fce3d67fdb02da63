package enums

// PaymentStatus mirrors the internal view of a gateway transaction.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusExpired PaymentStatus = "expired"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// gatewayStatusMap translates Midtrans transaction_status vocabulary into the
// internal payment status. Unknown tags deliberately have no entry.
var gatewayStatusMap = map[string]PaymentStatus{
	"settlement": PaymentStatusPaid,
	"capture":    PaymentStatusPaid,
	"pending":    PaymentStatusPending,
	"expire":     PaymentStatusExpired,
	"cancel":     PaymentStatusFailed,
	"deny":       PaymentStatusFailed,
}

// PaymentStatusFromGateway maps a gateway transaction status to the internal
// enum. The second return is false for vocabulary we do not recognize; the
// caller treats that as a no-op rather than an error.
func PaymentStatusFromGateway(transactionStatus string) (PaymentStatus, bool) {
	status, ok := gatewayStatusMap[transactionStatus]
	return status, ok
}

// OrderStatusForPayment returns the order status implied by a payment status
// transition. Pending payments leave the order untouched.
func OrderStatusForPayment(status PaymentStatus) (OrderStatus, bool) {
	switch status {
	case PaymentStatusPaid:
		return OrderStatusPaid, true
	case PaymentStatusExpired, PaymentStatusFailed:
		return OrderStatusCancelled, true
	default:
		return "", false
	}
}
