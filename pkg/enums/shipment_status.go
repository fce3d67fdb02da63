package enums

// ShipmentStatus tracks physical fulfillment as reported by the carrier.
type ShipmentStatus string

const (
	ShipmentStatusAwaitingPickup ShipmentStatus = "awaiting_pickup"
	ShipmentStatusPickedUp       ShipmentStatus = "picked_up"
	ShipmentStatusInTransit      ShipmentStatus = "in_transit"
	ShipmentStatusDelivered      ShipmentStatus = "delivered"
	ShipmentStatusReturned       ShipmentStatus = "returned"
	ShipmentStatusCancelled      ShipmentStatus = "cancelled"
)

// carrierStatusMap translates the carrier's callback vocabulary into the
// internal shipment status. Unknown tags deliberately have no entry.
var carrierStatusMap = map[string]ShipmentStatus{
	"confirmed":         ShipmentStatusAwaitingPickup,
	"allocated":         ShipmentStatusAwaitingPickup,
	"picking_up":        ShipmentStatusAwaitingPickup,
	"picked":            ShipmentStatusPickedUp,
	"dropping_off":      ShipmentStatusInTransit,
	"on_hold":           ShipmentStatusInTransit,
	"delivered":         ShipmentStatusDelivered,
	"rejected":          ShipmentStatusReturned,
	"courier_not_found": ShipmentStatusCancelled,
	"returned":          ShipmentStatusReturned,
	"cancelled":         ShipmentStatusCancelled,
	"disposed":          ShipmentStatusCancelled,
}

// ShipmentStatusFromCarrier maps a carrier status tag to the internal enum.
// The second return is false for unrecognized vocabulary; callers preserve the
// current status in that case.
func ShipmentStatusFromCarrier(carrierStatus string) (ShipmentStatus, bool) {
	status, ok := carrierStatusMap[carrierStatus]
	return status, ok
}
