package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
)

// ItemDTO is an immutable order line snapshot.
type ItemDTO struct {
	VariantID   uuid.UUID `json:"variant_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	LineTotal   int64     `json:"line_total"`
}

// PaymentDTO exposes the gateway session state for an order.
type PaymentDTO struct {
	Status      enums.PaymentStatus `json:"status"`
	SnapToken   string              `json:"snap_token,omitempty"`
	RedirectURL string              `json:"redirect_url,omitempty"`
	PaymentType *string             `json:"payment_type,omitempty"`
}

// ShipmentDTO exposes delivery progress for an order.
type ShipmentDTO struct {
	Status         enums.ShipmentStatus          `json:"status"`
	Courier        string                        `json:"courier"`
	BookingID      string                        `json:"booking_id"`
	TrackingNumber *string                       `json:"tracking_number,omitempty"`
	History        []models.ShipmentHistoryEntry `json:"history,omitempty"`
}

// DetailDTO is the order read model returned by the API.
type DetailDTO struct {
	ID             uuid.UUID         `json:"id"`
	OrderNumber    string            `json:"order_number"`
	Status         enums.OrderStatus `json:"status"`
	ItemsAmount    int64             `json:"items_amount"`
	ShippingCost   int64             `json:"shipping_cost"`
	DiscountAmount int64             `json:"discount_amount"`
	TotalAmount    int64             `json:"total_amount"`
	Notes          *string           `json:"notes,omitempty"`
	Items          []ItemDTO         `json:"items"`
	Payment        *PaymentDTO       `json:"payment,omitempty"`
	Shipment       *ShipmentDTO      `json:"shipment,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

func toDetailDTO(order *models.Order) *DetailDTO {
	dto := &DetailDTO{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         order.Status,
		ItemsAmount:    order.ItemsAmount,
		ShippingCost:   order.ShippingCost,
		DiscountAmount: order.DiscountAmount,
		TotalAmount:    order.TotalAmount,
		Notes:          order.Notes,
		Items:          make([]ItemDTO, 0, len(order.Items)),
		CreatedAt:      order.CreatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, ItemDTO{
			VariantID:   item.VariantID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	if order.Payment != nil {
		dto.Payment = &PaymentDTO{
			Status:      order.Payment.Status,
			SnapToken:   order.Payment.SnapToken,
			RedirectURL: order.Payment.RedirectURL,
			PaymentType: order.Payment.PaymentType,
		}
	}
	if order.Shipment != nil {
		dto.Shipment = &ShipmentDTO{
			Status:         order.Shipment.Status,
			Courier:        order.Shipment.Courier,
			BookingID:      order.Shipment.BookingID,
			TrackingNumber: order.Shipment.TrackingNumber,
			History:        order.Shipment.History,
		}
	}
	return dto
}
