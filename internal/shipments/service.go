package shipments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lokapasar/backend/internal/orders"
	"github.com/lokapasar/backend/pkg/carrier"
	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
)

type bookingClient interface {
	BookShipment(ctx context.Context, req carrier.BookingRequest) (*carrier.Booking, error)
}

// Service books carrier pickups for paid orders.
type Service interface {
	Dispatch(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error)
}

type service struct {
	repo       Repository
	ordersRepo orders.Repository
	carrier    bookingClient
}

// NewService builds the shipments service.
func NewService(repo Repository, ordersRepo orders.Repository, client bookingClient) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shipments repository required")
	}
	if ordersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository required")
	}
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "carrier client required")
	}
	return &service{repo: repo, ordersRepo: ordersRepo, carrier: client}, nil
}

// Dispatch books a carrier pickup for the order and persists the shipment.
// The pickup origin is the selling store's configured location, resolved
// through the order's first item; the single-seller rule at checkout makes
// that representative of the whole order. Re-dispatching an already-booked
// order returns the existing shipment.
func (s *service) Dispatch(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	if existing, err := s.repo.FindByOrderID(ctx, orderID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading shipment")
	}

	order, err := s.ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if len(order.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order has no items")
	}
	if order.Location == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer location not found")
	}

	variantIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		variantIDs[i] = item.VariantID
	}
	variants, err := s.repo.FindVariantsWithSeller(ctx, variantIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variants")
	}
	variantByID := make(map[uuid.UUID]*models.Variant, len(variants))
	for i := range variants {
		variantByID[variants[i].ID] = &variants[i]
	}

	origin, store, err := resolveOrigin(variantByID[order.Items[0].VariantID])
	if err != nil {
		return nil, err
	}

	booking, err := s.carrier.BookShipment(ctx, buildBookingRequest(order, origin, store, variantByID))
	if err != nil {
		return nil, err
	}

	shipment := &models.Shipment{
		ID:          uuid.New(),
		OrderID:     order.ID,
		BookingID:   booking.BookingID,
		Status:      enums.ShipmentStatusAwaitingPickup,
		Courier:     booking.Courier,
		Price:       booking.Price,
		RawResponse: booking.Raw,
	}
	if booking.TrackingNumber != "" {
		shipment.TrackingNumber = &booking.TrackingNumber
	}
	if err := s.repo.Create(ctx, shipment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting shipment")
	}
	return shipment, nil
}

func resolveOrigin(variant *models.Variant) (*models.Location, *models.Store, error) {
	if variant == nil || variant.Product == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item variant not found")
	}
	store := variant.Product.Store
	if store == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller store not found")
	}
	if store.OriginLocation == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller origin location not configured")
	}
	return store.OriginLocation, store, nil
}

func buildBookingRequest(order *models.Order, origin *models.Location, store *models.Store, variantByID map[uuid.UUID]*models.Variant) carrier.BookingRequest {
	req := carrier.BookingRequest{
		ReferenceID: order.OrderNumber,
		Origin: carrier.BookingContact{
			Name:       store.Name,
			Phone:      store.Phone,
			Email:      origin.Email,
			Address:    origin.Address,
			City:       origin.City,
			PostalCode: origin.PostalCode,
		},
		Destination: carrier.BookingContact{
			Name:       order.Location.ContactName,
			Phone:      order.Location.Phone,
			Email:      order.Location.Email,
			Address:    order.Location.Address,
			City:       order.Location.City,
			PostalCode: order.Location.PostalCode,
		},
	}
	for _, item := range order.Items {
		weight := 0
		if variant := variantByID[item.VariantID]; variant != nil && variant.Product != nil {
			weight = variant.Product.WeightGrams
		}
		req.Items = append(req.Items, carrier.BookingItem{
			Name:     item.ProductName,
			Value:    item.UnitPrice,
			Weight:   weight,
			Quantity: item.Quantity,
		})
	}
	return req
}
