package payments

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lokapasar/backend/internal/orders"
	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/midtrans"
)

type gateway interface {
	CreateSession(ctx context.Context, params midtrans.SessionParams) (*midtrans.Session, error)
}

// Service creates gateway payment sessions for committed orders.
type Service interface {
	CreateSession(ctx context.Context, order *models.Order) (*models.Payment, error)
	RetrySession(ctx context.Context, userID uuid.UUID, orderNumber string) (*models.Payment, error)
}

type service struct {
	repo       Repository
	ordersRepo orders.Repository
	gateway    gateway
	suffix     func() string
}

// NewService builds the payments service.
func NewService(repo Repository, ordersRepo orders.Repository, gw gateway) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments repository required")
	}
	if ordersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository required")
	}
	if gw == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment gateway required")
	}
	return &service{
		repo:       repo,
		ordersRepo: ordersRepo,
		gateway:    gw,
		suffix:     func() string { return strings.Split(uuid.NewString(), "-")[0] },
	}, nil
}

// CreateSession opens a gateway session for the order and persists the
// PENDING payment row. The external order id carries a fresh suffix so a
// retried session never collides with an id the gateway has already seen.
func (s *service) CreateSession(ctx context.Context, order *models.Order) (*models.Payment, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	externalOrderID := order.OrderNumber + "-" + s.suffix()
	session, err := s.gateway.CreateSession(ctx, buildSessionParams(order, externalOrderID))
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:              uuid.New(),
		OrderID:         order.ID,
		ExternalOrderID: externalOrderID,
		Status:          enums.PaymentStatusPending,
		Amount:          order.TotalAmount,
		SnapToken:       session.Token,
		RedirectURL:     session.RedirectURL,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting payment")
	}
	return payment, nil
}

// RetrySession re-opens a session for a pending order that has no payment row,
// the recovery path for a gateway failure during checkout.
func (s *service) RetrySession(ctx context.Context, userID uuid.UUID, orderNumber string) (*models.Payment, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}

	order, err := s.ordersRepo.FindByOrderNumberForUser(ctx, userID, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment")
	}
	if order.Payment != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already has a payment session")
	}
	return s.CreateSession(ctx, order)
}

func buildSessionParams(order *models.Order, externalOrderID string) midtrans.SessionParams {
	params := midtrans.SessionParams{
		ExternalOrderID: externalOrderID,
		GrossAmount:     order.TotalAmount,
	}
	if order.Location != nil {
		params.CustomerName = order.Location.ContactName
		params.CustomerEmail = order.Location.Email
		params.CustomerPhone = order.Location.Phone
	}
	for _, item := range order.Items {
		params.Items = append(params.Items, midtrans.SessionItem{
			ID:       item.VariantID.String(),
			Name:     item.ProductName,
			Price:    item.UnitPrice,
			Quantity: int32(item.Quantity),
		})
	}
	// the gateway checks that item lines sum to the gross amount
	if order.ShippingCost > 0 {
		params.Items = append(params.Items, midtrans.SessionItem{
			ID:       "shipping",
			Name:     "Shipping",
			Price:    order.ShippingCost,
			Quantity: 1,
		})
	}
	if order.DiscountAmount > 0 {
		params.Items = append(params.Items, midtrans.SessionItem{
			ID:       "discount",
			Name:     "Discount",
			Price:    -order.DiscountAmount,
			Quantity: 1,
		})
	}
	return params
}
