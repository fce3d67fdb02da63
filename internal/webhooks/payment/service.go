package paymentwebhook

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lokapasar/backend/internal/orders"
	"github.com/lokapasar/backend/internal/payments"
	"github.com/lokapasar/backend/internal/shipments"
	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/logger"
	"github.com/lokapasar/backend/pkg/signature"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notification is the payment gateway's callback payload.
type Notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	PaymentType       string `json:"payment_type"`
}

// ServiceParams collects the handler's dependencies.
type ServiceParams struct {
	PaymentsRepo      payments.Repository
	OrdersRepo        orders.Repository
	Shipments         shipments.Service
	TransactionRunner txRunner
	ServerKey         string
	Logger            *logger.Logger
}

// Service applies gateway notifications to the payment state machine.
type Service struct {
	paymentsRepo payments.Repository
	ordersRepo   orders.Repository
	shipments    shipments.Service
	txRunner     txRunner
	serverKey    string
	logger       *logger.Logger
}

// NewService builds the payment webhook service.
func NewService(params ServiceParams) (*Service, error) {
	if params.PaymentsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments repo required")
	}
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Shipments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shipments service required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.ServerKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "server key required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		paymentsRepo: params.PaymentsRepo,
		ordersRepo:   params.OrdersRepo,
		shipments:    params.Shipments,
		txRunner:     params.TransactionRunner,
		serverKey:    params.ServerKey,
		logger:       params.Logger,
	}, nil
}

// HandleNotification verifies and applies one gateway notification. Bad
// signatures, unknown correlation ids and unknown statuses all resolve to a
// logged no-op so the gateway stops retrying; only transient failures return
// an error.
func (s *Service) HandleNotification(ctx context.Context, n *Notification) error {
	if n == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification required")
	}
	ctx = s.logger.WithField(ctx, "external_order_id", n.OrderID)

	if !signature.VerifyPayment(n.OrderID, n.StatusCode, n.GrossAmount, s.serverKey, n.SignatureKey) {
		s.logger.Warn(ctx, "payment notification signature mismatch, ignoring")
		return nil
	}

	next, ok := enums.PaymentStatusFromGateway(n.TransactionStatus)
	if !ok {
		s.logger.Warn(ctx, "unrecognized gateway transaction status, ignoring")
		return nil
	}

	payment, err := s.paymentsRepo.FindByExternalOrderID(ctx, n.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn(ctx, "payment notification for unknown order, ignoring")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment")
	}

	if payment.Status == next {
		return nil
	}

	if err := s.apply(ctx, payment, next, n); err != nil {
		return err
	}

	if next == enums.PaymentStatusPaid {
		// fulfillment must not fail the acknowledgement; the dispatcher is
		// idempotent and reconciliation can re-trigger it
		if _, err := s.shipments.Dispatch(ctx, payment.OrderID); err != nil {
			s.logger.Error(ctx, "shipment dispatch after payment failed", err)
		}
	}
	return nil
}

func (s *Service) apply(ctx context.Context, payment *models.Payment, next enums.PaymentStatus, n *Notification) error {
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		paymentsRepo := s.paymentsRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		var transactionID, paymentType *string
		if n.TransactionID != "" {
			transactionID = &n.TransactionID
		}
		if n.PaymentType != "" {
			paymentType = &n.PaymentType
		}
		if err := paymentsRepo.UpdateStatus(ctx, payment.ID, next, transactionID, paymentType); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating payment status")
		}

		if orderStatus, ok := enums.OrderStatusForPayment(next); ok {
			if err := ordersRepo.UpdateStatus(ctx, payment.OrderID, orderStatus); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
			}
		}
		return nil
	})
}
