package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lokapasar/backend/internal/cart"
	"github.com/lokapasar/backend/internal/checkout/inventory"
	"github.com/lokapasar/backend/internal/orders"
	"github.com/lokapasar/backend/internal/payments"
	"github.com/lokapasar/backend/internal/promos"
	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type inventoryRunner interface {
	Decrement(ctx context.Context, tx *gorm.DB, requests []inventory.DecrementRequest) error
}

type inventoryEngine struct{}

func (inventoryEngine) Decrement(ctx context.Context, tx *gorm.DB, requests []inventory.DecrementRequest) error {
	return inventory.Decrement(ctx, tx, requests)
}

// Input captures the buyer's checkout submission.
type Input struct {
	LocationID   uuid.UUID
	VoucherCode  string
	ShippingCost int64
	Notes        *string
}

// Result is the outcome of a checkout. Payment is nil when the gateway was
// unreachable after the order committed; the order survives and the session
// can be retried.
type Result struct {
	Order   *models.Order
	Payment *models.Payment
}

// Service assembles orders from carts.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, input Input) (*Result, error)
}

type service struct {
	tx          txRunner
	cartRepo    cart.Repository
	ordersRepo  orders.Repository
	promoSvc    promos.Service
	paymentSvc  payments.Service
	inventory   inventoryRunner
	now         func() time.Time
	orderSuffix func() string
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	cartRepo cart.Repository,
	ordersRepo orders.Repository,
	promoSvc promos.Service,
	paymentSvc payments.Service,
) (Service, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner required")
	}
	if cartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repository required")
	}
	if ordersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository required")
	}
	if promoSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "promos service required")
	}
	if paymentSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments service required")
	}
	return &service{
		tx:          tx,
		cartRepo:    cartRepo,
		ordersRepo:  ordersRepo,
		promoSvc:    promoSvc,
		paymentSvc:  paymentSvc,
		inventory:   inventoryEngine{},
		now:         time.Now,
		orderSuffix: func() string { return strings.ToUpper(strings.Split(uuid.NewString(), "-")[0][:6]) },
	}, nil
}

// Execute converts the user's cart into an order inside one transaction:
// price the items, enforce the single-seller rule, resolve the voucher, take
// stock, record voucher usage and clear the cart. After commit it opens the
// gateway session; a gateway failure is returned alongside the committed
// order rather than rolling it back.
func (s *service) Execute(ctx context.Context, userID uuid.UUID, input Input) (*Result, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.LocationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if input.ShippingCost < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping cost cannot be negative")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)
		promoSvc := s.promoSvc.WithTx(tx)

		record, err := cartRepo.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}
		if len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
		}

		items, itemsAmount, err := priceCartItems(record.Items)
		if err != nil {
			return err
		}
		if err := enforceSingleSeller(record.Items); err != nil {
			return err
		}

		var discountAmount int64
		var voucherID *uuid.UUID
		if input.VoucherCode != "" {
			voucherResult, err := promoSvc.ValidateVoucher(ctx, userID, input.VoucherCode, itemsAmount)
			if err != nil {
				return err
			}
			discountAmount = voucherResult.DiscountAmount
			voucherID = &voucherResult.Voucher.ID
		}

		total := itemsAmount + input.ShippingCost - discountAmount
		if total < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "order total cannot be negative")
		}

		order = &models.Order{
			ID:             uuid.New(),
			OrderNumber:    s.generateOrderNumber(),
			UserID:         userID,
			LocationID:     input.LocationID,
			Status:         enums.OrderStatusPending,
			ItemsAmount:    itemsAmount,
			ShippingCost:   input.ShippingCost,
			DiscountAmount: discountAmount,
			TotalAmount:    total,
			VoucherID:      voucherID,
			Notes:          input.Notes,
		}
		if err := ordersRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting order")
		}

		requests := make([]inventory.DecrementRequest, len(record.Items))
		for i := range items {
			items[i].ID = uuid.New()
			items[i].OrderID = order.ID
			requests[i] = inventory.DecrementRequest{
				VariantID: items[i].VariantID,
				Quantity:  items[i].Quantity,
			}
		}
		if err := ordersRepo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting order items")
		}
		if err := s.inventory.Decrement(ctx, tx, requests); err != nil {
			return err
		}

		if voucherID != nil {
			if err := promoSvc.RecordVoucherUsage(ctx, userID, *voucherID, order.ID); err != nil {
				return err
			}
		}

		if err := cartRepo.DeleteItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
		}

		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	payment, err := s.paymentSvc.CreateSession(ctx, order)
	if err != nil {
		// the order is committed; the buyer recovers through retry-payment
		return &Result{Order: order}, err
	}
	order.Payment = payment
	return &Result{Order: order, Payment: payment}, nil
}

func (s *service) generateOrderNumber() string {
	return "LP-" + s.now().UTC().Format("20060102") + "-" + s.orderSuffix()
}

func priceCartItems(cartItems []models.CartItem) ([]models.OrderItem, int64, error) {
	items := make([]models.OrderItem, 0, len(cartItems))
	var itemsAmount int64
	for _, item := range cartItems {
		if item.Variant == nil {
			return nil, 0, pkgerrors.New(pkgerrors.CodeInternal, "cart item missing variant")
		}
		if item.Quantity <= 0 {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "cart item quantity must be positive")
		}
		lineTotal := item.Variant.Price * int64(item.Quantity)
		items = append(items, models.OrderItem{
			VariantID:   item.VariantID,
			ProductName: orderItemName(item.Variant),
			Quantity:    item.Quantity,
			UnitPrice:   item.Variant.Price,
			LineTotal:   lineTotal,
		})
		itemsAmount += lineTotal
	}
	return items, itemsAmount, nil
}

// enforceSingleSeller rejects carts spanning stores; a shipment books pickup
// from exactly one origin.
func enforceSingleSeller(cartItems []models.CartItem) error {
	var storeID uuid.UUID
	for _, item := range cartItems {
		if item.Variant == nil || item.Variant.Product == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "cart item missing product")
		}
		if storeID == uuid.Nil {
			storeID = item.Variant.Product.StoreID
			continue
		}
		if item.Variant.Product.StoreID != storeID {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart items must belong to a single seller")
		}
	}
	return nil
}

func orderItemName(variant *models.Variant) string {
	name := variant.Name
	if variant.Product != nil && variant.Product.Name != "" {
		name = variant.Product.Name + " - " + variant.Name
	}
	return name
}
