package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lokapasar/backend/internal/cart"
	"github.com/lokapasar/backend/internal/checkout/inventory"
	"github.com/lokapasar/backend/internal/orders"
	"github.com/lokapasar/backend/internal/promos"
	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCartRepo struct {
	cart         *models.Cart
	err          error
	deletedCarts []uuid.UUID
}

func (s *stubCartRepo) WithTx(*gorm.DB) cart.Repository { return s }

func (s *stubCartRepo) FindByUserID(context.Context, uuid.UUID) (*models.Cart, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cart, nil
}

func (s *stubCartRepo) DeleteItems(_ context.Context, cartID uuid.UUID) error {
	s.deletedCarts = append(s.deletedCarts, cartID)
	return nil
}

type stubOrdersRepo struct {
	created      *models.Order
	createdItems []models.OrderItem
}

func (s *stubOrdersRepo) WithTx(*gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) Create(_ context.Context, order *models.Order) error {
	s.created = order
	return nil
}

func (s *stubOrdersRepo) CreateItems(_ context.Context, items []models.OrderItem) error {
	s.createdItems = items
	return nil
}

func (s *stubOrdersRepo) FindByOrderNumber(context.Context, string) (*models.Order, error) {
	return s.created, nil
}

func (s *stubOrdersRepo) FindByOrderNumberForUser(context.Context, uuid.UUID, string) (*models.Order, error) {
	return s.created, nil
}

func (s *stubOrdersRepo) FindByID(context.Context, uuid.UUID) (*models.Order, error) {
	return s.created, nil
}

func (s *stubOrdersRepo) UpdateStatus(context.Context, uuid.UUID, enums.OrderStatus) error {
	return nil
}

type stubPromoService struct {
	voucher    *promos.VoucherResult
	voucherErr error
	usages     []uuid.UUID
}

func (s *stubPromoService) WithTx(*gorm.DB) promos.Service { return s }

func (s *stubPromoService) ValidateVoucher(context.Context, uuid.UUID, string, int64) (*promos.VoucherResult, error) {
	if s.voucherErr != nil {
		return nil, s.voucherErr
	}
	return s.voucher, nil
}

func (s *stubPromoService) RecordVoucherUsage(_ context.Context, _ uuid.UUID, voucherID uuid.UUID, _ uuid.UUID) error {
	s.usages = append(s.usages, voucherID)
	return nil
}

func (s *stubPromoService) ResolveDiscount(context.Context, promos.DiscountQuery) (*promos.DiscountResult, error) {
	return nil, nil
}

func (s *stubPromoService) ConsumeDiscount(context.Context, uuid.UUID) error { return nil }

type stubPaymentService struct {
	payment *models.Payment
	err     error
	orders  []*models.Order
}

func (s *stubPaymentService) CreateSession(_ context.Context, order *models.Order) (*models.Payment, error) {
	s.orders = append(s.orders, order)
	if s.err != nil {
		return nil, s.err
	}
	return s.payment, nil
}

func (s *stubPaymentService) RetrySession(context.Context, uuid.UUID, string) (*models.Payment, error) {
	return s.payment, s.err
}

type stubInventory struct {
	requests []inventory.DecrementRequest
	err      error
}

func (s *stubInventory) Decrement(_ context.Context, _ *gorm.DB, requests []inventory.DecrementRequest) error {
	s.requests = append(s.requests, requests...)
	return s.err
}

type checkoutFixture struct {
	svc      *service
	cartRepo *stubCartRepo
	orders   *stubOrdersRepo
	promo    *stubPromoService
	payment  *stubPaymentService
	stock    *stubInventory
}

func newCheckoutFixture(t *testing.T, record *models.Cart) *checkoutFixture {
	t.Helper()

	f := &checkoutFixture{
		cartRepo: &stubCartRepo{cart: record},
		orders:   &stubOrdersRepo{},
		promo:    &stubPromoService{},
		payment: &stubPaymentService{
			payment: &models.Payment{ID: uuid.New(), SnapToken: "snap-token"},
		},
		stock: &stubInventory{},
	}
	f.svc = &service{
		tx:          stubTxRunner{},
		cartRepo:    f.cartRepo,
		ordersRepo:  f.orders,
		promoSvc:    f.promo,
		paymentSvc:  f.payment,
		inventory:   f.stock,
		now:         func() time.Time { return time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC) },
		orderSuffix: func() string { return "A1B2C3" },
	}
	return f
}

func singleSellerCart(userID uuid.UUID) *models.Cart {
	storeID := uuid.New()
	productID := uuid.New()
	variantID := uuid.New()
	return &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items: []models.CartItem{
			{
				ID:        uuid.New(),
				VariantID: variantID,
				Quantity:  2,
				Variant: &models.Variant{
					ID:        variantID,
					ProductID: productID,
					Name:      "Whole bean",
					Price:     85000,
					Stock:     10,
					Product: &models.Product{
						ID:      productID,
						StoreID: storeID,
						Name:    "Kopi Gayo 250g",
					},
				},
			},
		},
	}
}

func TestExecute_AssemblesOrder(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	record := singleSellerCart(userID)
	f := newCheckoutFixture(t, record)

	result, err := f.svc.Execute(context.Background(), userID, Input{
		LocationID:   uuid.New(),
		ShippingCost: 20000,
	})
	require.NoError(t, err)

	order := result.Order
	require.NotNil(t, order)
	assert.Equal(t, "LP-20260830-A1B2C3", order.OrderNumber)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, int64(170000), order.ItemsAmount)
	assert.Equal(t, int64(190000), order.TotalAmount)

	require.Len(t, f.orders.createdItems, 1)
	assert.Equal(t, "Kopi Gayo 250g - Whole bean", f.orders.createdItems[0].ProductName)
	assert.Equal(t, order.ID, f.orders.createdItems[0].OrderID)

	require.Len(t, f.stock.requests, 1)
	assert.Equal(t, record.Items[0].VariantID, f.stock.requests[0].VariantID)
	assert.Equal(t, 2, f.stock.requests[0].Quantity)

	assert.Equal(t, []uuid.UUID{record.ID}, f.cartRepo.deletedCarts)
	require.NotNil(t, result.Payment)
	assert.Equal(t, "snap-token", result.Payment.SnapToken)
}

func TestExecute_AppliesVoucher(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	record := singleSellerCart(userID)
	f := newCheckoutFixture(t, record)

	voucherID := uuid.New()
	f.promo.voucher = &promos.VoucherResult{
		Voucher:        &models.Voucher{ID: voucherID, Code: "HEMAT20"},
		DiscountAmount: 34000,
	}

	result, err := f.svc.Execute(context.Background(), userID, Input{
		LocationID:   uuid.New(),
		VoucherCode:  "HEMAT20",
		ShippingCost: 20000,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(34000), result.Order.DiscountAmount)
	assert.Equal(t, int64(156000), result.Order.TotalAmount)
	require.NotNil(t, result.Order.VoucherID)
	assert.Equal(t, voucherID, *result.Order.VoucherID)
	assert.Equal(t, []uuid.UUID{voucherID}, f.promo.usages)
}

func TestExecute_VoucherFailureAbortsOrder(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newCheckoutFixture(t, singleSellerCart(userID))
	f.promo.voucherErr = pkgerrors.New(pkgerrors.CodeConflict, "voucher already used")

	_, err := f.svc.Execute(context.Background(), userID, Input{
		LocationID:  uuid.New(),
		VoucherCode: "ONCE",
	})
	var coded *pkgerrors.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())
	assert.Empty(t, f.cartRepo.deletedCarts)
	assert.Empty(t, f.payment.orders, "no session for an aborted order")
}

func TestExecute_InsufficientStockAborts(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newCheckoutFixture(t, singleSellerCart(userID))
	f.stock.err = pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock")

	_, err := f.svc.Execute(context.Background(), userID, Input{LocationID: uuid.New()})
	var coded *pkgerrors.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
	assert.Empty(t, f.payment.orders)
}

func TestExecute_MultiSellerCartRejected(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	record := singleSellerCart(userID)
	otherVariantID := uuid.New()
	otherProductID := uuid.New()
	record.Items = append(record.Items, models.CartItem{
		ID:        uuid.New(),
		VariantID: otherVariantID,
		Quantity:  1,
		Variant: &models.Variant{
			ID:        otherVariantID,
			ProductID: otherProductID,
			Name:      "Teh Hijau",
			Price:     30000,
			Stock:     5,
			Product: &models.Product{
				ID:      otherProductID,
				StoreID: uuid.New(),
				Name:    "Teh Hijau 100g",
			},
		},
	})
	f := newCheckoutFixture(t, record)

	_, err := f.svc.Execute(context.Background(), userID, Input{LocationID: uuid.New()})
	var coded *pkgerrors.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestExecute_EmptyCartRejected(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newCheckoutFixture(t, &models.Cart{ID: uuid.New(), UserID: userID})

	_, err := f.svc.Execute(context.Background(), userID, Input{LocationID: uuid.New()})
	var coded *pkgerrors.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestExecute_GatewayFailureKeepsOrder(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newCheckoutFixture(t, singleSellerCart(userID))
	f.payment.err = pkgerrors.New(pkgerrors.CodeDependency, "gateway unavailable")

	result, err := f.svc.Execute(context.Background(), userID, Input{LocationID: uuid.New()})
	var coded *pkgerrors.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, pkgerrors.CodeDependency, coded.Code())

	// order committed without a session; retry-payment recovers it
	require.NotNil(t, result)
	require.NotNil(t, result.Order)
	assert.Nil(t, result.Payment)
	assert.NotNil(t, f.orders.created)
}
