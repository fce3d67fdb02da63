package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  location_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  items_amount INTEGER NOT NULL,
  shipping_cost INTEGER NOT NULL DEFAULT 0,
  discount_amount INTEGER NOT NULL DEFAULT 0,
  total_amount INTEGER NOT NULL,
  voucher_id TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price INTEGER NOT NULL,
  line_total INTEGER NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  external_order_id TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'pending',
  amount INTEGER NOT NULL,
  snap_token TEXT NOT NULL,
  redirect_url TEXT NOT NULL,
  transaction_id TEXT,
  payment_type TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE shipments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  booking_id TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'awaiting_pickup',
  courier TEXT NOT NULL,
  price INTEGER NOT NULL DEFAULT 0,
  tracking_number TEXT,
  history TEXT,
  raw_response TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE locations (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  label TEXT NOT NULL,
  contact_name TEXT NOT NULL,
  phone TEXT NOT NULL,
  email TEXT,
  address TEXT NOT NULL,
  city TEXT NOT NULL,
  province TEXT NOT NULL,
  postal_code TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Order {
	t.Helper()

	location := &models.Location{
		ID:          uuid.New(),
		Label:       "Rumah",
		ContactName: "Dewi",
		Phone:       "+628123456789",
		Address:     "Jl. Melati 5",
		City:        "Bandung",
		Province:    "Jawa Barat",
		PostalCode:  "40111",
	}
	require.NoError(t, db.Create(location).Error)

	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: "LP-20260830-A1B2C3",
		UserID:      userID,
		LocationID:  location.ID,
		Status:      enums.OrderStatusPending,
		ItemsAmount: 170000,
		TotalAmount: 170000,
	}
	require.NoError(t, db.Create(order).Error)
	require.NoError(t, db.Create(&models.OrderItem{
		ID:          uuid.New(),
		OrderID:     order.ID,
		VariantID:   uuid.New(),
		ProductName: "Kopi Gayo 250g",
		Quantity:    2,
		UnitPrice:   85000,
		LineTotal:   170000,
	}).Error)
	require.NoError(t, db.Create(&models.Payment{
		ID:              uuid.New(),
		OrderID:         order.ID,
		ExternalOrderID: order.OrderNumber + "-f00d",
		Status:          enums.PaymentStatusPending,
		Amount:          170000,
		SnapToken:       "snap-token",
		RedirectURL:     "https://app.sandbox.midtrans.com/snap/v4/redirection/snap-token",
	}).Error)
	return order
}

func TestFindByOrderNumberForUser_PreloadsAssociations(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	order := seedOrder(t, db, userID)

	loaded, err := repo.FindByOrderNumberForUser(ctx, userID, order.OrderNumber)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	require.NotNil(t, loaded.Payment)
	require.NotNil(t, loaded.Location)
	assert.Nil(t, loaded.Shipment)
	assert.Equal(t, enums.PaymentStatusPending, loaded.Payment.Status)
	assert.Equal(t, "Bandung", loaded.Location.City)
}

func TestFindByOrderNumberForUser_OtherUserCannotSee(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New())

	_, err := repo.FindByOrderNumberForUser(ctx, uuid.New(), order.OrderNumber)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New())

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPaid))

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusPaid, stored.Status)
}
