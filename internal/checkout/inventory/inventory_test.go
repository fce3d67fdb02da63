package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lokapasar/backend/pkg/db/models"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  price INTEGER NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	return db
}

func seedVariant(t *testing.T, db *gorm.DB, stock int) *models.Variant {
	t.Helper()
	variant := &models.Variant{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		SKU:       "SKU-1",
		Name:      "Whole bean",
		Price:     85000,
		Stock:     stock,
	}
	require.NoError(t, db.Create(variant).Error)
	return variant
}

func TestDecrement_TakesStock(t *testing.T) {
	t.Parallel()

	db := setupInventoryTestDB(t)
	variant := seedVariant(t, db, 10)

	err := Decrement(context.Background(), db, []DecrementRequest{
		{VariantID: variant.ID, Quantity: 4},
	})
	require.NoError(t, err)

	var stored models.Variant
	require.NoError(t, db.First(&stored, "id = ?", variant.ID).Error)
	assert.Equal(t, 6, stored.Stock)
}

func TestDecrement_RefusesOversell(t *testing.T) {
	t.Parallel()

	db := setupInventoryTestDB(t)
	variant := seedVariant(t, db, 3)

	err := Decrement(context.Background(), db, []DecrementRequest{
		{VariantID: variant.ID, Quantity: 4},
	})
	var coded *pkgerrors.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())

	var stored models.Variant
	require.NoError(t, db.First(&stored, "id = ?", variant.ID).Error)
	assert.Equal(t, 3, stored.Stock, "failed decrement must not touch stock")
}

func TestDecrement_ExactStockDrainsToZero(t *testing.T) {
	t.Parallel()

	db := setupInventoryTestDB(t)
	variant := seedVariant(t, db, 2)

	err := Decrement(context.Background(), db, []DecrementRequest{
		{VariantID: variant.ID, Quantity: 2},
	})
	require.NoError(t, err)

	var stored models.Variant
	require.NoError(t, db.First(&stored, "id = ?", variant.ID).Error)
	assert.Zero(t, stored.Stock)
}

func TestDecrement_ConcurrentTakersNeverOversell(t *testing.T) {
	t.Parallel()

	db := setupInventoryTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	variant := seedVariant(t, db, 5)

	const takers = 8
	errs := make(chan error, takers)
	var wg sync.WaitGroup
	for i := 0; i < takers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- Decrement(context.Background(), db, []DecrementRequest{
				{VariantID: variant.ID, Quantity: 1},
			})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, failed := 0, 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var coded *pkgerrors.Error
		require.ErrorAs(t, err, &coded)
		assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
		failed++
	}
	assert.Equal(t, 5, succeeded, "every unit of stock is sold exactly once")
	assert.Equal(t, 3, failed)

	var stored models.Variant
	require.NoError(t, db.First(&stored, "id = ?", variant.ID).Error)
	assert.Zero(t, stored.Stock)
}

func TestDecrement_RejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	db := setupInventoryTestDB(t)
	variant := seedVariant(t, db, 2)

	err := Decrement(context.Background(), db, []DecrementRequest{
		{VariantID: variant.ID, Quantity: 0},
	})
	var coded *pkgerrors.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}
