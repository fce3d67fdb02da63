package shipments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lokapasar/backend/pkg/db/models"
)

// Repository exposes shipment storage operations, plus the catalog lookups
// the dispatcher needs to resolve pickup origins and parcel weights.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shipment *models.Shipment) error
	FindByBookingID(ctx context.Context, bookingID string) (*models.Shipment, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error)
	Update(ctx context.Context, shipment *models.Shipment) error
	FindVariantsWithSeller(ctx context.Context, variantIDs []uuid.UUID) ([]models.Variant, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a shipments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Create(shipment).Error
}

func (r *repository) FindByBookingID(ctx context.Context, bookingID string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) Update(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Save(shipment).Error
}

func (r *repository) FindVariantsWithSeller(ctx context.Context, variantIDs []uuid.UUID) ([]models.Variant, error) {
	var variants []models.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Store").
		Preload("Product.Store.OriginLocation").
		Where("id IN ?", variantIDs).
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}
