package promos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lokapasar/backend/pkg/db/models"
)

// Repository exposes voucher and discount storage operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindVoucherByCode(ctx context.Context, code string) (*models.Voucher, error)
	CountVoucherUsage(ctx context.Context, voucherID uuid.UUID) (int64, error)
	HasUserUsedVoucher(ctx context.Context, userID, voucherID uuid.UUID) (bool, error)
	CreateVoucherUsage(ctx context.Context, usage *models.VoucherUsage) error
	FindActiveDiscounts(ctx context.Context, at time.Time) ([]models.Discount, error)
	IncrementDiscountUsage(ctx context.Context, discountID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a promos repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindVoucherByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var voucher models.Voucher
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&voucher).Error
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *repository) CountVoucherUsage(ctx context.Context, voucherID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VoucherUsage{}).
		Where("voucher_id = ?", voucherID).
		Count(&count).Error
	return count, err
}

func (r *repository) HasUserUsedVoucher(ctx context.Context, userID, voucherID uuid.UUID) (bool, error) {
	var usage models.VoucherUsage
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND voucher_id = ?", userID, voucherID).
		First(&usage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repository) CreateVoucherUsage(ctx context.Context, usage *models.VoucherUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}

func (r *repository) FindActiveDiscounts(ctx context.Context, at time.Time) ([]models.Discount, error) {
	var discounts []models.Discount
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("starts_at <= ? AND ends_at >= ?", at, at).
		Find(&discounts).Error
	if err != nil {
		return nil, err
	}
	return discounts, nil
}

// IncrementDiscountUsage bumps used_count only while the usage limit still has
// headroom. The conditional update is the safety boundary under concurrency.
func (r *repository) IncrementDiscountUsage(ctx context.Context, discountID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("id = ?", discountID).
		Where("usage_limit IS NULL OR used_count < usage_limit").
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
