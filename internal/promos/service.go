package promos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lokapasar/backend/pkg/db"
	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
)

// VoucherResult carries a validated voucher and the discount it yields for the
// purchase it was validated against.
type VoucherResult struct {
	Voucher        *models.Voucher
	DiscountAmount int64
}

// DiscountQuery describes a cart snapshot used to resolve automatic discounts.
type DiscountQuery struct {
	ItemsAmount int64
	ProductIDs  []uuid.UUID
	CategoryIDs []uuid.UUID
	StoreIDs    []uuid.UUID
}

// DiscountResult is the single winning discount for a query. FreeShipping
// signals a shipping-cost waiver instead of a monetary amount.
type DiscountResult struct {
	Discount     *models.Discount
	Amount       int64
	FreeShipping bool
}

// Service resolves vouchers and automatic discounts.
type Service interface {
	WithTx(tx *gorm.DB) Service
	ValidateVoucher(ctx context.Context, userID uuid.UUID, code string, itemsAmount int64) (*VoucherResult, error)
	RecordVoucherUsage(ctx context.Context, userID, voucherID, orderID uuid.UUID) error
	ResolveDiscount(ctx context.Context, query DiscountQuery) (*DiscountResult, error)
	ConsumeDiscount(ctx context.Context, discountID uuid.UUID) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the promos service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "promos repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), now: s.now}
}

// ValidateVoucher checks a voucher code against the purchase and returns the
// discount it grants. Inactive and expired codes are reported as not found so
// the response does not leak catalog state.
func (s *service) ValidateVoucher(ctx context.Context, userID uuid.UUID, code string, itemsAmount int64) (*VoucherResult, error) {
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher code required")
	}

	voucher, err := s.repo.FindVoucherByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading voucher")
	}
	if !voucher.Active || voucher.ExpiresAt.Before(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
	}

	if voucher.UsageLimit != nil {
		used, err := s.repo.CountVoucherUsage(ctx, voucher.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting voucher usage")
		}
		if used >= int64(*voucher.UsageLimit) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "voucher usage limit reached")
		}
	}

	alreadyUsed, err := s.repo.HasUserUsedVoucher(ctx, userID, voucher.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking voucher usage")
	}
	if alreadyUsed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "voucher already used")
	}

	if voucher.MinPurchase != nil && itemsAmount < *voucher.MinPurchase {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase amount below voucher minimum")
	}

	amount := voucherDiscount(voucher, itemsAmount)
	return &VoucherResult{Voucher: voucher, DiscountAmount: amount}, nil
}

// RecordVoucherUsage persists a usage row. The unique (user_id, voucher_id)
// index backs the one-redemption-per-user rule; a violation surfaces as a
// conflict.
func (s *service) RecordVoucherUsage(ctx context.Context, userID, voucherID, orderID uuid.UUID) error {
	usage := &models.VoucherUsage{
		ID:        uuid.New(),
		UserID:    userID,
		VoucherID: voucherID,
		OrderID:   orderID,
	}
	if err := s.repo.CreateVoucherUsage(ctx, usage); err != nil {
		if db.IsUniqueViolation(err, "") || errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "voucher already redeemed")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording voucher usage")
	}
	return nil
}

// ResolveDiscount picks the single best automatic discount for the cart.
// Narrower scopes win outright; ties fall to the larger nominal value, not
// the realized amount. Returns nil when nothing applies.
func (s *service) ResolveDiscount(ctx context.Context, query DiscountQuery) (*DiscountResult, error) {
	candidates, err := s.repo.FindActiveDiscounts(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading discounts")
	}

	var winner *DiscountResult
	for i := range candidates {
		d := &candidates[i]
		if !discountMatches(d, query) {
			continue
		}
		if d.MinPurchase != nil && query.ItemsAmount < *d.MinPurchase {
			continue
		}
		if d.UsageLimit != nil && d.UsedCount >= *d.UsageLimit {
			continue
		}

		result := &DiscountResult{Discount: d}
		if d.Type == enums.DiscountTypeFreeShipping {
			result.FreeShipping = true
		} else {
			result.Amount = discountAmount(d, query.ItemsAmount)
		}

		if winner == nil || beats(result, winner) {
			winner = result
		}
	}
	return winner, nil
}

// ConsumeDiscount claims one use of a capped discount.
func (s *service) ConsumeDiscount(ctx context.Context, discountID uuid.UUID) error {
	ok, err := s.repo.IncrementDiscountUsage(ctx, discountID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "incrementing discount usage")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "discount usage limit reached")
	}
	return nil
}

func discountMatches(d *models.Discount, query DiscountQuery) bool {
	switch d.Scope {
	case enums.DiscountScopeProduct:
		return d.ProductID != nil && containsID(query.ProductIDs, *d.ProductID)
	case enums.DiscountScopeCategory:
		return d.CategoryID != nil && containsID(query.CategoryIDs, *d.CategoryID)
	case enums.DiscountScopeStore:
		return d.StoreID != nil && containsID(query.StoreIDs, *d.StoreID)
	case enums.DiscountScopeGlobal:
		return true
	default:
		return false
	}
}

func beats(candidate, current *DiscountResult) bool {
	cr := candidate.Discount.Scope.Rank()
	wr := current.Discount.Scope.Rank()
	if cr != wr {
		return cr < wr
	}
	return candidate.Discount.Value.GreaterThan(current.Discount.Value)
}

func voucherDiscount(voucher *models.Voucher, itemsAmount int64) int64 {
	var amount int64
	switch voucher.Type {
	case enums.VoucherTypePercentage:
		amount = percentageOf(voucher.Value, itemsAmount)
		if voucher.MaxDiscount != nil && amount > *voucher.MaxDiscount {
			amount = *voucher.MaxDiscount
		}
	case enums.VoucherTypeFixedAmount:
		amount = voucher.Value.IntPart()
	}
	return clampDiscount(amount, itemsAmount)
}

func discountAmount(d *models.Discount, itemsAmount int64) int64 {
	var amount int64
	switch d.Type {
	case enums.DiscountTypePercentage:
		amount = percentageOf(d.Value, itemsAmount)
		if d.MaxDiscount != nil && amount > *d.MaxDiscount {
			amount = *d.MaxDiscount
		}
	case enums.DiscountTypeFixedAmount:
		amount = d.Value.IntPart()
	}
	return clampDiscount(amount, itemsAmount)
}

// percentageOf floors the product so the customer is never over-discounted by
// a rounding step.
func percentageOf(fraction decimal.Decimal, amount int64) int64 {
	return decimal.NewFromInt(amount).Mul(fraction).Floor().IntPart()
}

func clampDiscount(amount, itemsAmount int64) int64 {
	if amount < 0 {
		return 0
	}
	if amount > itemsAmount {
		return itemsAmount
	}
	return amount
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
