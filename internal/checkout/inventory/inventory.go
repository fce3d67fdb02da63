package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lokapasar/backend/pkg/db/models"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
)

// DecrementRequest asks for stock to be taken from a single variant.
type DecrementRequest struct {
	VariantID uuid.UUID
	Quantity  int
}

// Decrement takes stock for every request inside the supplied transaction.
// Each decrement is a single conditional update; a variant with insufficient
// stock affects zero rows and fails the whole batch. The conditional write is
// the concurrency boundary, not any earlier read.
func Decrement(ctx context.Context, tx *gorm.DB, requests []DecrementRequest) error {
	for _, req := range requests {
		if req.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		res := tx.WithContext(ctx).
			Model(&models.Variant{}).
			Where("id = ? AND stock >= ?", req.VariantID, req.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", req.Quantity))
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "decrementing stock")
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").
				WithDetails(map[string]any{"variant_id": req.VariantID})
		}
	}
	return nil
}
