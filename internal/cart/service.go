package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lokapasar/backend/internal/promos"
	"github.com/lokapasar/backend/pkg/db/models"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
)

// QuoteItem is a priced cart line.
type QuoteItem struct {
	VariantID   uuid.UUID `json:"variant_id"`
	ProductName string    `json:"product_name"`
	VariantName string    `json:"variant_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	LineTotal   int64     `json:"line_total"`
	InStock     bool      `json:"in_stock"`
}

// DiscountPreview shows the automatic discount the cart currently qualifies
// for. It is informational; nothing is consumed until checkout.
type DiscountPreview struct {
	Name         string `json:"name"`
	Amount       int64  `json:"amount"`
	FreeShipping bool   `json:"free_shipping"`
}

// Quote is the priced view of a user's cart.
type Quote struct {
	CartID      uuid.UUID        `json:"cart_id"`
	Items       []QuoteItem      `json:"items"`
	ItemsAmount int64            `json:"items_amount"`
	Discount    *DiscountPreview `json:"discount,omitempty"`
}

// Service prices carts.
type Service interface {
	GetQuote(ctx context.Context, userID uuid.UUID) (*Quote, error)
}

type service struct {
	repo   Repository
	promos promos.Service
}

// NewService builds the cart service.
func NewService(repo Repository, promoSvc promos.Service) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repository required")
	}
	if promoSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "promos service required")
	}
	return &service{repo: repo, promos: promoSvc}, nil
}

func (s *service) GetQuote(ctx context.Context, userID uuid.UUID) (*Quote, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	record, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	quote := &Quote{CartID: record.ID, Items: make([]QuoteItem, 0, len(record.Items))}
	query := promos.DiscountQuery{}
	for _, item := range record.Items {
		variant := item.Variant
		if variant == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart item missing variant")
		}
		lineTotal := variant.Price * int64(item.Quantity)
		quote.Items = append(quote.Items, QuoteItem{
			VariantID:   variant.ID,
			ProductName: productName(variant.Product),
			VariantName: variant.Name,
			Quantity:    item.Quantity,
			UnitPrice:   variant.Price,
			LineTotal:   lineTotal,
			InStock:     variant.Stock >= item.Quantity,
		})
		quote.ItemsAmount += lineTotal

		query.ProductIDs = append(query.ProductIDs, variant.ProductID)
		if variant.Product != nil {
			query.CategoryIDs = append(query.CategoryIDs, variant.Product.CategoryID)
			query.StoreIDs = append(query.StoreIDs, variant.Product.StoreID)
		}
	}

	if len(quote.Items) == 0 {
		return quote, nil
	}

	query.ItemsAmount = quote.ItemsAmount
	discount, err := s.promos.ResolveDiscount(ctx, query)
	if err != nil {
		return nil, err
	}
	if discount != nil {
		quote.Discount = &DiscountPreview{
			Name:         discount.Discount.Name,
			Amount:       discount.Amount,
			FreeShipping: discount.FreeShipping,
		}
	}
	return quote, nil
}

func productName(product *models.Product) string {
	if product == nil {
		return ""
	}
	return product.Name
}
