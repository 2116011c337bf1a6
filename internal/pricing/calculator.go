// Package pricing is the single price calculator behind every checkout entry
// point. Discounts are applied sequentially (product first, coupon second);
// shipping is a fraction of the discounted item price.
package pricing

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/veyronstory/storefront-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// Quote is the computed breakdown for one order. Values are exact; rounding
// to two places happens only at the persist/display boundary via Rounded.
type Quote struct {
	ItemPrice decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
}

// Rounded returns the quote with every amount banked to two decimal places.
func (q Quote) Rounded() Quote {
	return Quote{
		ItemPrice: q.ItemPrice.Round(2),
		Shipping:  q.Shipping.Round(2),
		Total:     q.Total.Round(2),
	}
}

// Input captures everything the calculator needs for one order line.
type Input struct {
	BasePrice          decimal.Decimal
	Quantity           int
	ProductDiscountPct int
	CouponDiscountPct  int
	ShippingRate       decimal.Decimal
}

// Compute derives the payable amounts. The product discount applies to the
// base price and the coupon discount applies to the already-discounted price.
// The intermediate after-product-discount value is snapshotted onto order
// items, so the sequencing is observable even though the final total is not
// sensitive to it.
func Compute(in Input) (Quote, error) {
	if in.BasePrice.Sign() <= 0 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
	}
	if in.Quantity < 1 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if in.ProductDiscountPct < 0 || in.ProductDiscountPct > 100 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "product discount must be between 0 and 100")
	}
	if in.CouponDiscountPct < 0 || in.CouponDiscountPct > 100 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "coupon discount must be between 0 and 100")
	}
	if in.ShippingRate.Sign() < 0 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "shipping rate must not be negative")
	}

	afterProduct := applyDiscount(in.BasePrice, in.ProductDiscountPct)
	afterCoupon := applyDiscount(afterProduct, in.CouponDiscountPct)

	itemPrice := afterCoupon.Mul(decimal.NewFromInt(int64(in.Quantity)))
	shipping := itemPrice.Mul(in.ShippingRate)

	return Quote{
		ItemPrice: itemPrice,
		Shipping:  shipping,
		Total:     itemPrice.Add(shipping),
	}, nil
}

// UnitPriceAfterProductDiscount exposes the product-level discounted price for
// catalog display.
func UnitPriceAfterProductDiscount(basePrice decimal.Decimal, productDiscountPct int) decimal.Decimal {
	return applyDiscount(basePrice, productDiscountPct)
}

func applyDiscount(amount decimal.Decimal, pct int) decimal.Decimal {
	if pct <= 0 {
		return amount
	}
	factor := oneHundred.Sub(decimal.NewFromInt(int64(pct))).Div(oneHundred)
	return amount.Mul(factor)
}
