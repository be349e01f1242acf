package service

import (
	"context"

	"github.com/fjod/go_storefront/internal/discount"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type orderTotals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

func (s *CheckoutServiceImpl) loadDiscountSnapshot(ctx context.Context) (discount.Snapshot, error) {
	cfg, err := s.settings.GetDiscountConfiguration(ctx)
	if err != nil {
		return discount.Snapshot{}, classify("load discount configuration", err)
	}
	return discount.NewSnapshot(cfg), nil
}

// priceLines applies the discount resolved for each line. The original unit
// price stays on the line for display.
func priceLines(lines []domain.ResolvedLine, snap discount.Snapshot) []domain.PricedLine {
	priced := make([]domain.PricedLine, 0, len(lines))
	for _, line := range lines {
		pct := discount.Resolve(discount.Target{
			ProductPercent:    line.ProductDiscount,
			PrimaryCategoryID: line.PrimaryCategoryID,
			BrandID:           line.BrandID,
		}, snap)
		price := discount.Apply(line.UnitPrice, pct)
		priced = append(priced, domain.PricedLine{
			ResolvedLine:    line,
			OriginalPrice:   line.UnitPrice,
			DiscountPercent: pct,
			Price:           price,
			Total:           price.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(discount.MoneyPlaces),
		})
	}
	return priced
}

// computeTotals sums line totals. Coupons, shipping rates and tax are not
// computed here, so their amounts are zero.
func computeTotals(lines []domain.PricedLine) orderTotals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total)
	}
	t := orderTotals{
		Subtotal:       subtotal,
		DiscountAmount: decimal.Zero,
		ShippingAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
	}
	t.Total = t.Subtotal.Sub(t.DiscountAmount).Add(t.ShippingAmount).Add(t.TaxAmount)
	return t
}
