package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
)

// validateCartSource checks the shape of the cart source without reading the
// catalog and returns it by value.
func validateCartSource(src domain.CartSource) (domain.CartSource, error) {
	switch src := src.(type) {
	case *domain.OwnedCart:
		if src == nil {
			return nil, &ValidationError{Field: "items", Reason: "cart is empty"}
		}
		return validateCartSource(*src)
	case *domain.GuestItems:
		if src == nil {
			return nil, &ValidationError{Field: "items", Reason: "cart is empty"}
		}
		return validateCartSource(*src)
	case domain.OwnedCart:
		if strings.TrimSpace(src.OwnerID) == "" {
			return nil, &ValidationError{Field: "cartId", Reason: "requires an authenticated user"}
		}
		if strings.TrimSpace(src.CartID) == "" {
			return nil, &ValidationError{Field: "cartId", Reason: "is required"}
		}
		return src, nil
	case domain.GuestItems:
		if len(src.Items) == 0 {
			return nil, &ValidationError{Field: "items", Reason: "cart is empty"}
		}
		for i, item := range src.Items {
			switch {
			case strings.TrimSpace(item.ProductID) == "":
				return nil, &ValidationError{Field: fmt.Sprintf("items[%d].productId", i), Reason: "is required"}
			case strings.TrimSpace(item.VariantID) == "":
				return nil, &ValidationError{Field: fmt.Sprintf("items[%d].variantId", i), Reason: "is required"}
			case item.Quantity <= 0:
				return nil, &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Reason: "must be positive"}
			}
		}
		return src, nil
	case nil:
		return nil, &ValidationError{Field: "items", Reason: "cart is empty"}
	default:
		return nil, &InternalError{Op: "resolve cart source", Err: fmt.Errorf("unsupported cart source %T", src)}
	}
}

// resolveCartSource turns the checkout's cart source into lines carrying the
// current catalog data. The first line that fails aborts the resolution.
func (s *CheckoutServiceImpl) resolveCartSource(ctx context.Context, src domain.CartSource, locale string) ([]domain.ResolvedLine, error) {
	src, err := validateCartSource(src)
	if err != nil {
		return nil, err
	}
	switch src := src.(type) {
	case domain.OwnedCart:
		return s.resolveOwnedCart(ctx, src, locale)
	case domain.GuestItems:
		return s.resolveGuestItems(ctx, src, locale)
	default:
		return nil, &InternalError{Op: "resolve cart source", Err: fmt.Errorf("unsupported cart source %T", src)}
	}
}

func (s *CheckoutServiceImpl) resolveOwnedCart(ctx context.Context, src domain.OwnedCart, locale string) ([]domain.ResolvedLine, error) {
	cart, err := s.repo.GetCart(ctx, src.OwnerID, src.CartID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil, &NotFoundError{Resource: "cart", ID: src.CartID}
	}
	if err != nil {
		return nil, classify("get cart", err)
	}
	if len(cart.Items) == 0 {
		return nil, &ValidationError{Field: "cart", Reason: "cart is empty"}
	}

	lines := make([]domain.ResolvedLine, 0, len(cart.Items))
	for i, item := range cart.Items {
		if item.Quantity <= 0 {
			return nil, &ValidationError{Field: fmt.Sprintf("cart.items[%d].quantity", i), Reason: "must be positive"}
		}
		line, err := s.resolveLine(ctx, item.ProductID, item.VariantID, item.Quantity, locale)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *CheckoutServiceImpl) resolveGuestItems(ctx context.Context, src domain.GuestItems, locale string) ([]domain.ResolvedLine, error) {
	lines := make([]domain.ResolvedLine, 0, len(src.Items))
	for _, item := range src.Items {
		line, err := s.resolveLine(ctx, item.ProductID, item.VariantID, item.Quantity, locale)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *CheckoutServiceImpl) resolveLine(ctx context.Context, productID, variantID string, quantity int, locale string) (domain.ResolvedLine, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if errors.Is(err, repository.ErrProductNotFound) {
		return domain.ResolvedLine{}, &NotFoundError{Resource: "product", ID: productID}
	}
	if err != nil {
		return domain.ResolvedLine{}, classify("get product", err)
	}

	variant, err := s.repo.GetVariant(ctx, variantID)
	if errors.Is(err, repository.ErrVariantNotFound) {
		return domain.ResolvedLine{}, &NotFoundError{Resource: "variant", ID: variantID}
	}
	if err != nil {
		return domain.ResolvedLine{}, classify("get variant", err)
	}
	if variant.ProductID != product.ID {
		return domain.ResolvedLine{}, &NotFoundError{Resource: "variant", ID: variantID}
	}

	return domain.ResolvedLine{
		ProductID:         product.ID,
		ProductTitle:      product.Title(locale, s.defaultLocale),
		ProductDiscount:   product.DiscountPercent,
		PrimaryCategoryID: product.PrimaryCategoryID,
		BrandID:           product.BrandID,
		VariantID:         variant.ID,
		VariantTitle:      variant.Title(),
		SKU:               variant.SKU,
		ImageURL:          variant.ImageURL,
		UnitPrice:         variant.Price,
		Stock:             variant.Stock,
		Quantity:          quantity,
	}, nil
}
