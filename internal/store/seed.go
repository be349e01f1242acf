package store

import (
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// SeedDemo fills the store with a small catalog for local runs.
func SeedDemo(s *MemoryStore) {
	apparel := "cat-apparel"
	kitchen := "cat-kitchen"
	acme := "brand-acme"
	now := time.Now().UTC()

	s.PutProduct(domain.Product{
		ID: "prod-tshirt",
		Translations: []domain.Translation{
			{Locale: "en", Title: "Classic T-Shirt"},
			{Locale: "hy", Title: "Դասական շապիկ"},
			{Locale: "ru", Title: "Классическая футболка"},
		},
		PrimaryCategoryID: &apparel,
		BrandID:           &acme,
		CreatedAt:         now,
	})
	s.PutVariant(domain.ProductVariant{
		ID: "var-tshirt-red-m", ProductID: "prod-tshirt", SKU: "TSHIRT-RED-M",
		Price: decimal.NewFromInt(5000), Stock: 25,
		Options: []domain.VariantOption{{Key: "Color", Value: "Red"}, {Key: "Size", Value: "M"}},
	})
	s.PutVariant(domain.ProductVariant{
		ID: "var-tshirt-blue-l", ProductID: "prod-tshirt", SKU: "TSHIRT-BLUE-L",
		Price: decimal.NewFromInt(5000), Stock: 10,
		Options: []domain.VariantOption{{Key: "Color", Value: "Blue"}, {Key: "Size", Value: "L"}},
	})

	s.PutProduct(domain.Product{
		ID:                "prod-mug",
		Translations:      []domain.Translation{{Locale: "en", Title: "Ceramic Mug"}},
		DiscountPercent:   decimal.NewFromInt(10),
		PrimaryCategoryID: &kitchen,
		CreatedAt:         now,
	})
	s.PutVariant(domain.ProductVariant{
		ID: "var-mug", ProductID: "prod-mug", SKU: "MUG-WHITE",
		Price: decimal.RequireFromString("2500.00"), Stock: 3,
	})

	s.PutCart(domain.Cart{
		ID:     "cart-demo",
		UserID: "user-demo",
		Items: []domain.CartItem{
			{ProductID: "prod-tshirt", VariantID: "var-tshirt-red-m", Quantity: 2, Price: decimal.NewFromInt(5000), AddedAt: now},
			{ProductID: "prod-mug", VariantID: "var-mug", Quantity: 1, Price: decimal.RequireFromString("2500.00"), AddedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	})

	s.SetDiscountConfiguration(domain.DiscountConfiguration{
		Global:     decimal.NewFromInt(5),
		Categories: map[string]decimal.Decimal{apparel: decimal.NewFromInt(20)},
		Brands:     map[string]decimal.Decimal{acme: decimal.NewFromInt(30)},
	})
}
