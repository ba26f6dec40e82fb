// Seed loads a starter catalog into the database. Rows are keyed by slug, so
// running it again refreshes the same records instead of duplicating them.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/bakery-storefront/internal/config"
	"github.com/example/bakery-storefront/internal/domain/category"
	"github.com/example/bakery-storefront/internal/domain/product"
	"github.com/example/bakery-storefront/internal/infrastructure/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Seed] Failed to load configuration: %v", err)
	}

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[Seed] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	categories := store.NewPostgresCategoryStore(db)
	products := store.NewPostgresProductStore(db)

	categoryIDs := make(map[string]string)
	for i, c := range seedCategories() {
		existing, err := categories.GetBySlug(ctx, c.Slug)
		if err == nil {
			c.ID = existing.ID
			c.CreatedAt = existing.CreatedAt
		} else {
			c.ID = uuid.New().String()
			c.CreatedAt = time.Now()
		}
		c.SortOrder = i + 1
		c.UpdatedAt = time.Now()
		if err := categories.Upsert(ctx, &c); err != nil {
			log.Fatalf("[Seed] Failed to seed category %s: %v", c.Slug, err)
		}
		categoryIDs[c.Slug] = c.ID
	}
	log.Printf("[Seed] Seeded %d categories", len(categoryIDs))

	count := 0
	for _, entry := range seedProducts() {
		p := entry.product
		p.CategoryID = categoryIDs[entry.categorySlug]
		if p.CategoryID == "" {
			log.Fatalf("[Seed] Unknown category slug %q for product %s", entry.categorySlug, p.Slug)
		}
		existing, err := products.GetBySlug(ctx, p.Slug)
		if err == nil {
			p.ID = existing.ID
			p.Rating = existing.Rating
			p.CreatedAt = existing.CreatedAt
		} else {
			p.ID = uuid.New().String()
			p.CreatedAt = time.Now()
		}
		p.UpdatedAt = time.Now()
		if err := products.Upsert(ctx, &p); err != nil {
			log.Fatalf("[Seed] Failed to seed product %s: %v", p.Slug, err)
		}
		count++
	}
	log.Printf("[Seed] Seeded %d products", count)
}

func seedCategories() []category.Category {
	return []category.Category{
		{Name: "Cakes", Slug: "cakes", Description: "Fresh cream and fondant cakes for every celebration", IsActive: true},
		{Name: "Pastries", Slug: "pastries", Description: "Single-serve pastries and slices", IsActive: true},
		{Name: "Cookies", Slug: "cookies", Description: "Baked-daily cookies and biscotti", IsActive: true},
		{Name: "Breads", Slug: "breads", Description: "Artisan loaves and buns", IsActive: true},
		{Name: "Gift Hampers", Slug: "gift-hampers", Description: "Curated boxes for gifting", IsActive: true},
	}
}

type seedProduct struct {
	categorySlug string
	product      product.Product
}

func seedProducts() []seedProduct {
	return []seedProduct{
		{"cakes", product.Product{
			Name:        "Classic Chocolate Truffle Cake",
			Description: "Dark chocolate sponge layered with silky truffle ganache",
			Price:       649, OriginalPrice: 749,
			Weight: "500g", Servings: 6,
			Ingredients:  []string{"dark chocolate", "cream", "flour", "sugar", "eggs"},
			Allergens:    []string{"gluten", "dairy", "eggs"},
			Dietary:      product.Dietary{Vegetarian: true},
			Occasions:    []string{"birthday", "anniversary"},
			Availability: product.Availability{InStock: true, Quantity: 20},
			Customization: product.Customization{
				Flavors: []string{"dark chocolate", "milk chocolate"},
				Sizes:   []string{"500g", "1kg"},
			},
			Slug:     "classic-chocolate-truffle-cake",
			Keywords: []string{"chocolate", "truffle", "birthday cake"},
			IsActive: true, IsFeatured: true, SortOrder: 1,
		}},
		{"cakes", product.Product{
			Name:        "Eggless Red Velvet Cake",
			Description: "Cream cheese frosting over an eggless red velvet sponge",
			Price:       799,
			Weight:      "1kg", Servings: 10,
			Ingredients:  []string{"flour", "cocoa", "cream cheese", "beetroot"},
			Allergens:    []string{"gluten", "dairy"},
			Dietary:      product.Dietary{Vegetarian: true, Eggless: true},
			Occasions:    []string{"birthday", "valentine"},
			Availability: product.Availability{InStock: true, Quantity: 12},
			Slug:         "eggless-red-velvet-cake",
			Keywords:     []string{"red velvet", "eggless"},
			IsActive:     true, IsFeatured: true, SortOrder: 2,
		}},
		{"cakes", product.Product{
			Name:        "Vegan Carrot Walnut Cake",
			Description: "Spiced carrot cake with walnuts, fully plant based",
			Price:       899,
			Weight:      "750g", Servings: 8,
			Ingredients:  []string{"carrot", "walnut", "flour", "cinnamon"},
			Allergens:    []string{"gluten", "nuts"},
			Dietary:      product.Dietary{Vegetarian: true, Vegan: true, Eggless: true},
			Occasions:    []string{"birthday"},
			Availability: product.Availability{InStock: false, PreOrderDays: 2},
			Slug:         "vegan-carrot-walnut-cake",
			Keywords:     []string{"vegan", "carrot", "walnut"},
			IsActive:     true, SortOrder: 3,
		}},
		{"pastries", product.Product{
			Name:        "Butter Croissant",
			Description: "Flaky laminated croissant baked every morning",
			Price:       120,
			Weight:      "80g", Servings: 1,
			Ingredients:  []string{"flour", "butter", "yeast"},
			Allergens:    []string{"gluten", "dairy"},
			Dietary:      product.Dietary{Vegetarian: true, Eggless: true},
			Availability: product.Availability{InStock: true, Quantity: 60},
			Slug:         "butter-croissant",
			Keywords:     []string{"croissant", "breakfast"},
			IsActive:     true, SortOrder: 1,
		}},
		{"pastries", product.Product{
			Name:        "Mango Mousse Pastry",
			Description: "Alphonso mango mousse on a vanilla sponge base",
			Price:       180,
			Weight:      "120g", Servings: 1,
			Ingredients:  []string{"mango", "cream", "gelatin", "flour"},
			Allergens:    []string{"gluten", "dairy"},
			Dietary:      product.Dietary{Vegetarian: true},
			Occasions:    []string{"summer"},
			Availability: product.Availability{InStock: true, Quantity: 30},
			Slug:         "mango-mousse-pastry",
			Keywords:     []string{"mango", "mousse"},
			IsActive:     true, IsFeatured: true, SortOrder: 2,
		}},
		{"cookies", product.Product{
			Name:        "Sugar-Free Oat Cookies",
			Description: "Chewy oat cookies sweetened with dates",
			Price:       249,
			Weight:      "250g", Servings: 12,
			Ingredients:  []string{"oats", "dates", "butter"},
			Allergens:    []string{"gluten", "dairy"},
			Dietary:      product.Dietary{Vegetarian: true, SugarFree: true, Eggless: true},
			Availability: product.Availability{InStock: true, Quantity: 40},
			Slug:         "sugar-free-oat-cookies",
			Keywords:     []string{"sugar free", "oats", "healthy"},
			IsActive:     true, SortOrder: 1,
		}},
		{"breads", product.Product{
			Name:         "Gluten-Free Multigrain Loaf",
			Description:  "Millet and seed loaf baked without wheat",
			Price:        220,
			Weight:       "400g",
			Ingredients:  []string{"millet", "flaxseed", "sunflower seeds"},
			Dietary:      product.Dietary{Vegetarian: true, Vegan: true, GlutenFree: true, Eggless: true},
			Availability: product.Availability{InStock: true, Quantity: 15},
			Slug:         "gluten-free-multigrain-loaf",
			Keywords:     []string{"gluten free", "bread", "multigrain"},
			IsActive:     true, SortOrder: 1,
		}},
		{"gift-hampers", product.Product{
			Name:        "Celebration Gift Hamper",
			Description: "Cookies, brownies and a half-kilo cake boxed for gifting",
			Price:       1499, OriginalPrice: 1799,
			Weight:       "1.5kg",
			Occasions:    []string{"diwali", "christmas", "anniversary"},
			Dietary:      product.Dietary{Vegetarian: true},
			Availability: product.Availability{InStock: true, Quantity: 8},
			Slug:         "celebration-gift-hamper",
			Keywords:     []string{"hamper", "gift", "festival"},
			IsActive:     true, IsFeatured: true, SortOrder: 1,
		}},
	}
}
