package product

import (
	"errors"
	"math"
	"time"
)

var (
	ErrNotFound    = errors.New("product not found")
	ErrUnavailable = errors.New("product is not available")
)

// Rating is the running review average for a product.
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Dietary flags a product for dietary filtering.
type Dietary struct {
	Vegetarian bool `json:"vegetarian"`
	Vegan      bool `json:"vegan"`
	GlutenFree bool `json:"glutenFree"`
	SugarFree  bool `json:"sugarFree"`
	Eggless    bool `json:"eggless"`
}

// Availability tracks stock for a product. A product with zero quantity but a
// positive PreOrderDays lead time can still be ordered as a pre-order.
type Availability struct {
	InStock      bool `json:"inStock"`
	Quantity     int  `json:"quantity"`
	PreOrderDays int  `json:"preOrderDays,omitempty"`
}

// Customization lists the options a buyer can pick per order line.
type Customization struct {
	Flavors     []string `json:"flavors,omitempty"`
	Sizes       []string `json:"sizes,omitempty"`
	Decorations []string `json:"decorations,omitempty"`
}

type Product struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	CategoryID    string        `json:"categoryId"`
	Price         int           `json:"price"`
	OriginalPrice int           `json:"originalPrice,omitempty"`
	Images        []string      `json:"images,omitempty"`
	Rating        Rating        `json:"rating"`
	Weight        string        `json:"weight"`
	Servings      int           `json:"servings,omitempty"`
	Ingredients   []string      `json:"ingredients,omitempty"`
	Allergens     []string      `json:"allergens,omitempty"`
	Dietary       Dietary       `json:"dietary"`
	Occasions     []string      `json:"occasions,omitempty"`
	Availability  Availability  `json:"availability"`
	Customization Customization `json:"customization"`
	Slug          string        `json:"slug"`
	Keywords      []string      `json:"keywords,omitempty"`
	IsActive      bool          `json:"isActive"`
	IsFeatured    bool          `json:"isFeatured"`
	SortOrder     int           `json:"sortOrder"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Orderable reports whether the product can be purchased right now: either it
// holds stock, or it allows pre-orders despite being out of stock.
func (p *Product) Orderable() bool {
	if !p.IsActive {
		return false
	}
	return p.Availability.InStock || p.Availability.PreOrderDays > 0
}

// ApplyStockDelta adjusts the quantity by delta (negative for a sale, positive
// for a restock or cancellation), clamping at zero and keeping the inStock
// flag consistent with the resulting quantity.
func (p *Product) ApplyStockDelta(delta int) {
	q := p.Availability.Quantity + delta
	if q < 0 {
		q = 0
	}
	p.Availability.Quantity = q
	p.Availability.InStock = q > 0
}

// AddRating folds one more overall score into the running average, rounding
// the mean to one decimal place.
func (r Rating) AddRating(overall int) Rating {
	count := r.Count + 1
	avg := (r.Average*float64(r.Count) + float64(overall)) / float64(count)
	return Rating{
		Average: math.Round(avg*10) / 10,
		Count:   count,
	}
}

// DiscountPercentage derives the discount from the original price, if any.
func (p *Product) DiscountPercentage() int {
	if p.OriginalPrice > p.Price {
		return int(math.Round(float64(p.OriginalPrice-p.Price) / float64(p.OriginalPrice) * 100))
	}
	return 0
}
