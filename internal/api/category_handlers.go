package api

import (
	"net/http"

	"github.com/example/bakery-storefront/internal/domain/product"
)

// ListCategories serves the active categories with per-category product
// counts and price ranges.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"categories": categories})
}

// GetCategory serves one category by slug.
func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"category": c})
}

// CategoryFilters serves the selectable catalog filter values.
func (h *Handlers) CategoryFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.catalog.FilterOptions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"occasions":  stringList(opts.Occasions),
		"weights":    stringList(opts.Weights),
		"priceRange": map[string]int{"min": opts.MinPrice, "max": opts.MaxPrice},
		"dietary":    opts.Dietary,
		"sortOptions": []product.Sort{
			product.SortPopular, product.SortName, product.SortPriceLow,
			product.SortPriceHigh, product.SortRating, product.SortNewest,
		},
	})
}

func stringList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
