package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/bakery-storefront/internal/domain/category"
	"github.com/example/bakery-storefront/internal/domain/product"
	"github.com/example/bakery-storefront/internal/pagination"
)

// ListProducts serves the filtered, sorted, paginated catalog listing.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filterFromQuery(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	sort := product.Sort(r.URL.Query().Get("sort"))
	page := pageFromQuery(r)

	products, pg, err := h.catalog.List(r.Context(), filter, sort, page)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"products":   productList(products),
		"pagination": pg,
	})
}

// FeaturedProducts serves the storefront's featured selection.
func (h *Handlers) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	products, err := h.catalog.Featured(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"products": productList(products)})
}

// GetProduct serves one product with its related products.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, related, err := h.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"product":         p,
		"relatedProducts": productList(related),
	})
}

// GetProductBySlug is GetProduct keyed by the SEO slug.
func (h *Handlers) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	p, related, err := h.catalog.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"product":         p,
		"relatedProducts": productList(related),
	})
}

// ProductsByCategory lists a category's products, keyed by category slug.
func (h *Handlers) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	filter, err := h.filterFromQuery(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	filter.CategoryID = c.ID

	sort := product.Sort(r.URL.Query().Get("sort"))
	products, pg, err := h.catalog.List(r.Context(), filter, sort, pageFromQuery(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"category":   c,
		"products":   productList(products),
		"pagination": pg,
	})
}

// filterFromQuery builds the catalog filter from query parameters. A category
// slug is resolved to its id; an unknown slug surfaces as not found.
func (h *Handlers) filterFromQuery(r *http.Request) (product.Filter, error) {
	q := r.URL.Query()
	filter := product.Filter{
		Weights:   splitList(q.Get("weights")),
		Occasions: splitList(q.Get("occasions")),
		Dietary:   splitList(q.Get("dietary")),
		Search:    strings.TrimSpace(q.Get("search")),
	}
	filter.MinPrice, _ = strconv.Atoi(q.Get("minPrice"))
	filter.MaxPrice, _ = strconv.Atoi(q.Get("maxPrice"))

	if slug := q.Get("category"); slug != "" {
		c, err := h.categories.GetBySlug(r.Context(), slug)
		if err != nil {
			if errors.Is(err, category.ErrNotFound) {
				return filter, category.ErrNotFound
			}
			return filter, err
		}
		filter.CategoryID = c.ID
	}
	return filter, nil
}

func pageFromQuery(r *http.Request) pagination.Page {
	q := r.URL.Query()
	number, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("limit"))
	return pagination.Page{Number: number, Size: size}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// productList keeps empty results as [] instead of null in JSON.
func productList(products []*product.Product) []*product.Product {
	if products == nil {
		return []*product.Product{}
	}
	return products
}
