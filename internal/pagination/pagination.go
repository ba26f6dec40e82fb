// Package pagination holds the page/offset arithmetic shared by every
// paginated listing endpoint.
package pagination

// Page bounds a listing request.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page to the given defaults and bounds.
func (p Page) Normalize(defaultSize, maxSize int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultSize
	}
	if p.Size > maxSize {
		p.Size = maxSize
	}
	return p
}

// Offset is the number of rows to skip for this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Pagination is the page metadata returned alongside a listing.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	Total       int  `json:"total"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// New derives page metadata from a normalized page and a total row count.
func New(p Page, total int) Pagination {
	totalPages := 0
	if p.Size > 0 {
		totalPages = (total + p.Size - 1) / p.Size
	}
	return Pagination{
		CurrentPage: p.Number,
		TotalPages:  totalPages,
		Total:       total,
		HasNextPage: p.Number < totalPages,
		HasPrevPage: p.Number > 1,
	}
}
