package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Page
		want Page
	}{
		{"zero value gets defaults", Page{}, Page{Number: 1, Size: 20}},
		{"negative number clamps to first page", Page{Number: -3, Size: 10}, Page{Number: 1, Size: 10}},
		{"oversized page clamps to max", Page{Number: 2, Size: 500}, Page{Number: 2, Size: 50}},
		{"valid page untouched", Page{Number: 3, Size: 25}, Page{Number: 3, Size: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(20, 50))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Page{Number: 1, Size: 20}.Offset())
	assert.Equal(t, 20, Page{Number: 2, Size: 20}.Offset())
	assert.Equal(t, 90, Page{Number: 10, Size: 10}.Offset())
}

func TestNew(t *testing.T) {
	pg := New(Page{Number: 2, Size: 20}, 45)

	assert.Equal(t, 2, pg.CurrentPage)
	assert.Equal(t, 3, pg.TotalPages)
	assert.Equal(t, 45, pg.Total)
	assert.True(t, pg.HasNextPage)
	assert.True(t, pg.HasPrevPage)
}

func TestNew_SinglePage(t *testing.T) {
	pg := New(Page{Number: 1, Size: 20}, 5)

	assert.Equal(t, 1, pg.TotalPages)
	assert.False(t, pg.HasNextPage)
	assert.False(t, pg.HasPrevPage)
}

func TestNew_Empty(t *testing.T) {
	pg := New(Page{Number: 1, Size: 20}, 0)

	assert.Equal(t, 0, pg.TotalPages)
	assert.Equal(t, 0, pg.Total)
	assert.False(t, pg.HasNextPage)
}
