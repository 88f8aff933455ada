package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerowaste/payment-service/internal/pagination"
)

func TestCalculate_MiddlePage(t *testing.T) {
	info := pagination.Calculate(25, 2, 10, "/x")

	assert.Equal(t, pagination.Meta{TotalItems: 25, ItemsPerPage: 10, CurrentPage: 2, TotalPages: 3}, info.Meta)
	assert.Equal(t, "/x?page=2&limit=10", info.Links.Self.Href)
	assert.Equal(t, "/x?page=1&limit=10", info.Links.First.Href)
	assert.Equal(t, "/x?page=3&limit=10", info.Links.Last.Href)
	require.NotNil(t, info.Links.Prev)
	assert.Equal(t, "/x?page=1&limit=10", info.Links.Prev.Href)
	require.NotNil(t, info.Links.Next)
	assert.Equal(t, "/x?page=3&limit=10", info.Links.Next.Href)
}

func TestCalculate_FirstAndLastPages(t *testing.T) {
	first := pagination.Calculate(25, 1, 10, "/x")
	assert.Nil(t, first.Links.Prev)
	assert.NotNil(t, first.Links.Next)

	last := pagination.Calculate(25, 3, 10, "/x")
	assert.NotNil(t, last.Links.Prev)
	assert.Nil(t, last.Links.Next)
}

func TestCalculate_EmptyCollection(t *testing.T) {
	info := pagination.Calculate(0, 1, 10, "/x")

	assert.Equal(t, 0, info.Meta.TotalPages)
	assert.Equal(t, "/x?page=0&limit=10", info.Links.Last.Href)
	assert.Nil(t, info.Links.Prev)
	assert.Nil(t, info.Links.Next)
}

func TestCalculate_Defaults(t *testing.T) {
	info := pagination.Calculate(5, 0, 0, "/x")

	assert.Equal(t, 1, info.Meta.CurrentPage)
	assert.Equal(t, 10, info.Meta.ItemsPerPage)
	assert.Equal(t, 1, info.Meta.TotalPages)
}

func TestLinkHeader(t *testing.T) {
	info := pagination.Calculate(25, 2, 10, "/x")

	assert.Equal(t,
		`</x?page=1&limit=10>; rel="first", </x?page=3&limit=10>; rel="last", </x?page=1&limit=10>; rel="prev", </x?page=3&limit=10>; rel="next"`,
		pagination.LinkHeader(info.Links))
}

func TestLinkHeader_OmitsMissingRels(t *testing.T) {
	info := pagination.Calculate(5, 1, 10, "/x")

	header := pagination.LinkHeader(info.Links)
	assert.NotContains(t, header, "prev")
	assert.NotContains(t, header, "next")
	assert.NotContains(t, header, "self")
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	assert.Equal(t, []int{4, 5, 6}, pagination.Paginate(items, 2, 3))
	assert.Equal(t, []int{7}, pagination.Paginate(items, 3, 3))
	assert.Empty(t, pagination.Paginate(items, 4, 3))
}

func TestWindow(t *testing.T) {
	items := []string{"a", "b", "c"}

	assert.Equal(t, []string{"b", "c"}, pagination.Window(items, 1, 10))
	assert.Equal(t, []string{"a"}, pagination.Window(items, 0, 1))
	assert.Empty(t, pagination.Window(items, 3, 1))
	assert.Equal(t, items, pagination.Window(items, 0, 0))
}

func TestParamsOffset(t *testing.T) {
	assert.Equal(t, 20, pagination.Params{Page: 3, Limit: 10}.Offset())
}
