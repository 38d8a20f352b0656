package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIdentifiers(t *testing.T) {
	for _, d := range All() {
		parts := strings.Split(d.Name, Separator)
		require.Len(t, parts, 2, d.Name)
		assert.Equal(t, string(d.Resource), parts[0])
		assert.Equal(t, string(d.Action), parts[1])
		assert.NotEmpty(t, d.Category, d.Name)
		assert.NotEmpty(t, d.Description, d.Name)
	}
}

func TestRouteConstantsAreInCatalog(t *testing.T) {
	for _, p := range []string{
		PermProductsView, PermProductsCreate, PermProductsEdit, PermProductsDelete, PermProductsManage,
		PermTaxonomiesManage, PermBrandsManage, PermBillboardsManage, PermLayoutsManage,
		PermOrdersView, PermOrdersManage, PermCustomersManage,
		PermRolesView, PermRolesManage, PermStaffManage,
	} {
		assert.True(t, IsValid(p), p)
	}
}

func TestEveryResourceHasManage(t *testing.T) {
	resources := map[Resource]bool{}
	for _, d := range All() {
		resources[d.Resource] = resources[d.Resource] || d.IsManage()
	}

	for r, hasManage := range resources {
		assert.True(t, hasManage, "resource %s has no manage permission", r)
	}
}

func TestLookup(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		found bool
	}{
		{name: "exact", input: "products:edit", found: true},
		{name: "surrounding whitespace", input: "  orders:view ", found: false},
		{name: "unknown action", input: "products:fly", found: false},
		{name: "unknown resource", input: "rockets:view", found: false},
		{name: "case differs", input: "Products:Edit", found: false},
		{name: "empty", input: "", found: false},
		{name: "bare resource", input: "products", found: false},
		{name: "global wildcard", input: "*:*", found: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := Lookup(tc.input)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.found, IsValid(tc.input))
		})
	}
}

func TestFilterValid(t *testing.T) {
	got := FilterValid([]string{"products:edit", "bogus", " products:edit", "orders:view", "", "orders:fly"})
	assert.Equal(t, []string{"products:edit", "orders:view"}, got)

	assert.Empty(t, FilterValid(nil))
	assert.Empty(t, FilterValid([]string{"nope"}))
}

func TestAllNamesSorted(t *testing.T) {
	names := AllNames()
	require.NotEmpty(t, names)
	assert.IsNonDecreasing(t, names)
	assert.Len(t, names, len(All()))
}

func TestNamesWithAction(t *testing.T) {
	manage := NamesWithAction(ActionManage)
	assert.Contains(t, manage, PermProductsManage)
	assert.Contains(t, manage, PermRolesManage)

	for _, n := range manage {
		assert.True(t, strings.HasSuffix(n, ":manage"), n)
	}

	view := NamesWithAction(ActionView)
	assert.Contains(t, view, PermRolesView)
	assert.NotContains(t, view, PermRolesManage)
}

func TestCategories(t *testing.T) {
	all := Categories("")
	require.Len(t, all, 4)
	assert.Equal(t, "Catalog Management", all[0].Name)

	total := 0
	for _, c := range all {
		total += len(c.Permissions)
	}

	assert.Equal(t, len(All()), total)

	orders := Categories("ORDERS")
	require.Len(t, orders, 1)
	assert.Equal(t, "Sales", orders[0].Name)

	for _, d := range orders[0].Permissions {
		assert.Equal(t, ResourceOrders, d.Resource)
	}

	assert.Empty(t, Categories("no such thing"))
}

func TestCategoriesReturnsCopy(t *testing.T) {
	first := Categories("")
	first[0].Permissions[0].Name = "tampered"

	assert.NotEqual(t, "tampered", Categories("")[0].Permissions[0].Name)
	assert.False(t, IsValid("tampered"))
}
