package auth

import "sort"

// routeTable maps admin resource route groups to the permission that guards them.
//
// products is guarded by products:create rather than products:manage. A
// staff member holding only products:view or products:edit is therefore
// rejected from the whole group, while products:manage still passes through
// the wildcard.
var routeTable = map[string]string{ //nolint:gochecknoglobals
	"billboards": PermBillboardsManage,
	"products":   PermProductsCreate,
	"taxonomies": PermTaxonomiesManage,
	"orders":     PermOrdersManage,
	"customers":  PermCustomersManage,
	"brands":     PermBrandsManage,
	"layouts":    PermLayoutsManage,
	"roles":      PermRolesManage,
}

// RouteRequirement returns the permission guarding the route group of resource.
func RouteRequirement(resource string) (string, bool) {
	perm, ok := routeTable[resource]
	return perm, ok
}

// GuardedResources lists the resource route groups in the route table, sorted.
func GuardedResources() []string {
	out := make([]string, 0, len(routeTable))
	for r := range routeTable {
		out = append(out, r)
	}

	sort.Strings(out)

	return out
}
