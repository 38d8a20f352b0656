package auth

import (
	"sort"
	"strings"
)

// Separator splits the resource and the action of a permission identifier.
const Separator = ":"

// Action is the verb part of a permission identifier.
type Action string

const (
	// ActionView allows reading a resource.
	ActionView Action = "view"
	// ActionCreate allows creating a resource.
	ActionCreate Action = "create"
	// ActionEdit allows changing a resource.
	ActionEdit Action = "edit"
	// ActionDelete allows deleting a resource.
	ActionDelete Action = "delete"
	// ActionExport allows exporting a resource (orders and customers only).
	ActionExport Action = "export"
	// ActionManage is the wildcard action: it satisfies every action on the same resource.
	ActionManage Action = "manage"
)

// Resource is the subject part of a permission identifier.
type Resource string

// Resources known to the catalog.
const (
	ResourceProducts   Resource = "products"
	ResourceTaxonomies Resource = "taxonomies"
	ResourceBrands     Resource = "brands"
	ResourceBillboards Resource = "billboards"
	ResourceLayouts    Resource = "layouts"
	ResourceOrders     Resource = "orders"
	ResourceCustomers  Resource = "customers"
	ResourceRoles      Resource = "roles"
	ResourceStaff      Resource = "staff"
	ResourceSettings   Resource = "settings"
)

// Permission identifiers used by route registration.
// These are the string forms of catalog entries; every constant here must be
// present in the catalog below.
const (
	PermProductsView   = "products:view"
	PermProductsCreate = "products:create"
	PermProductsEdit   = "products:edit"
	PermProductsDelete = "products:delete"
	PermProductsManage = "products:manage"

	PermTaxonomiesManage = "taxonomies:manage"
	PermBrandsManage     = "brands:manage"
	PermBillboardsManage = "billboards:manage"
	PermLayoutsManage    = "layouts:manage"

	PermOrdersView   = "orders:view"
	PermOrdersManage = "orders:manage"

	PermCustomersManage = "customers:manage"

	// PermRolesView allows reading roles and their permissions.
	PermRolesView = "roles:view"
	// PermRolesManage allows creating, changing, deleting and assigning roles.
	PermRolesManage = "roles:manage"

	// PermStaffManage allows inviting staff and removing them from a store.
	PermStaffManage = "staff:manage"
)

// Permission is the structured form of a permission identifier.
type Permission struct {
	Resource Resource
	Action   Action
}

// String returns the "<resource>:<action>" identifier.
func (p Permission) String() string {
	return string(p.Resource) + Separator + string(p.Action)
}

// IsManage reports whether p is the manage wildcard of its resource.
func (p Permission) IsManage() bool {
	return p.Action == ActionManage
}

// ManageOf returns the manage wildcard for the resource of p.
func (p Permission) ManageOf() Permission {
	return Permission{Resource: p.Resource, Action: ActionManage}
}

// Definition is a catalog entry.
type Definition struct {
	Permission
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Category groups catalog entries for presentation only.
type Category struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Definition `json:"permissions"`
}

type entry struct {
	resource    Resource
	action      Action
	description string
}

type group struct {
	name        string
	description string
	entries     []entry
}

// catalog is never mutated after package initialisation.
var catalog = []group{ //nolint:gochecknoglobals
	{
		name:        "Catalog Management",
		description: "Products, taxonomies and brands",
		entries: []entry{
			{ResourceProducts, ActionView, "View products and variants"},
			{ResourceProducts, ActionCreate, "Create products"},
			{ResourceProducts, ActionEdit, "Edit products, prices and stock"},
			{ResourceProducts, ActionDelete, "Delete products"},
			{ResourceProducts, ActionExport, "Export the product list"},
			{ResourceProducts, ActionManage, "Full control over products"},
			{ResourceTaxonomies, ActionView, "View taxonomies"},
			{ResourceTaxonomies, ActionCreate, "Create taxonomies"},
			{ResourceTaxonomies, ActionEdit, "Edit taxonomies"},
			{ResourceTaxonomies, ActionDelete, "Delete taxonomies"},
			{ResourceTaxonomies, ActionManage, "Full control over taxonomies"},
			{ResourceBrands, ActionView, "View brands"},
			{ResourceBrands, ActionCreate, "Create brands"},
			{ResourceBrands, ActionEdit, "Edit brands"},
			{ResourceBrands, ActionDelete, "Delete brands"},
			{ResourceBrands, ActionManage, "Full control over brands"},
		},
	},
	{
		name:        "Storefront",
		description: "Billboards and page layouts",
		entries: []entry{
			{ResourceBillboards, ActionView, "View billboards"},
			{ResourceBillboards, ActionCreate, "Create billboards"},
			{ResourceBillboards, ActionEdit, "Edit billboards"},
			{ResourceBillboards, ActionDelete, "Delete billboards"},
			{ResourceBillboards, ActionManage, "Full control over billboards"},
			{ResourceLayouts, ActionView, "View layouts"},
			{ResourceLayouts, ActionCreate, "Create layouts"},
			{ResourceLayouts, ActionEdit, "Edit layouts"},
			{ResourceLayouts, ActionDelete, "Delete layouts"},
			{ResourceLayouts, ActionManage, "Full control over layouts"},
		},
	},
	{
		name:        "Sales",
		description: "Orders and customers",
		entries: []entry{
			{ResourceOrders, ActionView, "View orders"},
			{ResourceOrders, ActionEdit, "Update order status"},
			{ResourceOrders, ActionDelete, "Cancel and delete orders"},
			{ResourceOrders, ActionExport, "Export orders"},
			{ResourceOrders, ActionManage, "Full control over orders"},
			{ResourceCustomers, ActionView, "View customers"},
			{ResourceCustomers, ActionCreate, "Create customers"},
			{ResourceCustomers, ActionEdit, "Edit customers"},
			{ResourceCustomers, ActionDelete, "Delete customers"},
			{ResourceCustomers, ActionExport, "Export customers"},
			{ResourceCustomers, ActionManage, "Full control over customers"},
		},
	},
	{
		name:        "Store Administration",
		description: "Roles, staff and store settings",
		entries: []entry{
			{ResourceRoles, ActionView, "View roles and their permissions"},
			{ResourceRoles, ActionManage, "Create, edit, delete and assign roles"},
			{ResourceStaff, ActionView, "View staff members"},
			{ResourceStaff, ActionCreate, "Invite staff members"},
			{ResourceStaff, ActionDelete, "Remove staff members"},
			{ResourceStaff, ActionManage, "Full control over staff members"},
			{ResourceSettings, ActionView, "View store settings"},
			{ResourceSettings, ActionEdit, "Edit store settings"},
			{ResourceSettings, ActionManage, "Full control over store settings"},
		},
	},
}

var byName = indexCatalog() //nolint:gochecknoglobals

func indexCatalog() map[string]Definition {
	idx := make(map[string]Definition)

	for _, g := range catalog {
		for _, e := range g.entries {
			d := Definition{
				Permission:  Permission{Resource: e.resource, Action: e.action},
				Category:    g.name,
				Description: e.description,
			}
			d.Name = d.Permission.String()

			if _, dup := idx[d.Name]; dup {
				panic("auth: duplicate catalog permission " + d.Name)
			}

			idx[d.Name] = d
		}
	}

	return idx
}

// Lookup returns the catalog definition of the given identifier.
// Identifiers are matched exactly.
func Lookup(name string) (Definition, bool) {
	d, ok := byName[name]
	return d, ok
}

// IsValid reports whether name is a catalog permission.
func IsValid(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// FilterValid keeps only catalog identifiers, trimmed and deduplicated,
// in their original order.
func FilterValid(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))

	for _, n := range names {
		d, ok := Lookup(strings.TrimSpace(n))
		if !ok {
			continue
		}

		if _, dup := seen[d.Name]; dup {
			continue
		}

		seen[d.Name] = struct{}{}
		out = append(out, d.Name)
	}

	return out
}

// All returns every catalog definition sorted by identifier.
func All() []Definition {
	out := make([]Definition, 0, len(byName))
	for _, d := range byName {
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// AllNames returns every catalog identifier sorted.
func AllNames() []string {
	defs := All()

	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}

	return names
}

// NamesWithAction returns the sorted identifiers having the given action.
func NamesWithAction(action Action) []string {
	var names []string

	for _, d := range All() {
		if d.Action == action {
			names = append(names, d.Name)
		}
	}

	return names
}

// Categories returns a copy of the catalog grouped by category, in catalog order.
// A non-empty search keeps only entries whose identifier, category or
// description contains it (case-insensitive); empty categories are dropped.
func Categories(search string) []Category {
	search = strings.ToLower(strings.TrimSpace(search))

	out := make([]Category, 0, len(catalog))

	for _, g := range catalog {
		c := Category{Name: g.name, Description: g.description}

		for _, e := range g.entries {
			d := byName[Permission{Resource: e.resource, Action: e.action}.String()]
			if search != "" && !matches(d, search) {
				continue
			}

			c.Permissions = append(c.Permissions, d)
		}

		if len(c.Permissions) > 0 {
			out = append(out, c)
		}
	}

	return out
}

func matches(d Definition, search string) bool {
	return strings.Contains(d.Name, search) ||
		strings.Contains(strings.ToLower(d.Category), search) ||
		strings.Contains(strings.ToLower(d.Description), search)
}
