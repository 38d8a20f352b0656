// Package auth provides authentication and authorization for store administration.
//
// # Permission catalog
//
// Every permission is a {Resource, Action} pair written as
// "<resource>:<action>". The catalog is built once at package
// initialisation and is read-only afterwards. It is grouped into categories
// for presentation. Identifiers that are not in the catalog are never
// granted and never satisfied.
//
// # Evaluation
//
// A granted Set satisfies a required identifier when it holds exactly that
// identifier or the manage permission of the same resource. Nothing else is
// implied: products:edit does not imply products:view, and products:manage
// says nothing about orders.
//
// # Principals
//
// A Principal is resolved per store and is either:
//   - Owner: the single owner of the store, who passes every check
//   - AssignedStaff: any other user, holding the union of the permissions of
//     the roles assigned to them in that store (possibly none)
//
// # Enforcement
//
// Service.Authorize and the Fiber middleware RequirePermission run the same
// decision: no user is 401, ownership allows, otherwise the union of role
// permissions is evaluated and a miss is 403 with a generic body. A datastore
// failure is 500 and never allows the request.
//
// Example usage:
//
//	authService := auth.NewService(db)
//
//	stores := app.Group("/api/stores/:storeId")
//	stores.Delete("/roles/:roleId",
//	    auth.RequirePermission(authService, auth.PermRolesManage),
//	    handler,
//	)
//	stores.Use("/products", auth.RequireRoute(authService, "products"))
package auth
