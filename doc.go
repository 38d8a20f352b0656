// Package main provides the entry point of shopkeep, the administration
// backend of a multi-tenant store platform. It serves a JSON API with Fiber
// in which every store-scoped route is guarded by the store's role based
// permissions, and it persists users, stores, roles and role assignments
// with gorm.
package main
