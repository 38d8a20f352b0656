package models

import "time"

// Role is a named bundle of permissions scoped to exactly one store.
// Roles are never shared across stores.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey" json:"id"`
	// StoreID is the store the role belongs to.
	StoreID string `gorm:"size:36;not null;uniqueIndex:idx_store_role_name" json:"storeId"`
	// Store is the owning store (loaded via foreign key).
	Store Store `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE" json:"-"`
	// Name is the role name, unique within the store (e.g., "Catalog Manager").
	Name string `gorm:"size:100;not null;uniqueIndex:idx_store_role_name" json:"name"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255" json:"description"`
	// IsDefault marks roles granted to invited staff when no role is chosen explicitly.
	IsDefault bool `gorm:"default:false" json:"isDefault"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
