package models

import "time"

// Permission mirrors one entry of the static permission catalog.
// Rows are written only by the catalog sync at startup; users never create or delete them.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey" json:"-"`
	// Name is the unique identifier in resource:action format (e.g., "products:create").
	Name string `gorm:"unique;size:100;not null" json:"name"`
	// Resource is the resource this permission applies to (e.g., "products").
	Resource string `gorm:"size:100;not null" json:"resource"`
	// Action is the action allowed on the resource (e.g., "view", "manage").
	Action string `gorm:"size:50;not null" json:"action"`
	// Category groups permissions for presentation (e.g., "Catalog Management").
	Category string `gorm:"size:100" json:"category"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255" json:"description"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time `json:"-"`
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
