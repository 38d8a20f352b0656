// Package models contains database model definitions.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is one tenant of the platform. UserID identifies its sole owner;
// ownership is not a role grant and bypasses every permission check.
type Store struct {
	// ID is the store identifier (UUID), used in every admin route.
	ID string `gorm:"primaryKey;size:36" json:"id"`
	// UserID is the owner of the store.
	UserID string `gorm:"size:36;not null;index" json:"userId"`
	// Owner is the owning user (enforced with a foreign key constraint).
	Owner User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE" json:"-"`
	// Name is the display name of the store.
	Name string `gorm:"size:100;not null" json:"name"`
	// CreatedAt is the timestamp when the store was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the store was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Store model.
func (Store) TableName() string {
	return "stores"
}

// BeforeCreate assigns a UUID if none was set.
func (s *Store) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	return nil
}
