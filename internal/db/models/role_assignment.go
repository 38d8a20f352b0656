package models

import "time"

// RoleAssignment grants one role to a staff user within one store.
// A user may hold several roles in a store; their permissions are the union.
// A role referenced by any assignment cannot be deleted (RESTRICT).
type RoleAssignment struct {
	// UserID is the staff user holding the role.
	UserID string `gorm:"primaryKey;size:36;column:user_id" json:"userId"`
	// StoreID is the store the assignment applies to.
	StoreID string `gorm:"primaryKey;size:36;column:store_id" json:"storeId"`
	// RoleID is the assigned role.
	RoleID uint `gorm:"primaryKey;column:role_id;index" json:"roleId"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT" json:"-"`
	// CreatedAt is the timestamp when the role was assigned (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the database table name for the RoleAssignment model.
func (RoleAssignment) TableName() string {
	return "role_assignments"
}
