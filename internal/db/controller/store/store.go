// Package store provides persistence for stores and their staff membership.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/db/controller/role"
	"github.com/shopkeep/shopkeep/internal/db/models"
)

const (
	// ManagerRoleName is the name of the default role holding every manage permission.
	ManagerRoleName = "Manager"
	// ViewerRoleName is the name of the default role holding every view permission.
	ViewerRoleName = "Viewer"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrStoreNotFound is returned when a store does not exist.
	ErrStoreNotFound = errors.New("store not found")
	// ErrStoreNameEmpty is returned when a store is created without a name.
	ErrStoreNameEmpty = errors.New("store name cannot be empty")
	// ErrOwnerNotFound is returned when the owner user does not exist.
	ErrOwnerNotFound = errors.New("owner user not found")
	// ErrOwnerRemoval is returned when trying to remove the owner from their own store.
	ErrOwnerRemoval = errors.New("the store owner cannot be removed from the store")
	// ErrOwnerInvite is returned when inviting the owner as staff of their own store.
	ErrOwnerInvite = errors.New("the store owner cannot be invited as staff")
	// ErrNoRolesToAssign is returned when an invite names no roles and the store has no default role.
	ErrNoRolesToAssign = errors.New("no roles given and the store has no default role")
)

// Create stores a new store owned by ownerID together with the two seed
// roles: Manager (all manage permissions) and Viewer (all view
// permissions, granted by default to invited staff).
func Create(ctx context.Context, db *gorm.DB, ownerID, name string) (*models.Store, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrStoreNameEmpty
	}

	s := models.Store{UserID: ownerID, Name: name}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.User

		err := tx.Select("id").Where("id = ?", ownerID).First(&owner).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOwnerNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to load owner: %w", err)
		}

		if err = tx.Omit("Owner").Create(&s).Error; err != nil {
			return fmt.Errorf("failed to create store: %w", err)
		}

		seeds := []role.Input{
			{
				Name:        ManagerRoleName,
				Description: "Full control over every store resource",
				Permissions: auth.NamesWithAction(auth.ActionManage),
			},
			{
				Name:        ViewerRoleName,
				Description: "Read-only access",
				Permissions: auth.NamesWithAction(auth.ActionView),
				IsDefault:   true,
			},
		}

		for _, in := range seeds {
			if _, err = role.Create(ctx, tx, s.ID, in); err != nil {
				return fmt.Errorf("failed to seed role %s: %w", in.Name, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// Get retrieves a store by its id.
func Get(ctx context.Context, db *gorm.DB, id string) (*models.Store, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var s models.Store

	err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStoreNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	return &s, nil
}

// ListOwned returns the stores owned by the user.
func ListOwned(ctx context.Context, db *gorm.DB, ownerID string) ([]models.Store, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out []models.Store
	if err := db.WithContext(ctx).Where("user_id = ?", ownerID).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}

	return out, nil
}

// RemoveMember removes a staff user from the store by deleting all of their
// role assignments there. The owner cannot be removed.
func RemoveMember(ctx context.Context, db *gorm.DB, storeID, userID string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var removed int64

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s models.Store

		err := tx.Where("id = ?", storeID).First(&s).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to load store: %w", err)
		}

		if s.UserID == userID {
			return ErrOwnerRemoval
		}

		res := tx.Where("store_id = ? AND user_id = ?", storeID, userID).Delete(&models.RoleAssignment{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove role assignments: %w", res.Error)
		}

		removed = res.RowsAffected

		return nil
	})

	return removed, err
}

// Invite adds a user as staff of the store by assigning roleIDs, or every
// default role of the store when roleIDs is empty. It returns the role ids
// that were assigned.
func Invite(ctx context.Context, db *gorm.DB, storeID, userID string, roleIDs []uint) ([]uint, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	s, err := Get(ctx, db, storeID)
	if err != nil {
		return nil, err
	}

	if s.UserID == userID {
		return nil, ErrOwnerInvite
	}

	if len(roleIDs) == 0 {
		if roleIDs, err = role.DefaultRoleIDs(ctx, db, storeID); err != nil {
			return nil, err
		}
	}

	if len(roleIDs) == 0 {
		return nil, ErrNoRolesToAssign
	}

	if err = role.AssignMany(ctx, db, storeID, userID, roleIDs); err != nil {
		return nil, err
	}

	return roleIDs, nil
}

// Member is a staff user of a store with the roles they hold there.
type Member struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	RoleIDs  []uint `json:"roleIds"`
}

// Members lists the staff users of the store ordered by username. The owner
// is not listed unless they also hold roles.
func Members(ctx context.Context, db *gorm.DB, storeID string) ([]Member, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rows []struct {
		UserID   string
		Username string
		RoleID   uint
	}

	err := db.WithContext(ctx).Table("role_assignments").
		Select("role_assignments.user_id, users.username, role_assignments.role_id").
		Joins("JOIN users ON users.id = role_assignments.user_id").
		Where("role_assignments.store_id = ?", storeID).
		Order("users.username ASC, role_assignments.role_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list store members: %w", err)
	}

	out := make([]Member, 0, len(rows))

	for _, r := range rows {
		if n := len(out); n > 0 && out[n-1].UserID == r.UserID {
			out[n-1].RoleIDs = append(out[n-1].RoleIDs, r.RoleID)
			continue
		}

		out = append(out, Member{UserID: r.UserID, Username: r.Username, RoleIDs: []uint{r.RoleID}})
	}

	return out, nil
}
