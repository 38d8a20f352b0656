// Package role provides store-scoped persistence for roles, their permission
// sets and their assignments to staff users.
package role

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/db/controller/permission"
	"github.com/shopkeep/shopkeep/internal/db/models"
)

const (
	whereStoreAndID   = "store_id = ? AND id = ?"
	whereRoleID       = "role_id = ?"
	permissionsByRole = "JOIN role_permissions ON role_permissions.permission_id = permissions.id"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrStoreIDEmpty is returned when no store id was given.
	ErrStoreIDEmpty = errors.New("store id cannot be empty")
	// ErrRoleNameEmpty is returned when a role is created or renamed with an empty name.
	ErrRoleNameEmpty = errors.New("role name cannot be empty")
	// ErrRoleNotFound is returned when the role does not exist in the given store.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameExists is returned when another role of the store already uses the name.
	ErrRoleNameExists = errors.New("a role with this name already exists in the store")
	// ErrRoleInUse is returned when deleting a role that is still assigned to staff.
	ErrRoleInUse = errors.New("role is assigned to staff members; unassign it before deleting")
	// ErrInvalidPermissionList is returned when a permission replacement carries no valid permission.
	ErrInvalidPermissionList = errors.New("permissions must be a non-empty list of catalog permissions")
	// ErrUserNotFound is returned when assigning a role to a user that does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// Input carries the fields of a role create request.
type Input struct {
	Name        string
	Description string
	Permissions []string
	IsDefault   bool
}

// Detail is a role together with its flattened, sorted permission names.
type Detail struct {
	models.Role
	Permissions []string `json:"permissions"`
	Assignments int64    `json:"assignments"`
}

// Create stores a new role for the store. Permission identifiers that are
// not in the catalog are dropped; the rest is linked in the same transaction.
func Create(ctx context.Context, db *gorm.DB, storeID string, in Input) (*Detail, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if storeID == "" {
		return nil, ErrStoreIDEmpty
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	r := models.Role{
		StoreID:     storeID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		IsDefault:   in.IsDefault,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNameFree(tx, storeID, name, 0); err != nil {
			return err
		}

		if err := tx.Omit("Store").Create(&r).Error; err != nil {
			return fmt.Errorf("failed to create role: %w", err)
		}

		return link(tx, r.ID, in.Permissions)
	})
	if err != nil {
		return nil, err
	}

	return Get(ctx, db, storeID, r.ID)
}

// Get loads a role of the store with its permission names.
func Get(ctx context.Context, db *gorm.DB, storeID string, id uint) (*Detail, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	tx := db.WithContext(ctx)

	r, err := find(tx, storeID, id)
	if err != nil {
		return nil, err
	}

	return detail(tx, r)
}

// List returns the roles of the store ordered by name. A non-empty search
// filters on name and description.
func List(ctx context.Context, db *gorm.DB, storeID, search string) ([]Detail, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if storeID == "" {
		return nil, ErrStoreIDEmpty
	}

	var (
		roles []models.Role
		tx    = db.WithContext(ctx)
		q     = tx.Where("store_id = ?", storeID)
	)

	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	if err := q.Order("name ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	out := make([]Detail, 0, len(roles))

	for i := range roles {
		d, err := detail(tx, &roles[i])
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}

// ReplacePermissions sets the role's permission set to exactly the catalog
// permissions in names. The old links are removed and the new ones written
// in one transaction, so no reader ever sees the role without permissions.
// Name and description are changed in the same transaction when non-nil.
//
// Concurrent replacements of the same role are last-write-wins.
func ReplacePermissions(
	ctx context.Context,
	db *gorm.DB,
	storeID string,
	id uint,
	names []string,
	name, description *string,
) (*Detail, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if len(auth.FilterValid(names)) == 0 {
		return nil, ErrInvalidPermissionList
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := find(tx, storeID, id)
		if err != nil {
			return err
		}

		if err = rename(tx, r, name, description); err != nil {
			return err
		}

		if err = tx.Where(whereRoleID, r.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to unlink role permissions: %w", err)
		}

		if err = link(tx, r.ID, names); err != nil {
			return err
		}

		return tx.Model(&models.Role{}).Where("id = ?", r.ID).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}

	return Get(ctx, db, storeID, id)
}

// Delete removes a role and its permission links. A role that is still
// assigned to anybody is not deleted and ErrRoleInUse is returned.
func Delete(ctx context.Context, db *gorm.DB, storeID string, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := find(tx, storeID, id)
		if err != nil {
			return err
		}

		var assigned int64
		if err = tx.Model(&models.RoleAssignment{}).Where(whereRoleID, r.ID).Count(&assigned).Error; err != nil {
			return fmt.Errorf("failed to count role assignments: %w", err)
		}

		if assigned > 0 {
			return ErrRoleInUse
		}

		if err = tx.Where(whereRoleID, r.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to unlink role permissions: %w", err)
		}

		if err = tx.Delete(&models.Role{}, r.ID).Error; err != nil {
			return fmt.Errorf("failed to delete role: %w", err)
		}

		return nil
	})
}

// DefaultRoleIDs returns the ids of the store's roles marked as default.
func DefaultRoleIDs(ctx context.Context, db *gorm.DB, storeID string) ([]uint, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var ids []uint

	err := db.WithContext(ctx).Model(&models.Role{}).
		Where("store_id = ? AND is_default = ?", storeID, true).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load default roles: %w", err)
	}

	return ids, nil
}

func find(tx *gorm.DB, storeID string, id uint) (*models.Role, error) {
	if storeID == "" {
		return nil, ErrStoreIDEmpty
	}

	var r models.Role

	err := tx.Where(whereStoreAndID, storeID, id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load role: %w", err)
	}

	return &r, nil
}

func ensureNameFree(tx *gorm.DB, storeID, name string, exceptID uint) error {
	var count int64

	err := tx.Model(&models.Role{}).
		Where("store_id = ? AND name = ? AND id <> ?", storeID, name, exceptID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check role name: %w", err)
	}

	if count > 0 {
		return ErrRoleNameExists
	}

	return nil
}

func rename(tx *gorm.DB, r *models.Role, name, description *string) error {
	updates := map[string]any{}

	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return ErrRoleNameEmpty
		}

		if err := ensureNameFree(tx, r.StoreID, n, r.ID); err != nil {
			return err
		}

		updates["name"] = n
	}

	if description != nil {
		updates["description"] = strings.TrimSpace(*description)
	}

	if len(updates) == 0 {
		return nil
	}

	updates["updated_at"] = time.Now()

	if err := tx.Model(&models.Role{}).Where("id = ?", r.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	return nil
}

func link(tx *gorm.DB, roleID uint, names []string) error {
	perms, err := permission.Resolve(tx, names)
	if err != nil {
		return err
	}

	if len(perms) == 0 {
		return nil
	}

	links := make([]models.RolePermission, len(perms))
	for i, p := range perms {
		links[i] = models.RolePermission{RoleID: roleID, PermissionID: p.ID}
	}

	if err = tx.Omit("Role", "Permission").Create(&links).Error; err != nil {
		return fmt.Errorf("failed to link role permissions: %w", err)
	}

	return nil
}

func detail(tx *gorm.DB, r *models.Role) (*Detail, error) {
	names, err := permissionNames(tx, r.ID)
	if err != nil {
		return nil, err
	}

	var assigned int64
	if err = tx.Model(&models.RoleAssignment{}).Where(whereRoleID, r.ID).Count(&assigned).Error; err != nil {
		return nil, fmt.Errorf("failed to count role assignments: %w", err)
	}

	return &Detail{Role: *r, Permissions: names, Assignments: assigned}, nil
}

func permissionNames(tx *gorm.DB, roleID uint) ([]string, error) {
	names := []string{}

	err := tx.Table("permissions").
		Joins(permissionsByRole).
		Where("role_permissions.role_id = ?", roleID).
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}

	sort.Strings(names)

	return names, nil
}
