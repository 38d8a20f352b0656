package role

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/db/models"
)

// Assign grants the role to the user within the store. Assigning a role the
// user already holds is a no-op.
func Assign(ctx context.Context, db *gorm.DB, storeID, userID string, roleID uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return assign(tx, storeID, userID, roleID)
	})
}

// AssignMany grants several roles to the user within the store in one transaction.
func AssignMany(ctx context.Context, db *gorm.DB, storeID, userID string, roleIDs []uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range roleIDs {
			if err := assign(tx, storeID, userID, id); err != nil {
				return err
			}
		}

		return nil
	})
}

// Unassign revokes the role from the user within the store. Revoking a role
// the user does not hold is a no-op.
func Unassign(ctx context.Context, db *gorm.DB, storeID, userID string, roleID uint) error {
	if db == nil {
		return ErrDBNil
	}

	tx := db.WithContext(ctx)

	if _, err := find(tx, storeID, roleID); err != nil {
		return err
	}

	err := tx.Where("user_id = ? AND store_id = ? AND role_id = ?", userID, storeID, roleID).
		Delete(&models.RoleAssignment{}).Error
	if err != nil {
		return fmt.Errorf("failed to unassign role: %w", err)
	}

	return nil
}

// Assignments lists the role assignments of the user within the store.
func Assignments(ctx context.Context, db *gorm.DB, storeID, userID string) ([]models.RoleAssignment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out []models.RoleAssignment

	err := db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		Order("role_id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load role assignments: %w", err)
	}

	return out, nil
}

func assign(tx *gorm.DB, storeID, userID string, roleID uint) error {
	if _, err := find(tx, storeID, roleID); err != nil {
		return err
	}

	var u models.User

	err := tx.Select("id").Where("id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}

	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	a := models.RoleAssignment{UserID: userID, StoreID: storeID, RoleID: roleID}

	err = tx.Omit("User", "Role").
		Where(models.RoleAssignment{UserID: userID, StoreID: storeID, RoleID: roleID}).
		FirstOrCreate(&a).Error
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	return nil
}
