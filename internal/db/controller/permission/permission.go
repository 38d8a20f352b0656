// Package permission mirrors the static permission catalog into the database.
package permission

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Sync writes every catalog entry into the permissions table, creating
// missing rows and refreshing resource, action, category and description of
// existing ones. Rows that are no longer in the catalog are left untouched so
// historical role links stay intact; they can never satisfy a check because
// evaluation goes through the catalog.
func Sync(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return ErrDBNil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := resolve(tx, auth.AllNames(), true)
		return err
	})
}

// Resolve returns the permission rows for the given catalog identifiers,
// creating rows that do not exist yet. Non-catalog identifiers are skipped.
// Callers pass a transaction when the result feeds a write.
func Resolve(tx *gorm.DB, names []string) ([]models.Permission, error) {
	return resolve(tx, names, false)
}

func resolve(tx *gorm.DB, names []string, refresh bool) ([]models.Permission, error) {
	if tx == nil {
		return nil, ErrDBNil
	}

	valid := auth.FilterValid(names)
	out := make([]models.Permission, 0, len(valid))

	for _, name := range valid {
		def, _ := auth.Lookup(name)

		var (
			p     models.Permission
			attrs = models.Permission{
				Resource:    string(def.Resource),
				Action:      string(def.Action),
				Category:    def.Category,
				Description: def.Description,
			}
			q = tx.Where(models.Permission{Name: def.Name})
		)

		if refresh {
			q = q.Assign(attrs)
		} else {
			q = q.Attrs(attrs)
		}

		err := q.FirstOrCreate(&p).Error
		if err != nil {
			return nil, fmt.Errorf("failed to resolve permission %s: %w", name, err)
		}

		out = append(out, p)
	}

	return out, nil
}
