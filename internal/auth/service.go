package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/db/models"
)

const (
	// OutcomeAllowed labels a granted check.
	OutcomeAllowed = "allowed"
	// OutcomeDenied labels a check that failed on permissions.
	OutcomeDenied = "denied"
	// OutcomeUnauthenticated labels a check without a principal.
	OutcomeUnauthenticated = "unauthenticated"
	// OutcomeError labels a check that could not be decided.
	OutcomeError = "error"

	grantedPermissionsQuery = "JOIN role_permissions ON role_permissions.permission_id = permissions.id"
	assignedRolesQuery      = "JOIN role_assignments ON role_assignments.role_id = role_permissions.role_id"
)

var decisions = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "authorization_decisions_total",
		Help: "Number of permission checks, differentiated by outcome.",
	},
	[]string{"outcome"},
)

// ErrDBNil is returned when the service has no database connection.
var ErrDBNil = errors.New("database connection is nil")

// Decision is the result of a single permission check.
type Decision struct {
	Allowed bool
	// Status is the HTTP status the decision maps to: 200, 401 or 403.
	Status int
	// Reason is for logs only and must never be sent to clients.
	Reason string
}

// Err returns the sentinel error of a refused decision, or nil when the
// decision allows the request.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Status == fiber.StatusUnauthorized:
		return ErrUnauthenticated
	default:
		return ErrInsufficientPermission
	}
}

// Service resolves principals and decides permission checks against the database.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ResolvePrincipal loads who userID is within storeID. The owner of the store
// becomes an Owner; anybody else becomes an AssignedStaff holding the union
// of the permissions of their roles in that store. A store that does not
// exist has no owner, so the user resolves to staff without roles.
func (s *Service) ResolvePrincipal(ctx context.Context, userID, storeID string) (Principal, error) {
	if s == nil || s.db == nil {
		return nil, ErrDBNil
	}

	if userID == "" {
		return nil, ErrUnauthenticated
	}

	db := s.db.WithContext(ctx)

	var owners []string

	err := db.Model(&models.Store{}).
		Where("id = ?", storeID).
		Limit(1).
		Pluck("user_id", &owners).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	if len(owners) == 1 && owners[0] == userID {
		return Owner{User: userID, Store: storeID}, nil
	}

	var roleIDs []uint

	err = db.Model(&models.RoleAssignment{}).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		Order("role_id ASC").
		Pluck("role_id", &roleIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load role assignments: %w", err)
	}

	staff := AssignedStaff{User: userID, Store: storeID, RoleIDs: roleIDs, Granted: Set{}}
	if len(roleIDs) == 0 {
		return staff, nil
	}

	var names []string

	err = db.Table("permissions").
		Distinct("permissions.name").
		Joins(grantedPermissionsQuery).
		Joins(assignedRolesQuery).
		Where("role_assignments.user_id = ? AND role_assignments.store_id = ?", userID, storeID).
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load granted permissions: %w", err)
	}

	staff.Granted = NewSet(names...)

	return staff, nil
}

// Authorize decides whether userID may perform the operation guarded by
// required within storeID. An empty userID is unauthenticated. Datastore
// failures are returned as errors and never turn into a grant.
func (s *Service) Authorize(ctx context.Context, userID, storeID, required string) (Decision, error) {
	d, _, err := s.decide(ctx, userID, storeID, required)
	return d, err
}

func (s *Service) decide(ctx context.Context, userID, storeID, required string) (Decision, Principal, error) {
	if userID == "" {
		decisions.WithLabelValues(OutcomeUnauthenticated).Inc()

		return Decision{Status: fiber.StatusUnauthorized, Reason: "no principal"}, nil, nil
	}

	p, err := s.ResolvePrincipal(ctx, userID, storeID)
	if err != nil {
		decisions.WithLabelValues(OutcomeError).Inc()

		return Decision{Status: fiber.StatusInternalServerError, Reason: "principal resolution failed"}, nil, err
	}

	if !Evaluate(p, required) {
		decisions.WithLabelValues(OutcomeDenied).Inc()

		return Decision{Status: fiber.StatusForbidden, Reason: "missing " + required}, p, nil
	}

	decisions.WithLabelValues(OutcomeAllowed).Inc()

	reason := "granted " + required
	if _, ok := p.(Owner); ok {
		reason = "store owner"
	}

	return Decision{Allowed: true, Status: fiber.StatusOK, Reason: reason}, p, nil
}

// HasPermission checks if the user satisfies a specific permission in the store.
func (s *Service) HasPermission(ctx context.Context, userID, storeID, permission string) (bool, error) {
	p, err := s.ResolvePrincipal(ctx, userID, storeID)
	if err != nil {
		return false, err
	}

	return Evaluate(p, permission), nil
}

// HasAnyPermission checks if the user satisfies at least one of the given permissions.
func (s *Service) HasAnyPermission(ctx context.Context, userID, storeID string, permissions []string) (bool, error) {
	if len(permissions) == 0 {
		return false, nil
	}

	p, err := s.ResolvePrincipal(ctx, userID, storeID)
	if err != nil {
		return false, err
	}

	for _, perm := range permissions {
		if Evaluate(p, perm) {
			return true, nil
		}
	}

	return false, nil
}

// GetUserPermissions lists every catalog permission the user satisfies in
// the store, with manage wildcards expanded.
func (s *Service) GetUserPermissions(ctx context.Context, userID, storeID string) ([]string, error) {
	p, err := s.ResolvePrincipal(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}

	return EffectivePermissions(p), nil
}
