package auth

import "errors"

var (
	// ErrUnauthenticated is returned when no principal was resolved for the request.
	// Surfaced as 401.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInsufficientPermission is returned when a resolved principal fails a permission check.
	// Surfaced as 403 with a generic message; the missing permission is never revealed.
	ErrInsufficientPermission = errors.New("insufficient permission")

	// ErrUnknownPermission is returned when a route is registered with an identifier that is not in the catalog.
	ErrUnknownPermission = errors.New("permission is not in the catalog")

	// ErrUserNameOrEmailExists is returned when attempting to create a user with a username or email that already exists.
	ErrUserNameOrEmailExists = errors.New("user with username or email already exists")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")
)
