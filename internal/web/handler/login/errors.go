package login

import "errors"

var (
	// ErrInvalidFormData is returned when the submitted login payload cannot be parsed
	// or fails validation.
	ErrInvalidFormData = errors.New("invalid form data")

	// ErrInvalidCredentials is returned when the provided username and/or password
	// are not valid. Unknown users, wrong passwords and disabled accounts all
	// yield this error so accounts can not be probed.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
