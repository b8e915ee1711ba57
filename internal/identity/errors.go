package identity

import appErr "github.com/sponsorship-studio/engine/pkg/errors"

// Each rejection carries its own user-facing message.
var (
	ErrInvalidCredentials    = appErr.New(appErr.CodeUnauthorized, "invalid email or password")
	ErrAdminSelfRegistration = appErr.New(appErr.CodeForbidden, "the admin role cannot be self-assigned")
	ErrMissingFields         = appErr.New(appErr.CodeInvalid, "name, email, password and role are required")
	ErrInvalidRole           = appErr.New(appErr.CodeInvalid, "unknown role")
	ErrPasswordTooShort      = appErr.New(appErr.CodeInvalid, "password must be at least 6 characters")
	ErrEmailTaken            = appErr.New(appErr.CodeConflict, "an account with this email already exists")
)
