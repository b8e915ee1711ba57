package types

import (
	"errors"

	appErr "github.com/sponsorship-studio/engine/pkg/errors"
)

// FromAppError converts err into the API error body. Only AppError messages
// are shown to clients; anything else is reported as an internal error.
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	var e *appErr.AppError
	if errors.As(err, &e) {
		return &APIError{Code: string(e.Code), Message: e.Message, Details: e.Meta}
	}
	return &APIError{Code: string(appErr.CodeInternal), Message: "internal server error"}
}
