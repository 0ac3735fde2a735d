package user

import appErrors "logipro/pkg/errors"

var (
	ErrUserNotFound      = appErrors.ErrUserNotFound
	ErrUserAlreadyExists = appErrors.ErrUserAlreadyExists
	ErrTokenInvalid      = appErrors.ErrInvalidToken
)
