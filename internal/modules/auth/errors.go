package auth

import "errors"

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidUsername       = errors.New("invalid username")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrWrongPassword         = errors.New("wrong current password")
	ErrSamePassword          = errors.New("new password equals current")
)
