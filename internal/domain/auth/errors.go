package auth

import "errors"

var (
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrTokenRevoked           = errors.New("token has been revoked")
	ErrMissingToken           = errors.New("no token provided")
	ErrAdminAccessRequired    = errors.New("admin access required")
	ErrManagerAccessRequired  = errors.New("manager access required")
	ErrEmployeeAccessRequired = errors.New("employees can only act on their own records")
)
