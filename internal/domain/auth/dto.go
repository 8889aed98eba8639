package auth

import "time"

// LogoutRequest describes the token being revoked and the identity behind it.
type LogoutRequest struct {
	Token     string
	ExpiresAt time.Time
	Name      string
	Email     string
	Role      string
}

// Claims is the identity extracted from a verified access token.
type Claims struct {
	EmployeeID string
	Name       string
	Email      string
	Role       string
}
