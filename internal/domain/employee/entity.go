package employee

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleUser
}

// Employee is a member of staff. Only RoleUser employees take part in daily reconciliation.
type Employee struct {
	ID                      string
	Name                    string
	Email                   string
	Role                    Role
	IsAllowedRemoteCheckout bool
	ChatID                  *string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}
