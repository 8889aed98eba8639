package employee

import "context"

type EmployeeRepository interface {
	Create(ctx context.Context, employee Employee) (Employee, error)

	// GetByID returns ErrEmployeeNotFound when no employee matches.
	GetByID(ctx context.Context, id string) (Employee, error)

	List(ctx context.Context) ([]Employee, error)
	ListByRole(ctx context.Context, role Role) ([]Employee, error)
}
