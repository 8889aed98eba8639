package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/google/uuid"
)

type employeeRepository struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepository{store: store}
}

func (r *employeeRepository) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.employees {
		if strings.EqualFold(existing.Email, emp.Email) {
			return employee.Employee{}, employee.ErrEmailExists
		}
	}

	now := time.Now().UTC()
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	emp.CreatedAt, emp.UpdatedAt = now, now
	s.employees[emp.ID] = emp
	return emp, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	emp, ok := s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *employeeRepository) List(ctx context.Context) ([]employee.Employee, error) {
	return r.filter(func(employee.Employee) bool { return true }), nil
}

func (r *employeeRepository) ListByRole(ctx context.Context, role employee.Role) ([]employee.Employee, error) {
	return r.filter(func(e employee.Employee) bool { return e.Role == role }), nil
}

func (r *employeeRepository) filter(keep func(employee.Employee) bool) []employee.Employee {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []employee.Employee
	for _, emp := range s.employees {
		if keep(emp) {
			result = append(result, emp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result
}
