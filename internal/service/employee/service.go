package employee

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	notifier     notification.Service
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository, notifier notification.Service) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		notifier:     notifier,
	}
}

// Create implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		Name:                    req.Name,
		Email:                   req.Email,
		Role:                    employee.Role(req.Role),
		IsAllowedRemoteCheckout: req.IsAllowedRemoteCheckout,
		ChatID:                  req.ChatID,
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if s.notifier != nil {
		chatID := "-"
		if created.ChatID != nil {
			chatID = *created.ChatID
		}
		text := fmt.Sprintf("*New User Created* 👤\n"+
			"\n🆔 Name: %s\n"+
			"\n📧 Email: %s\n"+
			"\n👮 Role: %s\n"+
			"\n🌏 Remote Checkout: %t\n"+
			"\n💬 Chat ID: %s",
			created.Name, created.Email, created.Role, created.IsAllowedRemoteCheckout, chatID,
		)
		if err := s.notifier.Notify(ctx, notification.TopicSecurity, text); err != nil {
			slog.Warn("Failed to queue new employee notification", "employee_id", created.ID, "error", err)
		}
	}

	return employee.ToResponse(created), nil
}

// Get implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Get(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(e), nil
}

// List implements employee.EmployeeService.
func (s *EmployeeServiceImpl) List(ctx context.Context) ([]employee.EmployeeResponse, error) {
	employees, err := s.employeeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.ToResponse(e))
	}
	return responses, nil
}
