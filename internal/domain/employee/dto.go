package employee

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	Name                    string  `json:"name" validate:"required,max=100"`
	Email                   string  `json:"email" validate:"required"`
	Role                    string  `json:"role" validate:"required,oneof=admin manager user"`
	IsAllowedRemoteCheckout bool    `json:"isAllowedRemoteCheckout"`
	ChatID                  *string `json:"chat_id"`
}

func (r *CreateEmployeeRequest) Validate() error {
	errs := validator.Struct(r)
	if !validator.IsEmpty(r.Email) && !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email must be a valid email"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID                      string  `json:"id"`
	Name                    string  `json:"name"`
	Email                   string  `json:"email"`
	Role                    string  `json:"role"`
	IsAllowedRemoteCheckout bool    `json:"isAllowedRemoteCheckout"`
	ChatID                  *string `json:"chat_id,omitempty"`
	CreatedAt               string  `json:"created_at"`
}

func ToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                      e.ID,
		Name:                    e.Name,
		Email:                   e.Email,
		Role:                    string(e.Role),
		IsAllowedRemoteCheckout: e.IsAllowedRemoteCheckout,
		ChatID:                  e.ChatID,
		CreatedAt:               e.CreatedAt.Format(time.RFC3339),
	}
}
