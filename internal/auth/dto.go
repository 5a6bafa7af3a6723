package auth

import (
	"github.com/google/uuid"

	"github.com/schoolbridge/schoolbridge-backend/internal/users"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SupplierSummary describes the caller's supplier application after login.
type SupplierSummary struct {
	ID          uuid.UUID            `json:"id"`
	CompanyName string               `json:"company_name"`
	Status      enums.SupplierStatus `json:"status"`
}

// LoginResponse contains the tokens and user produced by a successful login.
// Supplier is only populated for supplier accounts that have an application.
type LoginResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	User         *users.UserDTO   `json:"user"`
	Supplier     *SupplierSummary `json:"supplier,omitempty"`
}

// AdminLoginResponse mirrors LoginResponse while exposing the admin user.
type AdminLoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}
