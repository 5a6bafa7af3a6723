package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/internal/users"
	"github.com/schoolbridge/schoolbridge-backend/pkg/config"
	"github.com/schoolbridge/schoolbridge-backend/pkg/db"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	pkgerrors "github.com/schoolbridge/schoolbridge-backend/pkg/errors"
	"github.com/schoolbridge/schoolbridge-backend/pkg/security"
)

// AdminRegisterRequest contains the credentials for the dev-only admin registration flow.
type AdminRegisterRequest struct {
	FirstNames string `json:"first_names" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
}

// AdminRegisterService creates admin users. The route is only mounted in dev;
// production admins are provisioned out of band.
type AdminRegisterService interface {
	Register(ctx context.Context, req AdminRegisterRequest) (*users.UserDTO, error)
}

// AdminRegisterServiceParams names the dependencies for the admin register flow.
type AdminRegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type adminRegisterService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

func NewAdminRegisterService(params AdminRegisterServiceParams) (AdminRegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &adminRegisterService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *adminRegisterService) Register(ctx context.Context, req AdminRegisterRequest) (*users.UserDTO, error) {
	email, firstNames, lastName, err := normalizeAdminRequest(req)
	if err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *users.UserDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		active := true
		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    firstNames,
			LastName:     lastName,
			Role:         enums.UserRoleAdmin,
			IsActive:     &active,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func normalizeAdminRequest(req AdminRegisterRequest) (email, firstNames, lastName string, err error) {
	email = strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return "", "", "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	firstNames = strings.TrimSpace(req.FirstNames)
	if firstNames == "" {
		return "", "", "", pkgerrors.New(pkgerrors.CodeValidation, "first_names is required")
	}
	lastName = strings.TrimSpace(req.LastName)
	if lastName == "" {
		return "", "", "", pkgerrors.New(pkgerrors.CodeValidation, "last_name is required")
	}
	return email, firstNames, lastName, nil
}
