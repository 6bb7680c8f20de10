// Package admins authenticates back-office accounts.
package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	minPasswordLength         = 10
)

var emailCheck = validator.New()

// Profile is the public view of an admin.
type Profile struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Role        enums.AdminRole `json:"role"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
}

// LoginResult carries the issued access token.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Admin       Profile   `json:"admin"`
}

// CreateInput bootstraps an account.
type CreateInput struct {
	Email    string
	Name     string
	Password string
	Role     enums.AdminRole
}

// Service defines admin account operations.
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Get(ctx context.Context, id uuid.UUID) (*Profile, error)
	Create(ctx context.Context, input CreateInput) (*Profile, error)
}

type service struct {
	repo     *Repository
	jwtCfg   config.JWTConfig
	password config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs the admin service.
func NewService(repo *Repository, jwtCfg config.JWTConfig, password config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("admin repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		jwtCfg:   jwtCfg,
		password: password,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, admin.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	admin.LastLoginAt = &now

	if security.NeedsRehash(admin.PasswordHash, s.password) {
		if hash, err := security.HashPassword(password, s.password); err == nil {
			if err := s.repo.UpdatePasswordHash(ctx, admin.ID, hash); err != nil {
				s.logg.Warn(s.logg.WithAdminID(ctx, admin.ID.String()), "admins.rehash_failed")
			}
		}
	}

	token, expiresAt, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		AdminID: admin.ID,
		Email:   admin.Email,
		Role:    admin.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	s.logg.Info(s.logg.WithAdminID(ctx, admin.ID.String()), "admins.login")
	return &LoginResult{AccessToken: token, ExpiresAt: expiresAt, Admin: profileOf(admin)}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "admin not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load admin")
	}
	if !admin.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin account disabled")
	}
	profile := profileOf(admin)
	return &profile, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Profile, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	role := input.Role
	if role == "" {
		role = enums.AdminRoleOwner
	}
	switch {
	case emailCheck.Var(email, "required,email") != nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	case name == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case len(input.Password) < minPasswordLength:
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "password must be at least %d characters", minPasswordLength)
	case !role.IsValid():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	admin := &models.AdminUser{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin")
	}
	profile := profileOf(admin)
	return &profile, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.AdminUser, error) {
	input := normalizeEmail(email)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	admin, err := s.repo.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
	}

	valid, err := security.VerifyPassword(password, admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !admin.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return admin, nil
}

func profileOf(admin *models.AdminUser) Profile {
	return Profile{
		ID:          admin.ID,
		Email:       admin.Email,
		Name:        admin.Name,
		Role:        admin.Role,
		LastLoginAt: admin.LastLoginAt,
	}
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
