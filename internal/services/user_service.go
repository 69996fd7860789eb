package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"bnbBack/internal/cache"
	"bnbBack/internal/models"
	"bnbBack/internal/repositories"
	"bnbBack/utils"
)

const minPasswordLength = 6

type UserService struct {
	UserRepo     *repositories.UserRepository
	RoleRepo     *repositories.RoleRepository
	TokenManager *utils.Manager
	Cache        cache.Cache

	// AdminEmails are granted ROLE_ADMIN when they sign in.
	AdminEmails []string
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return cached(ctx, s.Cache, cache.UsersKey(), func() ([]models.User, error) {
		return s.UserRepo.GetAllUsers(ctx)
	})
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (models.User, error) {
	return s.UserRepo.GetUserByID(ctx, id)
}

func (s *UserService) CreateUser(ctx context.Context, req models.CreateUserRequest) (models.User, error) {
	user := models.User{
		Firstname: strings.TrimSpace(req.Firstname),
		Lastname:  strings.TrimSpace(req.Lastname),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Avatar:    req.Avatar,
	}
	if err := user.Validate(); err != nil {
		return models.User{}, err
	}
	if len(req.Password) < minPasswordLength {
		return models.User{}, models.NewValidationError("password", "password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user.Hash = string(hash)
	user.PreSave()

	user, err = s.UserRepo.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	invalidate(ctx, s.Cache, cache.UsersKey())
	return user, nil
}

// SignIn checks the password and issues an access token carrying the user's roles.
func (s *UserService) SignIn(ctx context.Context, req models.SignInRequest) (models.Tokens, error) {
	user, err := s.UserRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, models.ErrUserNotFound) {
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.Tokens{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(req.Password)); err != nil {
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	if s.isAdminEmail(user.Email) && !user.HasRole(models.RoleAdmin) {
		if user, err = s.AssignRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return models.Tokens{}, fmt.Errorf("grant admin role: %w", err)
		}
	}

	token, err := s.TokenManager.NewJWT(user.ID, user.RoleTitles())
	if err != nil {
		return models.Tokens{}, fmt.Errorf("issue token: %w", err)
	}
	return models.Tokens{AccessToken: token}, nil
}

// AssignRole grants the role with title to the user, creating the role on first use.
func (s *UserService) AssignRole(ctx context.Context, userID int, title string) (models.User, error) {
	title = strings.ToUpper(strings.TrimSpace(title))
	if !strings.HasPrefix(title, "ROLE_") {
		return models.User{}, models.NewValidationError("title", "role title must start with ROLE_")
	}
	if _, err := s.UserRepo.GetUserByID(ctx, userID); err != nil {
		return models.User{}, err
	}

	role, err := s.RoleRepo.GetRoleByTitle(ctx, title)
	if errors.Is(err, models.ErrRoleNotFound) {
		role, err = s.RoleRepo.CreateRole(ctx, models.Role{Title: title})
	}
	if err != nil {
		return models.User{}, err
	}

	if err := s.UserRepo.AssignRole(ctx, userID, role.ID); err != nil && !errors.Is(err, models.ErrDuplicateRole) {
		return models.User{}, err
	}
	return s.UserRepo.GetUserByID(ctx, userID)
}

func (s *UserService) isAdminEmail(email string) bool {
	for _, e := range s.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}
