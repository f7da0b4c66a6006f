package users

import (
	"context"
	"strings"

	"github.com/avolare/skybook/internal/auth"
	"github.com/avolare/skybook/internal/domain"
	"github.com/avolare/skybook/internal/repository"
	"github.com/google/uuid"
)

type UserUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type UserService struct {
	repo repository.UserRepository
	auth *auth.Manager
}

func NewUserService(repo repository.UserRepository, authManager *auth.Manager) *UserService {
	return &UserService{repo: repo, auth: authManager}
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, domain.InvalidStateError{Msg: "name, email and password are required"}
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, domain.ConflictError{Resource: "user", Msg: "email already registered"}
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	hash, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.auth.IssueToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *UserService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.AuthError{Msg: "invalid credentials"}
		}
		return nil, err
	}
	if !s.auth.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domain.AuthError{Msg: "invalid credentials"}
	}

	token, err := s.auth.IssueToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

var _ UserUseCase = (*UserService)(nil)
