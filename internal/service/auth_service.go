package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"buildtrack/internal/model"
	"buildtrack/internal/repository"
	"buildtrack/pkg/rbac"
	"buildtrack/pkg/util"
)

type AuthService struct {
	userRepo  *repository.UserRepository
	jwtSecret string
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

// Register creates a new user. Usernames are unique; the role defaults to
// member when not given.
func (s *AuthService) Register(ctx context.Context, username, name, password, role string) (*model.User, error) {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("username already exists")
	}

	if role == "" {
		role = rbac.RoleMember
	}
	if role != rbac.RoleAdmin && role != rbac.RoleMember && role != rbac.RoleClient {
		return nil, errors.New("unknown role")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:     username,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Login checks user credentials and returns a JWT.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", errors.New("invalid username or password")
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return "", errors.New("invalid username or password")
	}

	token, err := util.GenerateJWT(u.ID, u.Role, s.jwtSecret)
	if err != nil {
		return "", err
	}

	return token, nil
}
