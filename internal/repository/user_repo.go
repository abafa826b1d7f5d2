package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"buildtrack/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	query := `
        INSERT INTO users (id, username, name, role, password_hash, assigned_projects, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
    `
	_, err := r.db.Exec(ctx, query,
		u.ID, u.Username, u.Name, u.Role, u.PasswordHash, u.AssignedProjects,
	)
	return err
}

// FindByUsername returns the user with the given username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
        SELECT id, username, name, role, password_hash, assigned_projects, created_at
        FROM users
        WHERE username = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.Name, &u.Role, &u.PasswordHash, &u.AssignedProjects, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID returns the user with the given id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `
        SELECT id, username, name, role, password_hash, assigned_projects, created_at
        FROM users
        WHERE id = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.Name, &u.Role, &u.PasswordHash, &u.AssignedProjects, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AssignProjects replaces a client user's visible project set.
func (r *UserRepository) AssignProjects(ctx context.Context, userID string, projectIDs []string) error {
	query := `
        UPDATE users
        SET assigned_projects = $2
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query, userID, projectIDs)
	return err
}
