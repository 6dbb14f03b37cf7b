// Package services contains server-side business logic: the authentication
// orchestrator, session issuance, the refresh token store and a reference
// user directory.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// UserDirectory resolves identities and verifies credentials. Lookups return
// common.ErrorNotFound for unknown users.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	GetRoles(ctx context.Context, userID string) ([]string, error)
}

// Directory is a UserDirectory over a users.Repository with bcrypt hashes.
// Emails are matched case-insensitively.
type Directory struct {
	repo users.Repository
	cost int
}

func NewDirectory(repo users.Repository) *Directory {
	return &Directory{repo: repo, cost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (d *Directory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.repo.FindByEmail(ctx, normalizeEmail(email))
}

func (d *Directory) FindByID(ctx context.Context, id string) (*models.User, error) {
	return d.repo.FindByID(ctx, id)
}

func (d *Directory) VerifyPassword(user *models.User, password string) bool {
	if user == nil || len(user.PasswordHash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) == nil
}

func (d *Directory) GetRoles(ctx context.Context, userID string) ([]string, error) {
	return d.repo.GetRoles(ctx, userID)
}

// Register creates a user with a bcrypt hash of password and the given roles.
func (d *Directory) Register(ctx context.Context, email, userName, password string, roles []string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	if userName == "" {
		userName = email
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	u, err := d.repo.Create(ctx, &models.User{Email: email, UserName: userName, PasswordHash: hash}, roles)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}
