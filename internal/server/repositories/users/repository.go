// Package users stores identity records and their ordered role lists for the
// reference user directory.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// Create stores user with its roles and fills in ID and CreatedAt.
	// A taken email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User, roles []string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	// GetRoles returns the roles of userID in the order they were stored.
	GetRoles(ctx context.Context, userID string) ([]string, error)
}
