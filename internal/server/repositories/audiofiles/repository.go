package audiofiles

import (
	"context"

	"github.com/audiovault/audiovault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.AudioFile) error
	GetByID(ctx context.Context, id string) (*models.AudioFile, error)
	// ListByOwner returns the owner's files ordered by file_name then id.
	// With likedOnly set, only liked files are returned.
	ListByOwner(ctx context.Context, ownerID string, likedOnly bool) ([]*models.AudioFile, error)
	UpdateLiked(ctx context.Context, id string, liked bool) error
	Delete(ctx context.Context, id string) error
}
