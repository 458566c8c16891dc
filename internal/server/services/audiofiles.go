package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/audiovault/audiovault/internal/common"
	"github.com/audiovault/audiovault/internal/server/config"
	"github.com/audiovault/audiovault/internal/server/models"
	"github.com/audiovault/audiovault/internal/server/objstore"
	"github.com/audiovault/audiovault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// AudioFileContent is an audio file's metadata together with its content
// fetched from object storage.
type AudioFileContent struct {
	ID       string
	FileName string
	Content  []byte
	Liked    bool
}

// AudioFileService implements upload/download/delete/like for per-user audio
// files. Every operation is ownership-scoped: the acting identity must own
// the file.
type AudioFileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       objstore.Store
	bucket      string
}

// NewAudioFileService constructs an AudioFileService.
func NewAudioFileService(db *sql.DB, m repomanager.RepositoryManager, store objstore.Store, cfg *config.Config) *AudioFileService {
	return &AudioFileService{
		db:          db,
		repomanager: m,
		store:       store,
		bucket:      cfg.S3Bucket,
	}
}

// Upload stores the file content in object storage and then records its
// metadata. The storage key is the record id. A file only becomes durable
// once both writes succeed; there is no cross-store atomicity.
func (s *AudioFileService) Upload(ctx context.Context, userID, fileName string, content io.Reader) (*models.AudioFile, error) {
	id := uuid.NewString()

	if err := s.store.Put(ctx, id, content); err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	file := &models.AudioFile{
		ID:       id,
		FileName: fileName,
		S3Bucket: s.bucket,
		S3Key:    id,
		UserID:   userID,
	}

	repo := s.repomanager.AudioFiles(s.db)
	if err := repo.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("error creating audio file record: %w", err)
	}
	return file, nil
}

// List returns the owner's files with their content. With likedOnly set,
// only favourites are returned.
func (s *AudioFileService) List(ctx context.Context, userID string, likedOnly bool) ([]*AudioFileContent, error) {
	repo := s.repomanager.AudioFiles(s.db)

	files, err := repo.ListByOwner(ctx, userID, likedOnly)
	if err != nil {
		return nil, err
	}

	result := make([]*AudioFileContent, 0, len(files))
	for _, f := range files {
		content, err := s.store.Get(ctx, f.S3Key)
		if err != nil {
			return nil, fmt.Errorf("error fetching file content: %w", err)
		}
		result = append(result, &AudioFileContent{
			ID:       f.ID,
			FileName: f.FileName,
			Content:  content,
			Liked:    f.Liked,
		})
	}
	return result, nil
}

// Delete removes a file's object first and then its metadata record.
// A file that does not exist or is not owned by userID yields
// common.ErrorNotFound; ownership is not revealed to other identities.
func (s *AudioFileService) Delete(ctx context.Context, userID, id string) (*models.AudioFile, error) {
	repo := s.repomanager.AudioFiles(s.db)

	file, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.UserID != userID {
		return nil, common.ErrorNotFound
	}

	if err := s.store.Delete(ctx, file.S3Key); err != nil {
		return nil, fmt.Errorf("error deleting file content: %w", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return file, nil
}

// SetLiked toggles the liked flag on the owner's file. A missing file yields
// common.ErrorNotFound; a file owned by someone else yields
// common.ErrorForbidden.
func (s *AudioFileService) SetLiked(ctx context.Context, userID, id string, liked bool) (*models.AudioFile, error) {
	repo := s.repomanager.AudioFiles(s.db)

	file, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.UserID != userID {
		return nil, common.ErrorForbidden
	}

	if err := repo.UpdateLiked(ctx, id, liked); err != nil {
		return nil, err
	}
	file.Liked = liked
	return file, nil
}
