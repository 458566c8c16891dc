// Package audiofiles provides a PostgreSQL-backed repository for audio file
// metadata. The file content itself lives in object storage.
package audiofiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/audiovault/audiovault/internal/common"
	"github.com/audiovault/audiovault/internal/dbx"
	"github.com/audiovault/audiovault/internal/server/models"
)

// PostgresRepository implements audio file metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.AudioFile) error {
	query :=
		`INSERT INTO audio_files (id, file_name, s3_bucket, s3_key, user_id, liked)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		file.ID, file.FileName, file.S3Bucket, file.S3Key, file.UserID, file.Liked)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.AudioFile, error) {
	query :=
		`SELECT id, file_name, s3_bucket, s3_key, user_id, liked FROM audio_files
		 WHERE id = $1
		 `

	file := &models.AudioFile{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&file.ID, &file.FileName, &file.S3Bucket, &file.S3Key, &file.UserID, &file.Liked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, likedOnly bool) ([]*models.AudioFile, error) {
	query :=
		`SELECT id, file_name, s3_bucket, s3_key, user_id, liked FROM audio_files
		 WHERE user_id = $1 AND ($2 = FALSE OR liked = TRUE)
		 ORDER BY file_name, id
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID, likedOnly)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AudioFile
	for rows.Next() {
		var item models.AudioFile
		if err := rows.Scan(&item.ID, &item.FileName, &item.S3Bucket, &item.S3Key, &item.UserID, &item.Liked); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateLiked sets the liked flag for the file id. A missing row yields
// common.ErrorNotFound.
func (r *PostgresRepository) UpdateLiked(ctx context.Context, id string, liked bool) error {
	query :=
		`UPDATE audio_files SET liked = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, liked)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Delete removes a file record by id. A missing row yields common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM audio_files
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
