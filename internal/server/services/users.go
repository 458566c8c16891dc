// Package services contains server-side business logic. This file implements
// UserService: login and token issuance, user administration, and the
// role/ownership policy rules that gate those operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/audiovault/audiovault/internal/common"
	"github.com/audiovault/audiovault/internal/dbx"
	"github.com/audiovault/audiovault/internal/server/auth"
	"github.com/audiovault/audiovault/internal/server/config"
	"github.com/audiovault/audiovault/internal/server/models"
	"github.com/audiovault/audiovault/internal/server/repositories/repomanager"
)

// LoginResult bundles the token pair with the authenticated identity.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Role         string
}

// UserUpdate describes a partial update of a user record.
// Empty fields are left unchanged.
type UserUpdate struct {
	Username string
	Role     string
	Password string
}

// UserService provides authentication and user administration:
//   - Login / Refresh: credential checks and JWT issuance
//   - Create / List / Update / Delete: admin-facing user management
//   - UpdateOwnUsername / UpdateOwnPassword: self-service updates
//   - EnsureMaster: idempotent bootstrap seeding
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Login verifies the username/password pair and, on success, returns a fresh
// token pair plus the user's id and role. An unknown username yields
// common.ErrorNotFound; a wrong password yields common.ErrInvalidPassword.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, common.ErrInvalidPassword
	}

	accessToken, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshToken, err := auth.GenerateToken(user.ID, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		Role:         user.Role,
	}, nil
}

// Refresh validates a refresh token and issues a new access token for the
// same subject. Refresh tokens are stateless: the old token stays valid
// until its natural expiry.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := auth.GetUserIDFromToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", err
	}

	accessToken, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return accessToken, nil
}

// GetByID resolves a user id to a live record. Used by the HTTP middleware
// to turn a verified token subject into an identity.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// Create adds a new user. The role must be one of the assignable roles
// (member, admin); master is never assignable. A duplicate username yields
// common.ErrorConflict.
func (s *UserService) Create(ctx context.Context, username, password, role string) (*models.User, error) {
	if username == "" || password == "" || role == "" {
		return nil, common.ErrorInvalidArgument
	}
	if !common.ValidAssignableRole(role) {
		return nil, common.ErrorInvalidArgument
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{Username: username, Role: role, PasswordHash: hash}
	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// List returns all users except the master account.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// Update applies a partial update to the user with the given id.
// Policy rules enforced here:
//   - the master account's role can never be reassigned (ErrorForbidden)
//   - a requested role must be assignable (ErrorInvalidArgument)
//   - a new username must be unique (ErrorConflict)
//
// The read-check-write sequence runs in a single transaction.
func (s *UserService) Update(ctx context.Context, id string, upd UserUpdate) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if upd.Role != "" {
			if user.Role == common.RoleMaster {
				return common.ErrorForbidden
			}
			if !common.ValidAssignableRole(upd.Role) {
				return common.ErrorInvalidArgument
			}
			user.Role = upd.Role
		}
		if upd.Username != "" {
			user.Username = upd.Username
		}
		if upd.Password != "" {
			hash, err := auth.HashPassword(upd.Password)
			if err != nil {
				return common.ErrorInternal
			}
			user.PasswordHash = hash
		}

		return repo.Update(ctx, user)
	})
}

// Delete removes a user. The master account is never deletable
// (ErrorForbidden).
func (s *UserService) Delete(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user.Role == common.RoleMaster {
			return common.ErrorForbidden
		}

		return repo.Delete(ctx, id)
	})
}

// UpdateOwnUsername renames the authenticated user. The subject comes from
// the verified token, so no extra ownership check is needed.
func (s *UserService) UpdateOwnUsername(ctx context.Context, userID, username string) error {
	if username == "" {
		return common.ErrorInvalidArgument
	}
	return s.Update(ctx, userID, UserUpdate{Username: username})
}

// UpdateOwnPassword changes the authenticated user's password.
func (s *UserService) UpdateOwnPassword(ctx context.Context, userID, password string) error {
	if password == "" {
		return common.ErrorInvalidArgument
	}
	return s.Update(ctx, userID, UserUpdate{Password: password})
}

// EnsureMaster seeds the protected master account if it does not exist yet.
// Safe to call on every startup; a creation race on concurrent boots simply
// loses to the unique constraint.
func (s *UserService) EnsureMaster(ctx context.Context, password string) error {
	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByUsername(ctx, common.RoleMaster)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = repo.Create(ctx, &models.User{
		Username:     common.RoleMaster,
		Role:         common.RoleMaster,
		PasswordHash: hash,
	})
	if errors.Is(err, common.ErrorConflict) {
		return nil
	}
	return err
}
