package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/audiovault/audiovault/internal/common"
	"github.com/audiovault/audiovault/internal/dbx"
	"github.com/audiovault/audiovault/internal/logging"
	"github.com/audiovault/audiovault/internal/server/auth"
	"github.com/audiovault/audiovault/internal/server/config"
	"github.com/audiovault/audiovault/internal/server/models"
	audiofilesrepo "github.com/audiovault/audiovault/internal/server/repositories/audiofiles"
	"github.com/audiovault/audiovault/internal/server/repositories/repomanager"
	usersrepo "github.com/audiovault/audiovault/internal/server/repositories/users"
	"github.com/audiovault/audiovault/internal/server/services"
	_ "modernc.org/sqlite"
)

const testSecret = "test-secret"

// --- in-memory fakes backing the real services ---

type memUsersRepo struct {
	users  map[string]*models.User
	nextID int
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{users: map[string]*models.User{}}
}

func (m *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return nil, common.ErrorConflict
		}
	}
	if u.ID == "" {
		m.nextID++
		u.ID = fmt.Sprintf("u-%d", m.nextID)
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range m.users {
		if u.Role != common.RoleMaster {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsersRepo) Update(ctx context.Context, u *models.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return common.ErrorNotFound
	}
	for _, existing := range m.users {
		if existing.ID != u.ID && existing.Username == u.Username {
			return common.ErrorConflict
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memUsersRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.users, id)
	return nil
}

type memAudioRepo struct {
	files map[string]*models.AudioFile
}

func newMemAudioRepo() *memAudioRepo {
	return &memAudioRepo{files: map[string]*models.AudioFile{}}
}

func (m *memAudioRepo) Create(ctx context.Context, f *models.AudioFile) error {
	m.files[f.ID] = f
	return nil
}

func (m *memAudioRepo) GetByID(ctx context.Context, id string) (*models.AudioFile, error) {
	f, ok := m.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memAudioRepo) ListByOwner(ctx context.Context, ownerID string, likedOnly bool) ([]*models.AudioFile, error) {
	var out []*models.AudioFile
	for _, f := range m.files {
		if f.UserID != ownerID {
			continue
		}
		if likedOnly && !f.Liked {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (m *memAudioRepo) UpdateLiked(ctx context.Context, id string, liked bool) error {
	f, ok := m.files[id]
	if !ok {
		return common.ErrorNotFound
	}
	f.Liked = liked
	return nil
}

func (m *memAudioRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.files[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.files, id)
	return nil
}

type memRepoManager struct {
	u *memUsersRepo
	a *memAudioRepo
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *memRepoManager) AudioFiles(db dbx.DBTX) audiofilesrepo.Repository {
	return m.a
}

var _ repomanager.RepositoryManager = (*memRepoManager)(nil)

type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (s *memStore) Put(ctx context.Context, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

// --- test server construction ---

type testEnv struct {
	server *Server
	users  *memUsersRepo
	audio  *memAudioRepo
	store  *memStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// in-memory database handle: transactions need a real Begin/Commit,
	// but all queries go through the in-memory fakes
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{
		SecretKey:                    testSecret,
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		S3Bucket:                     "audiovault-s3",
	}

	usersRepo := newMemUsersRepo()
	audioRepo := newMemAudioRepo()
	rm := &memRepoManager{u: usersRepo, a: audioRepo}
	store := newMemStore()

	us := services.NewUserService(db, rm, cfg)
	as := services.NewAudioFileService(db, rm, store, cfg)

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := NewServer(":0", logger, us, as, cfg.SecretKey)

	return &testEnv{server: srv, users: usersRepo, audio: audioRepo, store: store}
}

// seedUser adds a user with a bcrypt-hashed password and returns it.
func (e *testEnv) seedUser(t *testing.T, id, username, role, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	u := &models.User{ID: id, Username: username, Role: role, PasswordHash: hash}
	e.users.users[id] = u
	return u
}

// tokenFor mints a valid access token for the user id.
func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	return tok
}
