package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audiovault/audiovault/internal/common"
	"github.com/audiovault/audiovault/internal/server/models"
)

func doUpload(t *testing.T, h http.Handler, token, fieldName, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if fieldName != "" {
		part, err := mw.CreateFormFile(fieldName, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/audiofiles", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleUploadAudioFile(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "u1", "alice", common.RoleMember, "pw")
	router := env.server.Router()
	token := tokenFor(t, "u1")

	t.Run("success", func(t *testing.T) {
		content := []byte("RIFF....WAVEfmt ")
		rec := doUpload(t, router, token, "file", "song.wav", content)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "Audio file song.wav uploaded successfully!")

		// bytes land in object storage, metadata in the repository
		require.Len(t, env.audio.files, 1)
		for _, f := range env.audio.files {
			assert.Equal(t, "song.wav", f.FileName)
			assert.Equal(t, "u1", f.UserID)
			assert.Equal(t, content, env.store.objects[f.S3Key])
		}
	})

	t.Run("no file part", func(t *testing.T) {
		rec := doUpload(t, router, token, "", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No file part", decodeError(t, rec))
	})

	t.Run("wrong field name", func(t *testing.T) {
		rec := doUpload(t, router, token, "attachment", "song.wav", []byte("x"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No file part", decodeError(t, rec))
	})
}

func TestHandleListAudioFiles(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "u1", "alice", common.RoleMember, "pw")
	env.seedUser(t, "u2", "bob", common.RoleMember, "pw")
	router := env.server.Router()

	content := []byte{0x00, 0x01, 0x02, 0xff}
	rec := doUpload(t, router, tokenFor(t, "u1"), "file", "mine.mp3", content)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("owner sees file with base64 content", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/audiofiles", tokenFor(t, "u1"), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string][]audioFileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp["audiofiles"], 1)

		got := resp["audiofiles"][0]
		assert.Equal(t, "mine.mp3", got.FileName)
		assert.Equal(t, content, got.FileContent)
		assert.False(t, got.Liked)
	})

	t.Run("other users see nothing", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/audiofiles", tokenFor(t, "u2"), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string][]audioFileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp["audiofiles"])
	})
}

func TestHandleListFavourites(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "u1", "alice", common.RoleMember, "pw")
	router := env.server.Router()
	token := tokenFor(t, "u1")

	env.audio.files["f1"] = &models.AudioFile{ID: "f1", FileName: "a.mp3", S3Key: "f1", UserID: "u1", Liked: true}
	env.audio.files["f2"] = &models.AudioFile{ID: "f2", FileName: "b.mp3", S3Key: "f2", UserID: "u1", Liked: false}
	env.store.objects["f1"] = []byte("aaa")
	env.store.objects["f2"] = []byte("bbb")

	rec := doJSON(t, router, http.MethodGet, "/audiofiles/favourites", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]audioFileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp["audiofiles"], 1)
	assert.Equal(t, "f1", resp["audiofiles"][0].ID)
	assert.True(t, resp["audiofiles"][0].Liked)
}

func TestHandleDeleteAudioFile(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "u1", "alice", common.RoleMember, "pw")
	env.seedUser(t, "u2", "bob", common.RoleMember, "pw")
	router := env.server.Router()

	env.audio.files["f1"] = &models.AudioFile{ID: "f1", FileName: "a.mp3", S3Key: "f1", UserID: "u1"}
	env.store.objects["f1"] = []byte("aaa")

	t.Run("non-owner gets not found", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/audiofiles/f1", tokenFor(t, "u2"), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Audio file not found or you do not have permission to delete it", decodeError(t, rec))
	})

	t.Run("owner deletes", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/audiofiles/f1", tokenFor(t, "u1"), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Audio file a.mp3 deleted successfully!")

		assert.Empty(t, env.audio.files)
		assert.Empty(t, env.store.objects)
	})

	t.Run("missing file", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/audiofiles/f1", tokenFor(t, "u1"), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleLikeAudioFile(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "u1", "alice", common.RoleMember, "pw")
	env.seedUser(t, "u2", "bob", common.RoleMember, "pw")
	router := env.server.Router()

	env.audio.files["f1"] = &models.AudioFile{ID: "f1", FileName: "a.mp3", S3Key: "f1", UserID: "u1"}

	t.Run("owner likes", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, "/audiofiles/f1/like", tokenFor(t, "u1"), map[string]bool{"liked": true})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"f1","liked":true}`, rec.Body.String())
		assert.True(t, env.audio.files["f1"].Liked)
	})

	t.Run("owner unlikes", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, "/audiofiles/f1/like", tokenFor(t, "u1"), map[string]bool{"liked": false})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"f1","liked":false}`, rec.Body.String())
		assert.False(t, env.audio.files["f1"].Liked)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, "/audiofiles/f1/like", tokenFor(t, "u2"), map[string]bool{"liked": true})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "You do not have permission to like this file", decodeError(t, rec))
	})

	t.Run("missing liked field", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, "/audiofiles/f1/like", tokenFor(t, "u1"), map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Liked status must be provided", decodeError(t, rec))
	})

	t.Run("unknown file", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, "/audiofiles/nope/like", tokenFor(t, "u1"), map[string]bool{"liked": true})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Audio file not found", decodeError(t, rec))
	})
}
