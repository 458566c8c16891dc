package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/audiovault/audiovault/internal/common"
)

func (s *Server) handleUploadAudioFile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		WriteError(w, http.StatusBadRequest, "No selected file")
		return
	}

	created, err := s.audio.Upload(r.Context(), user.ID, header.Filename, file)
	if err != nil {
		s.logger.Error(r.Context(), "upload failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	_ = WriteJSON(w, http.StatusCreated, map[string]string{
		"message": fmt.Sprintf("Audio file %s uploaded successfully!", created.FileName),
	})
}

// audioFileResponse carries file metadata plus content; the []byte field
// marshals as base64, matching the wire format clients expect.
type audioFileResponse struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	FileContent []byte `json:"file_content"`
	Liked       bool   `json:"liked"`
}

func (s *Server) listAudioFiles(w http.ResponseWriter, r *http.Request, likedOnly bool) {
	user := UserFromContext(r.Context())

	files, err := s.audio.List(r.Context(), user.ID, likedOnly)
	if err != nil {
		s.logger.Error(r.Context(), "list audio files failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]audioFileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, audioFileResponse{
			ID:          f.ID,
			FileName:    f.FileName,
			FileContent: f.Content,
			Liked:       f.Liked,
		})
	}

	_ = WriteJSON(w, http.StatusOK, map[string][]audioFileResponse{"audiofiles": out})
}

func (s *Server) handleListAudioFiles(w http.ResponseWriter, r *http.Request) {
	s.listAudioFiles(w, r, false)
}

func (s *Server) handleListFavourites(w http.ResponseWriter, r *http.Request) {
	s.listAudioFiles(w, r, true)
}

func (s *Server) handleDeleteAudioFile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	deleted, err := s.audio.Delete(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			WriteError(w, http.StatusNotFound, "Audio file not found or you do not have permission to delete it")
			return
		}
		s.logger.Error(r.Context(), "delete audio file failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Audio file %s deleted successfully!", deleted.FileName),
	})
}

func (s *Server) handleLikeAudioFile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req struct {
		Liked *bool `json:"liked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Liked == nil {
		WriteError(w, http.StatusBadRequest, "Liked status must be provided")
		return
	}

	file, err := s.audio.SetLiked(r.Context(), user.ID, id, *req.Liked)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			WriteError(w, http.StatusNotFound, "Audio file not found")
		case errors.Is(err, common.ErrorForbidden):
			WriteError(w, http.StatusForbidden, "You do not have permission to like this file")
		default:
			s.logger.Error(r.Context(), "like audio file failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{"id": file.ID, "liked": file.Liked})
}
