package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/foldsnap/foldsnapbackend/models"
	"github.com/foldsnap/foldsnapbackend/repository"
)

// FolderHandler exposes the folder tree and its mutations over HTTP
type FolderHandler struct {
	FolderRepo repository.FolderRepositoryInterface
}

func NewFolderHandler(folderRepo repository.FolderRepositoryInterface) *FolderHandler {
	return &FolderHandler{FolderRepo: folderRepo}
}

// FolderTreeResponse carries the nested folder forest plus the stats of the
// unassigned (root) bucket, so one call renders the whole sidebar.
type FolderTreeResponse struct {
	Folders        []models.FolderPayload `json:"folders"`
	RootMediaCount int64                  `json:"root_media_count"`
	RootTotalSize  int64                  `json:"root_total_size"`
}

// GetFolders returns the full folder tree with recursive counts and sizes
func (h *FolderHandler) GetFolders(w http.ResponseWriter, r *http.Request) {
	tree, err := h.FolderRepo.GetTree()
	if err != nil {
		writeFolderError(w, err)
		return
	}

	rootCount, err := h.FolderRepo.GetRootMediaCount()
	if err != nil {
		writeFolderError(w, err)
		return
	}
	rootSize, err := h.FolderRepo.GetRootTotalSize()
	if err != nil {
		writeFolderError(w, err)
		return
	}

	payloads := make([]models.FolderPayload, 0, len(tree))
	for _, folder := range tree {
		payloads = append(payloads, folder.ToPayload())
	}

	writeJSON(w, http.StatusOK, FolderTreeResponse{
		Folders:        payloads,
		RootMediaCount: rootCount,
		RootTotalSize:  rootSize,
	})
}

type createFolderPayload struct {
	Name     string `json:"name"`
	ParentID uint   `json:"parent_id"`
	Color    string `json:"color"`
	Position int    `json:"position"`
}

// CreateFolder creates a folder under the given parent (0 for top level)
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var payload createFolderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request payload")
		return
	}

	folder, err := h.FolderRepo.Create(payload.Name, payload.ParentID, payload.Color, payload.Position)
	if err != nil {
		writeFolderError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, folder)
}

type updateFolderPayload struct {
	Name     string `json:"name"`
	ParentID *uint  `json:"parent_id"`
	Color    string `json:"color"`
	Position *int   `json:"position"`
}

// UpdateFolder renames, recolors, repositions or reparents a folder. Absent
// fields are left unchanged.
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var payload updateFolderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request payload")
		return
	}

	folder, err := h.FolderRepo.Update(id, payload.Name, payload.ParentID, payload.Color, payload.Position)
	if err != nil {
		writeFolderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

// DeleteFolder removes a folder; its media return to the root bucket and its
// children move to the top level.
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.FolderRepo.Delete(id); err != nil {
		writeFolderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type mediaIDsPayload struct {
	MediaIDs []uint `json:"media_ids"`
}

// AssignMedia assigns media items to a folder, replacing any previous
// assignment each item had.
func (h *FolderHandler) AssignMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var payload mediaIDsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request payload")
		return
	}
	if len(payload.MediaIDs) == 0 {
		WriteAPIError(w, http.StatusBadRequest, CodeMissingMediaIDs, "at least one media id is required")
		return
	}

	if err := h.FolderRepo.AssignMedia(id, payload.MediaIDs); err != nil {
		writeFolderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"assigned": true})
}

// RemoveMedia clears the folder assignment for the given media items
func (h *FolderHandler) RemoveMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var payload mediaIDsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request payload")
		return
	}
	if len(payload.MediaIDs) == 0 {
		WriteAPIError(w, http.StatusBadRequest, CodeMissingMediaIDs, "at least one media id is required")
		return
	}

	if err := h.FolderRepo.RemoveMedia(id, payload.MediaIDs); err != nil {
		writeFolderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

// parseIDParam reads the {id} route parameter, writing an error response on
// failure.
func parseIDParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid folder id")
		return 0, false
	}
	return uint(id), true
}
