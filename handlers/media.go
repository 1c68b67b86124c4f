package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/foldsnap/foldsnapbackend/media"
	"github.com/foldsnap/foldsnapbackend/models"
	"github.com/foldsnap/foldsnapbackend/repository"
	"github.com/foldsnap/foldsnapbackend/taxonomy"
	"github.com/foldsnap/foldsnapbackend/workers"
)

const maxUploadBytes = 256 << 20 // 256 MiB

// MediaHandler lists and ingests media items
type MediaHandler struct {
	MediaRepo      repository.MediaRepositoryInterface
	Store          media.Store
	Processor      *workers.MediaProcessor
	UploadsSubDir  string
	ThumbsSubDir   string
	DefaultPerPage int
	MaxPerPage     int
}

func NewMediaHandler(mediaRepo repository.MediaRepositoryInterface, store media.Store, processor *workers.MediaProcessor, uploadsSubDir, thumbsSubDir string, defaultPerPage, maxPerPage int) *MediaHandler {
	return &MediaHandler{
		MediaRepo:      mediaRepo,
		Store:          store,
		Processor:      processor,
		UploadsSubDir:  uploadsSubDir,
		ThumbsSubDir:   thumbsSubDir,
		DefaultPerPage: defaultPerPage,
		MaxPerPage:     maxPerPage,
	}
}

// MediaItemPayload is the listing shape for one media item
type MediaItemPayload struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Filename     string `json:"filename"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	FileSize     int64  `json:"file_size"`
	MimeType     string `json:"mime_type"`
	Date         int64  `json:"date"`
}

func (h *MediaHandler) formatMediaItem(item models.Media) MediaItemPayload {
	payload := MediaItemPayload{
		ID:       item.ID,
		Title:    item.Title,
		Filename: item.Filename,
		URL:      "/api/" + h.UploadsSubDir + "/" + item.Path,
		FileSize: taxonomy.ExtractFileSize(item.Metadata),
		MimeType: item.MimeType,
		Date:     item.CreatedAt,
	}
	if item.ThumbnailPath != nil {
		payload.ThumbnailURL = "/api/" + h.ThumbsSubDir + "/" + *item.ThumbnailPath
	}
	return payload
}

// ListMedia returns one page of media for a folder. folder_id is required;
// zero selects the unassigned bucket. Pagination totals are exposed through
// the X-Total-Count and X-Total-Pages headers.
func (h *MediaHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	rawFolderID := query.Get("folder_id")
	if rawFolderID == "" {
		WriteAPIError(w, http.StatusBadRequest, CodeMissingFolderID, "folder_id query parameter is required")
		return
	}
	folderID, err := strconv.ParseUint(rawFolderID, 10, 32)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid folder_id")
		return
	}

	page := 1
	if raw := query.Get("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page < 1 {
			WriteAPIError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid page")
			return
		}
	}

	perPage := h.DefaultPerPage
	if raw := query.Get("per_page"); raw != "" {
		if perPage, err = strconv.Atoi(raw); err != nil || perPage < 1 {
			WriteAPIError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid per_page")
			return
		}
	}
	if perPage > h.MaxPerPage {
		perPage = h.MaxPerPage
	}

	orderBy := query.Get("order")
	switch orderBy {
	case "", repository.MediaOrderDate:
		orderBy = repository.MediaOrderDate
	case repository.MediaOrderName:
	default:
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid order, must be 'date' or 'name'")
		return
	}

	items, total, err := h.MediaRepo.ListByFolder(uint(folderID), page, perPage, orderBy)
	if err != nil {
		log.Error().Err(err).Uint64("folder_id", folderID).Msg("failed to list media")
		WriteAPIError(w, http.StatusInternalServerError, CodeServerError, "an internal error occurred")
		return
	}

	totalPages := (total + int64(perPage) - 1) / int64(perPage)
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	w.Header().Set("X-Total-Pages", strconv.FormatInt(totalPages, 10))

	payloads := make([]MediaItemPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, h.formatMediaItem(item))
	}
	writeJSON(w, http.StatusOK, MediaListResponse{
		Media:      payloads,
		Total:      total,
		TotalPages: totalPages,
	})
}

// MediaListResponse is one page of media plus the pagination totals
type MediaListResponse struct {
	Media      []MediaItemPayload `json:"media"`
	Total      int64              `json:"total"`
	TotalPages int64              `json:"total_pages"`
}

// UploadMedia ingests a multipart upload. The file is stored under a
// generated key, a row is created with its byte size recorded, and thumbnail
// and metadata extraction are queued for the worker pool.
func (h *MediaHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid multipart payload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidArgument, "a 'file' form field is required")
		return
	}
	defer file.Close()

	key, err := h.Store.Save(media.AssetTypeUpload, header.Filename, file)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("failed to store upload")
		WriteAPIError(w, http.StatusInternalServerError, CodeServerError, "failed to store upload")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	blob := fmt.Sprintf(`{"filesize":%d}`, header.Size)
	item := models.Media{
		Title:    title,
		Filename: header.Filename,
		Path:     key,
		MimeType: mimeType,
		Metadata: blob,
	}
	if err := h.MediaRepo.Create(&item); err != nil {
		h.Store.Delete(media.AssetTypeUpload, key)
		log.Error().Err(err).Str("filename", header.Filename).Msg("failed to create media record")
		WriteAPIError(w, http.StatusInternalServerError, CodeServerError, "failed to create media record")
		return
	}

	if h.Processor != nil {
		h.Processor.QueueJob(workers.MediaJob{MediaID: item.ID, TaskType: workers.TaskMetadata})
		if media.IsRasterImage(header.Filename) {
			h.Processor.QueueJob(workers.MediaJob{MediaID: item.ID, TaskType: workers.TaskThumbnail})
		}
	}

	writeJSON(w, http.StatusCreated, h.formatMediaItem(item))
}
